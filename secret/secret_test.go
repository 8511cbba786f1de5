package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("MQ_PRESENT", "ok")
	t.Setenv("MQ_X", "y")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{name: "braced", in: "a=${MQ_PRESENT}", want: "a=ok"},
		{name: "bare", in: "a=$MQ_PRESENT", want: "a=ok"},
		{name: "dollar escape", in: "$$${MQ_X}", want: "$y"},
		{name: "missing listed sorted", in: "${MQ_ZZ} ${MQ_AA} ${MQ_ZZ}", wantErr: "MQ_AA, MQ_ZZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if tt.wantErr != "" {
				if !errors.Is(err, ErrMissingEnv) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ExpandEnvStrict() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandEnvStrict() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in            string
		provider, ref string
		ok            bool
	}{
		{in: "secretref:env:MQ_KEY", provider: "env", ref: "MQ_KEY", ok: true},
		{in: "secretref:file:/run/keys/a:b", provider: "file", ref: "/run/keys/a:b", ok: true},
		{in: "secretref:env:", ok: false},
		{in: "secretref::x", ok: false},
		{in: "plain", ok: false},
	}
	for _, tt := range tests {
		p, r, ok := ParseRef(tt.in)
		if ok != tt.ok || p != tt.provider || r != tt.ref {
			t.Errorf("ParseRef(%q) = %q, %q, %v", tt.in, p, r, ok)
		}
		if IsRef(tt.in) != tt.ok {
			t.Errorf("IsRef(%q) = %v", tt.in, !tt.ok)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("MQ_SIGNING_KEY", "s3cret")
	t.Setenv("MQ_EMPTY", "")
	t.Setenv("MQ_PROVIDER", "env")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "api.key"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(true, EnvProvider{}, FileProvider{Dir: dir})
	ctx := context.Background()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "env ref", in: "secretref:env:MQ_SIGNING_KEY", want: "s3cret"},
		{name: "file ref", in: "secretref:file:api.key", want: "from-file"},
		{name: "inline", in: "Bearer secretref:env:MQ_SIGNING_KEY", want: "Bearer s3cret"},
		{name: "env then ref", in: "secretref:${MQ_PROVIDER}:MQ_SIGNING_KEY", want: "s3cret"},
		{name: "unknown provider", in: "secretref:vault:x", wantErr: ErrUnknownProvider},
		{name: "missing", in: "secretref:env:MQ_NOPE", wantErr: ErrNotFound},
		{name: "missing file", in: "secretref:file:nope.key", wantErr: ErrNotFound},
		{name: "strict empty", in: "secretref:env:MQ_EMPTY", wantErr: ErrEmptyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	if got := DefaultRegistry.Names(); len(got) != 2 || got[0] != "env" || got[1] != "file" {
		t.Fatalf("DefaultRegistry.Names() = %v", got)
	}

	p, err := DefaultRegistry.Create("file", map[string]string{"dir": "/etc/mediaquery"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if fp, ok := p.(FileProvider); !ok || fp.Dir != "/etc/mediaquery" {
		t.Errorf("Create() = %#v", p)
	}

	if _, err := DefaultRegistry.Create("vault", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Create(vault) error = %v", err)
	}

	reg := NewRegistry()
	factory := func(map[string]string) (Provider, error) { return EnvProvider{}, nil }
	if err := reg.Register("env", factory); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("env", factory); err == nil {
		t.Error("duplicate Register() succeeded")
	}
	if err := reg.Register(" ", factory); err == nil {
		t.Error("blank Register() succeeded")
	}
}
