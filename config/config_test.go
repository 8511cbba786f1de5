package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/guard"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/storage"
)

const sample = `
storage:
  backend: sqlite
  path: ${MQ_TEST_DIR}/cache.db
  codec: signed
  signing_key: secretref:env:MQ_TEST_SIGNING_KEY
cache:
  max_age: 30m
guard:
  window: 2s
search:
  page_size: 20
  resilience:
    timeout: 5s
    max_concurrent: 4
keywords:
  max_word_terms: 8
  extra_stopwords: [scene]
  topics:
    - name: pets
      keywords: [dog, cat]
providers:
  - id: google
    kind: phrase
    endpoint: https://search.example/v1
    api_key: secretref:env:MQ_TEST_API_KEY
  - id: envato
    kind: word
    endpoint: https://envato.example/search
    api_key_header: X-Api-Key
observe:
  logging:
    enabled: true
    level: debug
`

func TestParse(t *testing.T) {
	t.Setenv("MQ_TEST_DIR", "/var/lib/mq")

	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Storage.Path != "/var/lib/mq/cache.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Cache.MaxAge != 30*time.Minute || cfg.Guard.Window != 2*time.Second {
		t.Errorf("durations = %v, %v", cfg.Cache.MaxAge, cfg.Guard.Window)
	}
	if cfg.Search.Resilience.Timeout != 5*time.Second || cfg.Search.Resilience.MaxConcurrent != 4 {
		t.Errorf("Search.Resilience = %+v", cfg.Search.Resilience)
	}
	if cfg.Keywords.MaxWordTerms != 8 || len(cfg.Keywords.Topics) != 1 {
		t.Errorf("Keywords = %+v", cfg.Keywords)
	}
	if cfg.Observe.ServiceName != "mediaquery" || cfg.Observe.Logging.Level != "debug" {
		t.Errorf("Observe = %+v", cfg.Observe)
	}
	if diff := cmp.Diff([]string{"env", "file"}, cfg.Secrets.Providers); diff != "" {
		t.Errorf("Secrets.Providers mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("empty config differs from Default() (-want +got):\n%s", diff)
	}
	if cfg.Storage.Backend != storage.BackendMemory || cfg.Guard.Window != guard.DefaultWindow || cfg.Cache.MaxAge != cache.DefaultMaxAge {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Search.Resilience.MaxWait != resilience.DefaultMaxWait {
		t.Errorf("Search.Resilience.MaxWait = %v, want %v", cfg.Search.Resilience.MaxWait, resilience.DefaultMaxWait)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "missing env", yaml: "storage:\n  path: ${MQ_TEST_NOPE}\n", wantErr: "MQ_TEST_NOPE"},
		{name: "unknown field", yaml: "storage:\n  backnd: memory\n", wantErr: "backnd"},
		{name: "bad backend", yaml: "storage:\n  backend: etcd\n", wantErr: "etcd"},
		{name: "sqlite without path", yaml: "storage:\n  backend: sqlite\n", wantErr: "storage.path"},
		{name: "redis without addrs", yaml: "storage:\n  backend: redis\n", wantErr: "storage.redis.addrs"},
		{name: "signed without key", yaml: "storage:\n  codec: signed\n", wantErr: "signing_key"},
		{name: "bad codec", yaml: "storage:\n  codec: aes\n", wantErr: "aes"},
		{name: "provider without endpoint", yaml: "providers:\n  - id: g\n", wantErr: "endpoint"},
		{name: "duplicate provider", yaml: "providers:\n  - {id: g, endpoint: x}\n  - {id: g, endpoint: y}\n", wantErr: "duplicated"},
		{name: "bad kind", yaml: "providers:\n  - {id: g, endpoint: x, kind: sentence}\n", wantErr: "sentence"},
		{name: "bad secret provider", yaml: "secrets:\n  providers: [vault]\n", wantErr: "vault"},
		{name: "bad log level", yaml: "observe:\n  logging:\n    enabled: true\n    level: loud\n", wantErr: "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WrapsErrInvalid(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "etcd"
	cfg.Storage.Codec = "aes"
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() error = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "etcd") || !strings.Contains(err.Error(), "aes") {
		t.Errorf("Validate() should report every problem: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mediaquery.yaml")
	if err := os.WriteFile(path, []byte("guard:\n  window: 3s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Guard.Window != 3*time.Second {
		t.Errorf("Guard.Window = %v", cfg.Guard.Window)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/mediaquery.yaml")
	if got := Path(""); got != "/etc/mediaquery.yaml" {
		t.Errorf("Path(\"\") = %q", got)
	}
	if got := Path("./x.yaml"); got != "./x.yaml" {
		t.Errorf("Path(explicit) = %q", got)
	}
}

func TestResolveSecretsAndBuild(t *testing.T) {
	t.Setenv("MQ_TEST_DIR", t.TempDir())
	t.Setenv("MQ_TEST_SIGNING_KEY", "k")
	t.Setenv("MQ_TEST_API_KEY", "api")

	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ResolveSecrets(context.Background(), r); err != nil {
		t.Fatalf("ResolveSecrets() error = %v", err)
	}
	if cfg.Storage.SigningKey != "k" || cfg.Providers[0].APIKey != "api" {
		t.Errorf("secrets not resolved: %+v", cfg.Storage)
	}

	codec, err := cfg.Codec()
	if err != nil {
		t.Fatalf("Codec() error = %v", err)
	}
	if _, ok := codec.(*storage.SignedCodec); !ok {
		t.Errorf("Codec() = %T, want *storage.SignedCodec", codec)
	}

	providers, err := cfg.SearchProviders()
	if err != nil {
		t.Fatalf("SearchProviders() error = %v", err)
	}
	if len(providers) != 2 || providers[1].Kind() != provider.KindWord {
		t.Errorf("SearchProviders() = %v", providers)
	}

	if p := cfg.Policy(); p.MaxAge != 30*time.Minute {
		t.Errorf("Policy() = %+v", p)
	}
	cfg.Cache.Disabled = true
	if cfg.Policy().ShouldCache() {
		t.Error("disabled cache still caches")
	}

	if opts := cfg.SearchOptions(nil); len(opts) != 5 {
		t.Errorf("SearchOptions(nil) = %d options", len(opts))
	}
}

func TestResolveSecrets_Missing(t *testing.T) {
	cfg := Default()
	cfg.Storage.SigningKey = "secretref:env:MQ_TEST_UNSET_KEY"
	r, err := cfg.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	err = cfg.ResolveSecrets(context.Background(), r)
	if err == nil || !strings.Contains(err.Error(), "storage.signing_key") {
		t.Errorf("ResolveSecrets() error = %v", err)
	}
}
