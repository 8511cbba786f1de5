package storage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name  string            `json:"name"`
	Count int               `json:"count"`
	Tags  []string          `json:"tags"`
	Meta  map[string]string `json:"meta"`
	Empty *string           `json:"empty"`
}

func codecs(t *testing.T) map[string]Codec {
	t.Helper()
	signed, err := NewSignedCodec([]byte("test-signing-key"), "mediaquery")
	if err != nil {
		t.Fatalf("NewSignedCodec: %v", err)
	}
	return map[string]Codec{
		"obfuscating": NewObfuscatingCodec(""),
		"custom key":  NewObfuscatingCodec("k"),
		"json":        JSONCodec{},
		"signed":      signed,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	values := []sample{
		{},
		{Name: "fox", Count: 3, Tags: []string{"wild", "forest"}},
		{Name: "ünïcödé ✓", Meta: map[string]string{"a": "1", "b": ""}},
		{Name: `quotes " and \ slashes`, Count: -42},
	}

	for name, codec := range codecs(t) {
		t.Run(name, func(t *testing.T) {
			for _, want := range values {
				token, err := codec.Encode(want)
				if err != nil {
					t.Fatalf("Encode(%+v): %v", want, err)
				}
				var got sample
				if err := codec.Decode(token, &got); err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestCodec_RoundTripScalars(t *testing.T) {
	for name, codec := range codecs(t) {
		t.Run(name, func(t *testing.T) {
			token, err := codec.Encode([]any{"a", 1.5, true, nil})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			var got []any
			if err := codec.Decode(token, &got); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff([]any{"a", 1.5, true, nil}, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodec_DecodeCorrupt(t *testing.T) {
	tokens := []string{"", "%%%not-base64%%%", "aGVsbG8=", "eyJhbGciOiJub25lIn0.e30."}

	for name, codec := range codecs(t) {
		t.Run(name, func(t *testing.T) {
			for _, token := range tokens {
				var got sample
				err := codec.Decode(token, &got)
				if !errors.Is(err, ErrCorruptToken) {
					t.Errorf("Decode(%q) = %v, want ErrCorruptToken", token, err)
				}
			}
		})
	}
}

func TestObfuscatingCodec_NotPlainJSON(t *testing.T) {
	token, err := NewObfuscatingCodec("").Encode(sample{Name: "visible"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if token == `{"name":"visible"}` {
		t.Fatal("token should not be plain JSON")
	}
}

func TestObfuscatingCodec_WrongKey(t *testing.T) {
	token, err := NewObfuscatingCodec("alpha").Encode(sample{Name: "fox"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got sample
	if err := NewObfuscatingCodec("omega").Decode(token, &got); !errors.Is(err, ErrCorruptToken) {
		t.Fatalf("Decode with wrong key = %v, want ErrCorruptToken", err)
	}
}

func TestSignedCodec_RejectsTampering(t *testing.T) {
	a, _ := NewSignedCodec([]byte("key-a"), "")
	b, _ := NewSignedCodec([]byte("key-b"), "")

	token, err := a.Encode(sample{Name: "fox"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got sample
	if err := b.Decode(token, &got); !errors.Is(err, ErrCorruptToken) {
		t.Fatalf("Decode with other key = %v, want ErrCorruptToken", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if err := a.Decode(tampered, &got); !errors.Is(err, ErrCorruptToken) {
		t.Fatalf("Decode tampered = %v, want ErrCorruptToken", err)
	}
}

func TestSignedCodec_IssuerMismatch(t *testing.T) {
	a, _ := NewSignedCodec([]byte("key"), "one")
	b, _ := NewSignedCodec([]byte("key"), "two")

	token, err := a.Encode("x")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got string
	if err := b.Decode(token, &got); !errors.Is(err, ErrCorruptToken) {
		t.Fatalf("Decode = %v, want ErrCorruptToken", err)
	}
}

func TestNewSignedCodec_RequiresKey(t *testing.T) {
	if _, err := NewSignedCodec(nil, ""); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
}
