package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Codec converts JSON-serializable values to opaque tokens and back.
//
// Contract:
// - Round trip: Decode(Encode(x)) yields a value equal to x.
// - Errors: Decode returns an error wrapping ErrCorruptToken for tokens it
//   did not produce; it must not panic.
type Codec interface {
	Encode(v any) (string, error)
	Decode(token string, v any) error
}

// DefaultObfuscationKey is used when NewObfuscatingCodec is given no key.
const DefaultObfuscationKey = "mediaquery"

// ObfuscatingCodec XORs the JSON form with a repeating key and base64-encodes
// the result. Anyone holding the key (or guessing it) can read the payload.
type ObfuscatingCodec struct {
	key []byte
}

// NewObfuscatingCodec creates a codec using key, or DefaultObfuscationKey if empty.
func NewObfuscatingCodec(key string) *ObfuscatingCodec {
	if key == "" {
		key = DefaultObfuscationKey
	}
	return &ObfuscatingCodec{key: []byte(key)}
}

func (c *ObfuscatingCodec) Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage: encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(c.xor(raw)), nil
}

func (c *ObfuscatingCodec) Decode(token string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	if err := json.Unmarshal(c.xor(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	return nil
}

func (c *ObfuscatingCodec) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}

// JSONCodec stores plain JSON. Useful for debugging a backend by hand.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage: encode: %w", err)
	}
	return string(raw), nil
}

func (JSONCodec) Decode(token string, v any) error {
	if err := json.Unmarshal([]byte(token), v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	return nil
}

var (
	_ Codec = (*ObfuscatingCodec)(nil)
	_ Codec = JSONCodec{}
)
