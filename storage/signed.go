package storage

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SignedCodec carries the JSON payload inside an HS256 JWT. Tokens that were
// altered or signed with another key fail to decode. The payload itself is
// only base64url-encoded and remains readable.
type SignedCodec struct {
	key    []byte
	issuer string
}

type payloadClaims struct {
	Value json.RawMessage `json:"v"`
	jwt.RegisteredClaims
}

// NewSignedCodec creates a codec signing with key. issuer is embedded in each
// token and checked on decode when non-empty.
func NewSignedCodec(key []byte, issuer string) (*SignedCodec, error) {
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	return &SignedCodec{key: key, issuer: issuer}, nil
}

func (c *SignedCodec) Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage: encode: %w", err)
	}

	claims := payloadClaims{
		Value:            raw,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: c.issuer},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("storage: sign: %w", err)
	}
	return token, nil
}

func (c *SignedCodec) Decode(token string, v any) error {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims payloadClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}

	if err := json.Unmarshal(claims.Value, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	return nil
}

var _ Codec = (*SignedCodec)(nil)
