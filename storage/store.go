package storage

import "context"

// RawStore is a persistent string key-value medium.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: ReadRaw returns ErrNotFound on miss; DeleteRaw is idempotent.
// - Ownership: values are opaque; the store never interprets them.
type RawStore interface {
	ReadRaw(ctx context.Context, key string) (string, error)
	WriteRaw(ctx context.Context, key, value string) error
	DeleteRaw(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Lister is implemented by stores that can enumerate keys by prefix.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
