package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string // sqlite database file
	Redis   RedisOptions
}

// Open creates the RawStore named by opts.Backend. An empty backend means memory.
func Open(ctx context.Context, opts Options) (RawStore, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("storage: sqlite backend requires a path")
		}
		return OpenSQLite(ctx, opts.Path)
	case BackendRedis:
		if len(opts.Redis.Addrs) == 0 {
			return nil, fmt.Errorf("storage: redis backend requires at least one address")
		}
		return OpenRedis(opts.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
