package cache

import (
	"context"

	"github.com/jonwraymond/mediaquery/observe"
)

// FetchFunc produces a value on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is the outcome of Fetcher.Fetch.
type Result[T any] struct {
	Data   T
	Cached bool
}

// Fetcher implements cache-aside reads over a Store.
type Fetcher[T any] struct {
	store  *Store[T]
	policy Policy
}

// NewFetcher creates a Fetcher.
func NewFetcher[T any](store *Store[T], policy Policy) *Fetcher[T] {
	return &Fetcher[T]{store: store, policy: policy}
}

// Fetch returns the fresh cached value at key, or calls fetch and caches its
// result. Errors from fetch are returned as-is and never cached.
func (f *Fetcher[T]) Fetch(ctx context.Context, key string, fetch FetchFunc[T]) (Result[T], error) {
	if !f.policy.ShouldCache() {
		data, err := fetch(ctx)
		return Result[T]{Data: data}, err
	}

	if data, ok := f.store.Get(ctx, key, f.policy.MaxAge); ok {
		return Result[T]{Data: data, Cached: true}, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return Result[T]{Data: data}, err
	}

	if err := f.store.Set(ctx, key, data); err != nil {
		f.store.opts.logger.Warn(ctx, "cache write failed", observe.F("key", key), observe.F("error", err))
	}
	return Result[T]{Data: data}, nil
}

// Invalidate removes the cached value at key.
func (f *Fetcher[T]) Invalidate(ctx context.Context, key string) error {
	return f.store.Remove(ctx, key)
}
