package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/storage"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Entry is the persisted form of a cached value.
// Timestamp is set once, when the entry is written.
type Entry[T any] struct {
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now     func() time.Time
	domain  string
	metrics observe.Metrics
	logger  observe.Logger
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDomain labels lookups in metrics.
func WithDomain(domain string) Option {
	return func(o *options) { o.domain = domain }
}

// WithMetrics records hits and misses.
func WithMetrics(m observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger logs write failures that callers choose to ignore.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store is a typed, TTL-checked view over a storage.Adapter.
//
// Contract:
// - Concurrency: safe for concurrent use when the adapter's store is.
// - Errors: reads never fail; unreadable entries are misses.
// - Writes are last-write-wins.
type Store[T any] struct {
	adapter *storage.Adapter
	opts    options
}

// NewStore creates a Store over adapter.
func NewStore[T any](adapter *storage.Adapter, opts ...Option) *Store[T] {
	o := options{
		now:     time.Now,
		domain:  "default",
		metrics: observe.NopMetrics(),
		logger:  observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{adapter: adapter, opts: o}
}

// Get returns the data stored at key if it is younger than maxAge.
// A stale entry is deleted before reporting the miss.
func (s *Store[T]) Get(ctx context.Context, key string, maxAge time.Duration) (T, bool) {
	var zero T

	entry, ok := s.load(ctx, key)
	if !ok {
		s.opts.metrics.RecordLookup(ctx, s.opts.domain, false)
		return zero, false
	}

	if !s.fresh(entry, maxAge) {
		if err := s.adapter.Delete(ctx, key); err != nil {
			s.opts.logger.Warn(ctx, "cache evict failed", observe.F("key", key), observe.F("error", err))
		}
		s.opts.metrics.RecordLookup(ctx, s.opts.domain, false)
		return zero, false
	}

	s.opts.metrics.RecordLookup(ctx, s.opts.domain, true)
	return entry.Data, true
}

// Set stores data at key, stamped with the current time.
func (s *Store[T]) Set(ctx context.Context, key string, data T) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.adapter.Save(ctx, key, Entry[T]{Data: data, Timestamp: s.opts.now().UTC()})
}

// Remove deletes the entry at key. Removing a missing key is a no-op.
func (s *Store[T]) Remove(ctx context.Context, key string) error {
	return s.adapter.Delete(ctx, key)
}

// IsValid reports whether key holds an entry younger than maxAge.
// Unlike Get it never deletes.
func (s *Store[T]) IsValid(ctx context.Context, key string, maxAge time.Duration) bool {
	entry, ok := s.load(ctx, key)
	return ok && s.fresh(entry, maxAge)
}

// Age returns how long ago the entry at key was written.
func (s *Store[T]) Age(ctx context.Context, key string) (time.Duration, bool) {
	entry, ok := s.load(ctx, key)
	if !ok {
		return 0, false
	}
	return s.opts.now().Sub(entry.Timestamp), true
}

func (s *Store[T]) load(ctx context.Context, key string) (Entry[T], bool) {
	var entry Entry[T]
	if ValidateKey(key) != nil {
		return entry, false
	}
	if !s.adapter.Load(ctx, key, &entry) {
		return entry, false
	}
	return entry, true
}

// fresh is exclusive at the boundary: an entry exactly maxAge old is stale.
func (s *Store[T]) fresh(entry Entry[T], maxAge time.Duration) bool {
	return s.opts.now().Sub(entry.Timestamp) < maxAge
}
