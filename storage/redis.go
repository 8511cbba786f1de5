package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/rueidis"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// RedisStore persists values as plain Redis strings.
type RedisStore struct {
	client rueidis.Client
}

// OpenRedis connects to Redis (or Valkey).
func OpenRedis(opts RedisOptions) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  opts.Addrs,
		Username:     opts.Username,
		Password:     opts.Password,
		SelectDB:     opts.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client. The store takes ownership of it.
func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) ReadRaw(ctx context.Context, key string) (string, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrNotFound
		}
		return "", &Error{Op: OpRead, Key: key, Err: err}
	}
	return v, nil
}

func (s *RedisStore) WriteRaw(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(key).Value(value).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpWrite, Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) DeleteRaw(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	return nil
}

// Keys scans for keys with the given prefix. Order is unspecified.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(matchPrefix(prefix)).Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &Error{Op: OpList, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"[", `\[`,
	"]", `\]`,
)

// matchPrefix builds a SCAN MATCH pattern selecting keys that start with
// prefix taken literally.
func matchPrefix(prefix string) string {
	return globEscaper.Replace(prefix) + "*"
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &Error{Op: OpPing, Err: err}
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.client.Close()
	return nil
}

var (
	_ RawStore = (*RedisStore)(nil)
	_ Lister   = (*RedisStore)(nil)
)
