package config

import (
	"context"
	"fmt"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/keywords"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/search"
	"github.com/jonwraymond/mediaquery/secret"
	"github.com/jonwraymond/mediaquery/selection"
	"github.com/jonwraymond/mediaquery/storage"
)

// Resolver builds the secret resolver enabled by c.Secrets.
func (c *Config) Resolver() (*secret.Resolver, error) {
	providers := make([]secret.Provider, 0, len(c.Secrets.Providers))
	for _, name := range c.Secrets.Providers {
		p, err := secret.DefaultRegistry.Create(name, map[string]string{"dir": c.Secrets.FileDir})
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		providers = append(providers, p)
	}
	return secret.NewResolver(c.Secrets.Strict, providers...), nil
}

// ResolveSecrets replaces secret references in credential fields with their
// values.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"storage.signing_key", &c.Storage.SigningKey},
		{"storage.obfuscation_key", &c.Storage.ObfuscationKey},
		{"storage.redis.password", &c.Storage.Redis.Password},
	}
	for i := range c.Providers {
		fields = append(fields, struct {
			name string
			ptr  *string
		}{fmt.Sprintf("providers[%d].api_key", i), &c.Providers[i].APIKey})
	}

	for _, f := range fields {
		if *f.ptr == "" {
			continue
		}
		v, err := r.Resolve(ctx, *f.ptr)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}

// StorageOptions returns the backend options for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Redis: storage.RedisOptions{
			Addrs:    c.Storage.Redis.Addrs,
			Username: c.Storage.Redis.Username,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
		},
	}
}

// Codec builds the configured storage codec.
func (c *Config) Codec() (storage.Codec, error) {
	switch c.Storage.Codec {
	case CodecSigned:
		return storage.NewSignedCodec([]byte(c.Storage.SigningKey), c.Storage.Issuer)
	case CodecJSON:
		return storage.JSONCodec{}, nil
	default:
		return storage.NewObfuscatingCodec(c.Storage.ObfuscationKey), nil
	}
}

// Policy returns the cache policy.
func (c *Config) Policy() cache.Policy {
	if c.Cache.Disabled {
		return cache.NoCachePolicy()
	}
	return cache.Policy{MaxAge: c.Cache.MaxAge}
}

// SearchProviders builds the configured HTTP providers.
func (c *Config) SearchProviders() ([]provider.Provider, error) {
	out := make([]provider.Provider, 0, len(c.Providers))
	for _, pc := range c.Providers {
		kind, err := provider.ParseKind(pc.Kind)
		if err != nil {
			return nil, err
		}
		p, err := provider.NewHTTPProvider(provider.HTTPConfig{
			ID:           selection.ProviderID(pc.ID),
			Kind:         kind,
			Endpoint:     pc.Endpoint,
			APIKey:       pc.APIKey,
			APIKeyHeader: pc.APIKeyHeader,
			Timeout:      pc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// SearchOptions returns the search.Service options implied by c.
// mw may be nil.
func (c *Config) SearchOptions(mw *observe.Middleware) []search.Option {
	opts := []search.Option{
		search.WithSynthesizer(keywords.New(c.Keywords)),
		search.WithPolicy(c.Policy()),
		search.WithGuardWindow(c.Guard.Window),
		search.WithPageSize(c.Search.PageSize),
		search.WithExecutor(resilience.NewExecutorFromConfig(c.Search.Resilience)),
	}
	if mw != nil {
		opts = append(opts, search.WithMiddleware(mw))
	}
	return opts
}
