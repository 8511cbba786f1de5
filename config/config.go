package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/guard"
	"github.com/jonwraymond/mediaquery/keywords"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/search"
	"github.com/jonwraymond/mediaquery/secret"
	"github.com/jonwraymond/mediaquery/storage"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Codec names accepted in storage.codec.
const (
	CodecObfuscate = "obfuscate"
	CodecSigned    = "signed"
	CodecJSON      = "json"
)

// EnvPath names the environment variable consulted for the config path.
const EnvPath = "MEDIAQUERY_CONFIG"

// Config is the root of the configuration file.
type Config struct {
	Storage   StorageConfig    `yaml:"storage"`
	Cache     CacheConfig      `yaml:"cache"`
	Guard     GuardConfig      `yaml:"guard"`
	Search    SearchConfig     `yaml:"search"`
	Keywords  keywords.Config  `yaml:"keywords"`
	Providers []ProviderConfig `yaml:"providers"`
	Secrets   SecretsConfig    `yaml:"secrets"`
	Observe   observe.Config   `yaml:"observe"`
}

// StorageConfig selects the cache backend and codec.
type StorageConfig struct {
	Backend        string        `yaml:"backend"` // memory|sqlite|redis
	Path           string        `yaml:"path"`
	Redis          RedisConfig   `yaml:"redis"`
	Codec          string        `yaml:"codec"` // obfuscate|signed|json
	ObfuscationKey string        `yaml:"obfuscation_key"`
	SigningKey     string        `yaml:"signing_key"`
	Issuer         string        `yaml:"issuer"`
	SlowPing       time.Duration `yaml:"slow_ping"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// CacheConfig sets the shared entry lifetime.
type CacheConfig struct {
	MaxAge   time.Duration `yaml:"max_age"`
	Disabled bool          `yaml:"disabled"`
}

// GuardConfig sets the repeat-fetch window.
type GuardConfig struct {
	Window time.Duration `yaml:"window"`
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	PageSize   int               `yaml:"page_size"`
	Resilience resilience.Config `yaml:"resilience"`
}

// ProviderConfig declares one HTTP search provider.
type ProviderConfig struct {
	ID           string        `yaml:"id"`
	Kind         string        `yaml:"kind"` // phrase|word
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"api_key"`
	APIKeyHeader string        `yaml:"api_key_header"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SecretsConfig configures secretref resolution.
type SecretsConfig struct {
	// Providers lists the secret providers to enable, by registry name.
	Providers []string `yaml:"providers"`
	// FileDir is the base directory of the "file" provider.
	FileDir string `yaml:"file_dir"`
	// Strict rejects references that resolve to "".
	Strict bool `yaml:"strict"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Path returns explicit if set, else $MEDIAQUERY_CONFIG, else "".
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvPath)
}

// Load reads, expands, decodes, defaults and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (Config, error) {
	expanded, err := secret.ExpandEnvStrict(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendMemory
	}
	if c.Storage.Codec == "" {
		c.Storage.Codec = CodecObfuscate
	}
	if c.Storage.ObfuscationKey == "" {
		c.Storage.ObfuscationKey = storage.DefaultObfuscationKey
	}
	if c.Storage.Issuer == "" {
		c.Storage.Issuer = "mediaquery"
	}
	if c.Cache.MaxAge <= 0 {
		c.Cache.MaxAge = cache.DefaultMaxAge
	}
	if c.Guard.Window <= 0 {
		c.Guard.Window = guard.DefaultWindow
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = search.DefaultPageSize
	}
	if c.Search.Resilience.Timeout <= 0 {
		c.Search.Resilience.Timeout = 10 * time.Second
	}
	if c.Search.Resilience.MaxConcurrent <= 0 {
		c.Search.Resilience.MaxConcurrent = resilience.DefaultMaxConcurrent
	}
	if c.Search.Resilience.MaxWait <= 0 {
		c.Search.Resilience.MaxWait = resilience.DefaultMaxWait
	}
	if len(c.Secrets.Providers) == 0 {
		c.Secrets.Providers = []string{"env", "file"}
	}
	for i := range c.Providers {
		if c.Providers[i].Kind == "" {
			c.Providers[i].Kind = string(provider.KindPhrase)
		}
	}
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = "mediaquery"
	}
	if c.Observe.Logging.Level == "" {
		c.Observe.Logging.Level = "info"
	}
	if c.Observe.Tracing.Exporter == "" {
		c.Observe.Tracing.Exporter = "none"
	}
	if c.Observe.Metrics.Exporter == "" {
		c.Observe.Metrics.Exporter = "none"
	}
}

// Validate checks the configuration. Every error wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Storage.Backend {
	case storage.BackendMemory:
	case storage.BackendSQLite:
		if c.Storage.Path == "" {
			invalid("storage.path is required for the sqlite backend")
		}
	case storage.BackendRedis:
		if len(c.Storage.Redis.Addrs) == 0 {
			invalid("storage.redis.addrs is required for the redis backend")
		}
	default:
		invalid("storage.backend %q", c.Storage.Backend)
	}

	switch c.Storage.Codec {
	case CodecObfuscate, CodecJSON:
	case CodecSigned:
		if c.Storage.SigningKey == "" {
			invalid("storage.signing_key is required for the signed codec")
		}
	default:
		invalid("storage.codec %q", c.Storage.Codec)
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for i, p := range c.Providers {
		switch {
		case p.ID == "":
			invalid("providers[%d].id is required", i)
		case p.Endpoint == "":
			invalid("providers[%d].endpoint is required", i)
		}
		if _, dup := seen[p.ID]; dup && p.ID != "" {
			invalid("providers[%d].id %q is duplicated", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		if _, err := provider.ParseKind(p.Kind); err != nil {
			invalid("providers[%d].kind: %v", i, err)
		}
	}

	for _, name := range c.Secrets.Providers {
		if !slices.Contains(secret.DefaultRegistry.Names(), name) {
			invalid("secrets.providers: unknown provider %q", name)
		}
	}

	if err := c.Observe.Validate(); err != nil {
		invalid("observe: %v", err)
	}

	return errors.Join(errs...)
}
