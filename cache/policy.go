package cache

import "time"

// DefaultMaxAge is the maximum age shared by every cache domain.
const DefaultMaxAge = time.Hour

// Policy configures caching behavior.
type Policy struct {
	// MaxAge is the age at which an entry becomes stale.
	// If zero or negative, caching is disabled.
	MaxAge time.Duration
}

// DefaultPolicy returns the default caching policy (MaxAge: 1 hour).
func DefaultPolicy() Policy {
	return Policy{MaxAge: DefaultMaxAge}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.MaxAge > 0
}

// Retention is the age limit for entries written regardless of the policy,
// such as committed selections: MaxAge when caching is on, else DefaultMaxAge.
func (p Policy) Retention() time.Duration {
	if p.ShouldCache() {
		return p.MaxAge
	}
	return DefaultMaxAge
}
