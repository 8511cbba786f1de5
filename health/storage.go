package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/mediaquery/storage"
)

// DefaultSlowThreshold marks a storage round trip as degraded.
const DefaultSlowThreshold = 250 * time.Millisecond

// StorageChecker pings a raw store.
type StorageChecker struct {
	name string
	raw  storage.RawStore
	slow time.Duration
}

// NewStorageChecker builds a checker named name. A non-positive slow
// threshold uses DefaultSlowThreshold.
func NewStorageChecker(name string, raw storage.RawStore, slow time.Duration) *StorageChecker {
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}
	return &StorageChecker{name: name, raw: raw, slow: slow}
}

func (c *StorageChecker) Name() string { return c.name }

// Check pings the store.
func (c *StorageChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := c.raw.Ping(ctx); err != nil {
		return Unhealthy("storage unreachable", err)
	}
	if took := time.Since(start); took >= c.slow {
		return Degraded(fmt.Sprintf("storage ping took %s", took.Round(time.Millisecond))).
			WithDetails(map[string]any{"threshold": c.slow.String()})
	}
	return Healthy("storage reachable")
}

// ProbeKey is the key written by RoundTripChecker.
const ProbeKey = "health_probe"

// RoundTripChecker saves, loads and deletes a probe value through an
// adapter, exercising the configured codec.
type RoundTripChecker struct {
	adapter *storage.Adapter
	now     func() time.Time
}

// NewRoundTripChecker builds a RoundTripChecker.
func NewRoundTripChecker(adapter *storage.Adapter) *RoundTripChecker {
	return &RoundTripChecker{adapter: adapter, now: time.Now}
}

func (c *RoundTripChecker) Name() string { return "codec" }

type probe struct {
	Nonce int64 `json:"nonce"`
}

// Check performs the round trip.
func (c *RoundTripChecker) Check(ctx context.Context) Result {
	want := probe{Nonce: c.now().UnixNano()}
	if err := c.adapter.Save(ctx, ProbeKey, want); err != nil {
		return Unhealthy("probe write failed", err)
	}
	defer func() { _ = c.adapter.Delete(context.WithoutCancel(ctx), ProbeKey) }()

	var got probe
	if !c.adapter.Load(ctx, ProbeKey, &got) {
		return Unhealthy("probe unreadable", ErrProbeMismatch)
	}
	if got != want {
		return Unhealthy("probe changed in storage", ErrProbeMismatch)
	}
	return Healthy("codec round trip ok")
}

var (
	_ Checker = (*StorageChecker)(nil)
	_ Checker = (*RoundTripChecker)(nil)
)
