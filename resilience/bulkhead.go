package resilience

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrent applies when a Bulkhead is built without a limit.
const DefaultMaxConcurrent = 8

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of calls allowed in flight.
	MaxConcurrent int

	// MaxWait is how long a caller waits for a slot. Zero fails at once.
	MaxWait time.Duration
}

// Bulkhead caps concurrent calls with a counting semaphore.
type Bulkhead struct {
	cfg BulkheadConfig
	sem chan struct{}

	mu    sync.Mutex
	stats BulkheadStats
}

// BulkheadStats is a snapshot of Bulkhead usage.
type BulkheadStats struct {
	Active    int
	Peak      int
	Capacity  int
	Rejected  int64
	Completed int64
}

// NewBulkhead builds a Bulkhead from cfg.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Bulkhead{
		cfg:   cfg,
		sem:   make(chan struct{}, cfg.MaxConcurrent),
		stats: BulkheadStats{Capacity: cfg.MaxConcurrent},
	}
}

// Acquire takes a slot, waiting up to MaxWait.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.admitted()
		return nil
	default:
	}

	if b.cfg.MaxWait <= 0 {
		b.reject()
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.cfg.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		b.admitted()
		return nil
	case <-timer.C:
		b.reject()
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.stats.Active--
		b.stats.Completed++
		b.mu.Unlock()
	default:
	}
}

// Execute runs op inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// Stats returns a usage snapshot.
func (b *Bulkhead) Stats() BulkheadStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Bulkhead) admitted() {
	b.mu.Lock()
	b.stats.Active++
	b.stats.Peak = max(b.stats.Peak, b.stats.Active)
	b.mu.Unlock()
}

func (b *Bulkhead) reject() {
	b.mu.Lock()
	b.stats.Rejected++
	b.mu.Unlock()
}
