package resilience

import (
	"context"
	"time"
)

// Config is the YAML shape for provider call bounds.
type Config struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxWait       time.Duration `yaml:"max_wait"`
}

// Executor applies a bulkhead and a timeout around a call.
// A zero Executor runs calls unbounded.
type Executor struct {
	bulkhead *Bulkhead
	timeout  *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor builds an Executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultMaxWait is how long a call queues for a bulkhead slot when Config
// leaves MaxWait unset.
const DefaultMaxWait = 2 * time.Second

// NewExecutorFromConfig builds an Executor with both bounds from cfg.
// Zero fields fall back to package defaults.
func NewExecutorFromConfig(cfg Config) *Executor {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return NewExecutor(
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: cfg.MaxConcurrent, MaxWait: cfg.MaxWait})),
		WithTimeout(cfg.Timeout),
	)
}

// WithBulkhead sets the concurrency bound.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead { return e.bulkhead }

// Execute runs op: bulkhead slot first, then the timeout inside it.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op
	if e.timeout != nil {
		inner := run
		run = func(ctx context.Context) error { return e.timeout.Execute(ctx, inner) }
	}
	if e.bulkhead != nil {
		inner := run
		run = func(ctx context.Context) error { return e.bulkhead.Execute(ctx, inner) }
	}
	return run(ctx)
}
