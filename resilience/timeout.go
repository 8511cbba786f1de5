package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout applies when a Timeout is built with a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout runs operations under a deadline.
type Timeout struct {
	d time.Duration
}

// NewTimeout builds a Timeout of d.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Duration returns the configured deadline.
func (t *Timeout) Duration() time.Duration { return t.d }

// Execute runs op with a derived deadline. If the deadline fires first the
// caller gets ErrTimeout at once; op keeps its context and is expected to
// return soon after cancellation.
//
// Cancellation of the parent context is reported as the parent's error.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(opCtx) }()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrTimeout, t.d, err)
		}
		return err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %s", ErrTimeout, t.d)
	}
}
