package cache

import (
	"sync"
	"time"

	"github.com/jonwraymond/mediaquery/storage"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore[T any](clock *fakeClock) (*Store[T], *storage.MemoryStore) {
	raw := storage.NewMemoryStore()
	return NewStore[T](storage.NewAdapter(raw, nil, nil), WithClock(clock.Now)), raw
}
