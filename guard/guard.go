package guard

import (
	"errors"
	"sync"
	"time"
)

// DefaultWindow is the suppression window used when none is configured.
const DefaultWindow = 1500 * time.Millisecond

// ErrSuppressed marks a fetch that was not dispatched because an identical
// one was attempted inside the window.
var ErrSuppressed = errors.New("guard: fetch suppressed")

// Record is the last attempted fetch. It lives for the life of the Guard only.
type Record struct {
	Key           string
	LastAttemptAt time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// Guard is a single-record, time-windowed de-duplicator.
type Guard struct {
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	record Record
	has    bool
}

// New creates a Guard. A non-positive window selects DefaultWindow.
func New(window time.Duration, opts ...Option) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	g := &Guard{window: window, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShouldFetch reports whether a fetch for key may be dispatched now.
// When it returns true the attempt is recorded; a suppressed call leaves the
// existing record untouched.
func (g *Guard) ShouldFetch(key string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.has && g.record.Key == key && now.Sub(g.record.LastAttemptAt) < g.window {
		return false
	}
	g.record = Record{Key: key, LastAttemptAt: now}
	g.has = true
	return true
}

// Check is ShouldFetch expressed as an error: nil to proceed, ErrSuppressed otherwise.
func (g *Guard) Check(key string) error {
	if g.ShouldFetch(key) {
		return nil
	}
	return ErrSuppressed
}

// Last returns the current record, if any.
func (g *Guard) Last() (Record, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record, g.has
}

// Reset forgets the current record.
func (g *Guard) Reset() {
	g.mu.Lock()
	g.record = Record{}
	g.has = false
	g.mu.Unlock()
}

// Window returns the suppression window.
func (g *Guard) Window() time.Duration {
	return g.window
}
