package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/selection"
	"github.com/jonwraymond/mediaquery/storage"
)

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

// recordingProvider answers with one item per call and remembers queries.
type recordingProvider struct {
	id    selection.ProviderID
	kind  provider.Kind
	calls atomic.Int32
	err   error

	mu      sync.Mutex
	queries []string
}

func (p *recordingProvider) ID() selection.ProviderID { return p.id }
func (p *recordingProvider) Kind() provider.Kind      { return p.kind }

func (p *recordingProvider) Search(_ context.Context, req provider.Request) (provider.Response, error) {
	n := p.calls.Add(1)
	p.mu.Lock()
	p.queries = append(p.queries, req.Query)
	p.mu.Unlock()
	if p.err != nil {
		return provider.Response{}, provider.Wrap(p.id, p.err)
	}
	return provider.Response{Results: []selection.ResultItem{
		{ID: "1", URL: "https://" + string(p.id) + "/" + req.Query + "/" + string(rune('0'+n)), Provider: p.id},
	}}, nil
}

func (p *recordingProvider) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...)
}

// countingMetrics counts suppressions.
type countingMetrics struct {
	observe.Metrics
	suppressed atomic.Int32
}

func (m *countingMetrics) RecordSuppressed(context.Context, observe.OpMeta) {
	m.suppressed.Add(1)
}

func newTestService(t *testing.T, clock *fakeClock, providers []provider.Provider, opts ...Option) (*Service, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc, err := New(storage.NewAdapter(mem, nil, nil), providers, opts...)
	require.NoError(t, err)
	return svc, mem
}
