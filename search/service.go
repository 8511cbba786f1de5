package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/guard"
	"github.com/jonwraymond/mediaquery/keywords"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/selection"
	"github.com/jonwraymond/mediaquery/storage"
)

// DefaultPageSize applies when a Query has no page size.
const DefaultPageSize = 15

// Option configures a Service.
type Option func(*Service)

// WithSynthesizer replaces the default keyword synthesizer.
func WithSynthesizer(s *keywords.Synthesizer) Option {
	return func(svc *Service) { svc.synth = s }
}

// WithMiddleware instruments provider calls and supplies the logger and
// metrics sink.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(svc *Service) { svc.mw = mw }
}

// WithExecutor bounds provider calls.
func WithExecutor(e *resilience.Executor) Option {
	return func(svc *Service) { svc.exec = e }
}

// WithPolicy sets the cache policy for search results.
func WithPolicy(p cache.Policy) Option {
	return func(svc *Service) { svc.policy = p }
}

// WithGuardWindow sets the repeat-fetch window of new sessions.
func WithGuardWindow(d time.Duration) Option {
	return func(svc *Service) { svc.window = d }
}

// WithPageSize sets the page size used when a Query has none.
func WithPageSize(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.pageSize = n
		}
	}
}

// WithClock overrides the time source of the caches and guards.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// Service wires keyword synthesis, caching, guarding and providers together.
//
// Contract:
// - Concurrency: a Service and its Sessions are safe for concurrent use.
// - Errors: provider failures surface per provider in Response; storage
//   failures degrade to cache misses.
type Service struct {
	providers []provider.Provider
	synth     *keywords.Synthesizer
	mw        *observe.Middleware
	exec      *resilience.Executor
	policy    cache.Policy
	window    time.Duration
	pageSize  int
	now       func() time.Time

	logger     observe.Logger
	metrics    observe.Metrics
	results    *cache.Fetcher[[]selection.ResultItem]
	selections *cache.Store[selection.Selection]
	topics     *cache.Fetcher[[]string]
	library    *cache.Fetcher[[]selection.ResultItem]
	flight     singleflight.Group
}

// New builds a Service over adapter and providers.
func New(adapter *storage.Adapter, providers []provider.Provider, opts ...Option) (*Service, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	seen := make(map[selection.ProviderID]struct{}, len(providers))
	for _, p := range providers {
		if _, dup := seen[p.ID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, p.ID())
		}
		seen[p.ID()] = struct{}{}
	}

	svc := &Service{
		providers: append([]provider.Provider(nil), providers...),
		synth:     keywords.Default(),
		mw:        observe.NewMiddleware(nil, nil, nil),
		exec:      resilience.NewExecutorFromConfig(resilience.Config{}),
		policy:    cache.DefaultPolicy(),
		window:    guard.DefaultWindow,
		pageSize:  DefaultPageSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.logger = svc.mw.Logger().With(observe.F("component", "search"))
	svc.metrics = svc.mw.Metrics()

	storeOpts := func(domain string) []cache.Option {
		return []cache.Option{
			cache.WithDomain(domain),
			cache.WithClock(svc.now),
			cache.WithMetrics(svc.metrics),
			cache.WithLogger(svc.logger),
		}
	}
	svc.results = cache.NewFetcher(
		cache.NewStore[[]selection.ResultItem](adapter, storeOpts(cache.DomainSearch)...), svc.policy)
	svc.selections = cache.NewStore[selection.Selection](adapter, storeOpts(cache.DomainSelection)...)
	svc.topics = cache.NewFetcher(
		cache.NewStore[[]string](adapter, storeOpts(cache.DomainTopics)...), svc.policy)
	svc.library = cache.NewFetcher(
		cache.NewStore[[]selection.ResultItem](adapter, storeOpts(cache.DomainMediaLibrary)...), svc.policy)

	return svc, nil
}

// Providers returns the provider IDs in registration order.
func (s *Service) Providers() []selection.ProviderID {
	ids := make([]selection.ProviderID, len(s.providers))
	for i, p := range s.providers {
		ids[i] = p.ID()
	}
	return ids
}

// Synthesizer returns the keyword synthesizer in use.
func (s *Service) Synthesizer() *keywords.Synthesizer { return s.synth }

// ResultKey derives the cache key of one provider result page.
func ResultKey(id selection.ProviderID, query string, page, pageSize int) string {
	return cache.DeriveKey(cache.DomainSearch, string(id), query, itoa(page), itoa(pageSize))
}

// LastSelection returns the selection last committed for sceneID.
func (s *Service) LastSelection(ctx context.Context, sceneID string) (selection.Selection, bool) {
	return s.selections.Get(ctx, cache.SelectionKey(sceneID), s.selectionMaxAge())
}

// ForgetSelection removes the committed selection for sceneID.
func (s *Service) ForgetSelection(ctx context.Context, sceneID string) error {
	return s.selections.Remove(ctx, cache.SelectionKey(sceneID))
}

// TopicQuery selects one topic-discovery result set.
type TopicQuery struct {
	Location     string
	LocationType string
	DateRange    string
	Country      string
}

// Key derives the topic-discovery cache key.
func (q TopicQuery) Key() string {
	return cache.TopicsKey(q.Location, q.LocationType, q.DateRange, q.Country)
}

// Topics answers a topic-discovery query from the cache, calling discover on
// a miss.
func (s *Service) Topics(ctx context.Context, q TopicQuery, discover cache.FetchFunc[[]string]) (cache.Result[[]string], error) {
	return s.topics.Fetch(ctx, q.Key(), discover)
}

// MediaLibrary answers the media-library listing from the cache, calling
// list on a miss.
func (s *Service) MediaLibrary(ctx context.Context, list cache.FetchFunc[[]selection.ResultItem]) (cache.Result[[]selection.ResultItem], error) {
	return s.library.Fetch(ctx, cache.MediaLibraryKey(), list)
}

// InvalidateMediaLibrary drops the cached media-library listing.
func (s *Service) InvalidateMediaLibrary(ctx context.Context) error {
	return s.library.Invalidate(ctx, cache.MediaLibraryKey())
}

// dispatch runs one provider call, collapsing concurrent calls for the same
// key. The shared call outlives a caller that gives up; the executor's
// timeout bounds it.
func (s *Service) dispatch(ctx context.Context, p provider.Provider, key string, req provider.Request) ([]selection.ResultItem, error) {
	ch := s.flight.DoChan(key, func() (any, error) {
		var items []selection.ResultItem
		meta := observe.OpMeta{
			Operation: "search",
			Provider:  string(p.ID()),
			Domain:    cache.DomainSearch,
			Query:     req.Query,
		}
		call := s.mw.Wrap(func(ctx context.Context, _ observe.OpMeta) error {
			return s.exec.Execute(ctx, func(ctx context.Context) error {
				resp, err := p.Search(ctx, req)
				if err != nil {
					return err
				}
				items = resp.Results
				return nil
			})
		})
		if err := call(context.WithoutCancel(ctx), meta); err != nil {
			if errors.Is(err, resilience.ErrBulkheadFull) {
				return nil, fmt.Errorf("search: %s: %w", p.ID(), err)
			}
			return nil, provider.Wrap(p.ID(), err)
		}
		if items == nil {
			items = []selection.ResultItem{}
		}
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]selection.ResultItem), nil
	case <-ctx.Done():
		return nil, provider.Wrap(p.ID(), ctx.Err())
	}
}

func (s *Service) selectionMaxAge() time.Duration {
	return s.policy.Retention()
}
