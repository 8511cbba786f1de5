package search

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/guard"
	"github.com/jonwraymond/mediaquery/keywords"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/selection"
)

// Outcome says how one provider's part of a search ended.
type Outcome string

const (
	// OutcomeFetched means the provider was called and the pool updated.
	OutcomeFetched Outcome = "fetched"
	// OutcomeCached means a fresh cache entry answered and the pool updated.
	OutcomeCached Outcome = "cached"
	// OutcomeSuppressed means the guard blocked a repeat of a recent attempt.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeStale means results arrived after a newer search started and
	// were not applied to the pool.
	OutcomeStale Outcome = "stale"
	// OutcomeSkipped means there was no query to send.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeBusy means every dispatch slot stayed taken past the bulkhead's
	// wait; the provider was not called and Err wraps
	// resilience.ErrBulkheadFull. The guard is cleared so a retry goes out.
	OutcomeBusy Outcome = "busy"
	// OutcomeFailed means the provider call failed; Err is set.
	OutcomeFailed Outcome = "failed"
)

// Query is one search request. An empty Text uses the session's narration.
type Query struct {
	Text     string
	Page     int
	PageSize int
}

// ProviderResult is one provider's part of a Response.
type ProviderResult struct {
	Provider selection.ProviderID
	Query    string
	Key      string
	Results  []selection.ResultItem
	Outcome  Outcome
	Err      error
}

// Response is the outcome of Session.Search, one entry per provider in
// registration order.
type Response struct {
	Ticket    guard.Ticket
	Providers []ProviderResult
}

// Result returns the entry for id.
func (r Response) Result(id selection.ProviderID) (ProviderResult, bool) {
	for _, pr := range r.Providers {
		if pr.Provider == id {
			return pr, true
		}
	}
	return ProviderResult{}, false
}

// Errors joins every provider failure, or returns nil.
func (r Response) Errors() error {
	var errs []error
	for _, pr := range r.Providers {
		if pr.Err != nil {
			errs = append(errs, pr.Err)
		}
	}
	return errors.Join(errs...)
}

// Session is one selection session over one scene and narration.
type Session struct {
	svc     *Service
	id      string
	sceneID string
	rec     *selection.Reconciler
	guards  map[selection.ProviderID]*guard.Guard
	seq     guard.Sequencer
	logger  observe.Logger

	mu        sync.Mutex
	narration string
	bundle    keywords.QueryBundle
}

// NewSession starts a session for sceneID with an empty selection.
func (s *Service) NewSession(sceneID, narration string) *Session {
	ids := s.Providers()
	guards := make(map[selection.ProviderID]*guard.Guard, len(ids))
	for _, id := range ids {
		guards[id] = guard.New(s.window, guard.WithClock(s.now))
	}

	id := uuid.NewString()
	return &Session{
		svc:       s,
		id:        id,
		sceneID:   sceneID,
		rec:       selection.NewReconciler(ids...),
		guards:    guards,
		logger:    s.logger.With(observe.F("session", id), observe.F("scene", sceneID)),
		narration: narration,
		bundle:    s.synth.Synthesize(narration),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// SceneID returns the scene the session serves.
func (s *Session) SceneID() string { return s.sceneID }

// Narration returns the current narration.
func (s *Session) Narration() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narration
}

// Bundle returns the queries synthesized from the current narration.
func (s *Session) Bundle() keywords.QueryBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// Reset starts over with a new narration: the selection and pools are
// cleared, guards forget their records and in-flight searches become stale.
func (s *Session) Reset(narration string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.Invalidate()
	s.rec.Reset()
	for _, g := range s.guards {
		g.Reset()
	}
	s.narration = narration
	s.bundle = s.svc.synth.Synthesize(narration)
}

// Search queries every provider concurrently. Provider failures are reported
// per provider; the returned error is non-nil only when ctx ends first.
func (s *Session) Search(ctx context.Context, q Query) (Response, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = s.svc.pageSize
	}
	q.Text = strings.TrimSpace(q.Text)

	s.mu.Lock()
	ticket := s.seq.Next()
	bundle := s.bundle
	s.mu.Unlock()

	resp := Response{Ticket: ticket, Providers: make([]ProviderResult, len(s.svc.providers))}

	var g errgroup.Group
	for i, p := range s.svc.providers {
		g.Go(func() error {
			resp.Providers[i] = s.searchOne(ctx, p, q, bundle, ticket)
			return nil
		})
	}
	_ = g.Wait()

	return resp, ctx.Err()
}

func (s *Session) searchOne(ctx context.Context, p provider.Provider, q Query, bundle keywords.QueryBundle, ticket guard.Ticket) ProviderResult {
	id := p.ID()
	text := q.Text
	if text == "" {
		text = queryFor(p.Kind(), bundle)
	}
	pr := ProviderResult{Provider: id, Query: text}
	if text == "" {
		pr.Outcome = OutcomeSkipped
		return pr
	}
	pr.Key = ResultKey(id, text, q.Page, q.PageSize)

	g := s.guards[id]
	res, err := s.svc.results.Fetch(ctx, pr.Key, func(ctx context.Context) ([]selection.ResultItem, error) {
		if err := g.Check(pr.Key); err != nil {
			return nil, err
		}
		return s.svc.dispatch(ctx, p, pr.Key, provider.Request{Query: text, Page: q.Page, PageSize: q.PageSize})
	})

	switch {
	case errors.Is(err, guard.ErrSuppressed):
		s.svc.metrics.RecordSuppressed(ctx, observe.OpMeta{
			Operation: "search",
			Provider:  string(id),
			Domain:    cache.DomainSearch,
			Query:     text,
		})
		s.logger.Debug(ctx, "search suppressed", observe.F("provider", id), observe.F("key", pr.Key))
		pr.Outcome = OutcomeSuppressed
		return pr
	case errors.Is(err, resilience.ErrBulkheadFull):
		g.Reset()
		s.logger.Warn(ctx, "search rejected by bulkhead", observe.F("provider", id), observe.F("key", pr.Key))
		pr.Outcome = OutcomeBusy
		pr.Err = err
		return pr
	case err != nil:
		pr.Outcome = OutcomeFailed
		pr.Err = err
		return pr
	}

	pr.Results = slices.Clone(res.Data)
	pr.Outcome = OutcomeFetched
	if res.Cached {
		pr.Outcome = OutcomeCached
	}
	if !s.apply(id, ticket, pr.Results) {
		pr.Outcome = OutcomeStale
	}
	return pr
}

// apply stores items in the provider's pool if ticket is still current.
func (s *Session) apply(id selection.ProviderID, ticket guard.Ticket, items []selection.ResultItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.Current(ticket) {
		return false
	}
	return s.rec.SetResults(id, items) == nil
}

// Results returns the current pool of provider id.
func (s *Session) Results(id selection.ProviderID) ([]selection.ResultItem, error) {
	return s.rec.Results(id)
}

// Select toggles the selection of url in provider id's pool.
func (s *Session) Select(id selection.ProviderID, url string) (selection.State, error) {
	return s.rec.Select(id, url)
}

// State returns the current selection.
func (s *Session) State() selection.State { return s.rec.State() }

// Commit hands back the current pick with modifiedKeyword and persists it
// for the scene. ok is false, and nothing is written, when nothing is
// selected.
func (s *Session) Commit(ctx context.Context, modifiedKeyword string) (sel selection.Selection, ok bool, err error) {
	sel, ok = s.rec.Commit(strings.TrimSpace(modifiedKeyword))
	if !ok {
		return sel, false, nil
	}
	if err := s.svc.selections.Set(ctx, cache.SelectionKey(s.sceneID), sel); err != nil {
		return sel, true, err
	}
	s.logger.Info(ctx, "selection committed", observe.F("provider", sel.Provider))
	return sel, true, nil
}

// queryFor picks the synthesized query shape a provider kind wants.
func queryFor(kind provider.Kind, b keywords.QueryBundle) string {
	if kind == provider.KindWord {
		return b.WordQuery()
	}
	return b.PhraseQuery
}

func itoa(n int) string { return strconv.Itoa(n) }
