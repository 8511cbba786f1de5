package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/mediaquery/cache"
	"github.com/jonwraymond/mediaquery/guard"
	"github.com/jonwraymond/mediaquery/observe"
	"github.com/jonwraymond/mediaquery/provider"
	"github.com/jonwraymond/mediaquery/resilience"
	"github.com/jonwraymond/mediaquery/selection"
	"github.com/jonwraymond/mediaquery/storage"
)

const narration = "The quick brown fox jumps over the lazy dog"

func TestNew_Validation(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemoryStore(), nil, nil)
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}

	_, err := New(nil, []provider.Provider{p})
	assert.ErrorIs(t, err, ErrNilAdapter)

	_, err = New(adapter, nil)
	assert.ErrorIs(t, err, ErrNoProviders)

	_, err = New(adapter, []provider.Provider{p, &recordingProvider{id: "google"}})
	assert.ErrorIs(t, err, ErrDuplicateProvider)
}

func TestSearch_SynthesizesPerKind(t *testing.T) {
	phrase := &recordingProvider{id: "google", kind: provider.KindPhrase}
	word := &recordingProvider{id: "envato", kind: provider.KindWord}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{phrase, word})

	sess := svc.NewSession("scene-1", narration)
	resp, err := sess.Search(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, resp.Providers, 2)

	assert.Equal(t, []string{"quick brown fox jumps lazy dog and dog fox"}, phrase.Queries())
	assert.Equal(t, []string{"quick brown fox jumps lazy dog"}, word.Queries())

	for _, pr := range resp.Providers {
		assert.Equal(t, OutcomeFetched, pr.Outcome, pr.Provider)
		assert.NoError(t, pr.Err)
		assert.Equal(t, ResultKey(pr.Provider, pr.Query, 1, DefaultPageSize), pr.Key)

		pool, err := sess.Results(pr.Provider)
		require.NoError(t, err)
		assert.Equal(t, pr.Results, pool)
	}
	assert.NoError(t, resp.Errors())
}

func TestSearch_ExplicitTextAndPaging(t *testing.T) {
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p}, WithPageSize(30))

	resp, err := svc.NewSession("s", narration).Search(context.Background(), Query{Text: "  ocean waves ", Page: 3})
	require.NoError(t, err)

	pr, ok := resp.Result("google")
	require.True(t, ok)
	assert.Equal(t, "ocean waves", pr.Query)
	assert.Equal(t, cache.DeriveKey("search", "google", "ocean waves", "3", "30"), pr.Key)
}

func TestSearch_CacheHit(t *testing.T) {
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p})
	ctx := context.Background()

	first, err := svc.NewSession("s1", narration).Search(ctx, Query{})
	require.NoError(t, err)

	// A different session, same narration: served from the cache.
	second, err := svc.NewSession("s2", narration).Search(ctx, Query{})
	require.NoError(t, err)

	assert.EqualValues(t, 1, p.calls.Load())
	assert.Equal(t, OutcomeCached, second.Providers[0].Outcome)
	assert.Equal(t, first.Providers[0].Results, second.Providers[0].Results)
}

func TestSearch_CacheExpires(t *testing.T) {
	clock := newFakeClock()
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, _ := newTestService(t, clock, []provider.Provider{p}, WithPolicy(cache.Policy{MaxAge: time.Minute}))
	sess := svc.NewSession("s", narration)
	ctx := context.Background()

	_, err := sess.Search(ctx, Query{})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	resp, err := sess.Search(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, resp.Providers[0].Outcome)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestSearch_AwkwardExplicitQueriesAreCached(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"multi-line", "sunset\nbeach"},
		{"crlf", "sunset\r\nbeach"},
		{"long", strings.Repeat("waves crash on the rocks ", 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			p := &recordingProvider{id: "google", kind: provider.KindPhrase}
			svc, mem := newTestService(t, clock, []provider.Provider{p})
			sess := svc.NewSession("s", narration)
			ctx := context.Background()

			first, err := sess.Search(ctx, Query{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, OutcomeFetched, first.Providers[0].Outcome)
			require.NoError(t, cache.ValidateKey(first.Providers[0].Key))

			clock.Advance(2 * time.Second)
			second, err := sess.Search(ctx, Query{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, OutcomeCached, second.Providers[0].Outcome)
			assert.EqualValues(t, 1, p.calls.Load())

			keys, err := mem.Keys(ctx, cache.DomainSearch)
			require.NoError(t, err)
			assert.Len(t, keys, 1)
		})
	}
}

func TestSearch_GuardSuppressesRepeats(t *testing.T) {
	clock := newFakeClock()
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	metrics := &countingMetrics{Metrics: observe.NopMetrics()}
	svc, _ := newTestService(t, clock, []provider.Provider{p},
		WithPolicy(cache.NoCachePolicy()),
		WithMiddleware(observe.NewMiddleware(nil, metrics, nil)),
	)
	sess := svc.NewSession("s", narration)
	ctx := context.Background()

	_, err := sess.Search(ctx, Query{})
	require.NoError(t, err)

	clock.Advance(guard.DefaultWindow - time.Millisecond)
	resp, err := sess.Search(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, resp.Providers[0].Outcome)
	assert.NoError(t, resp.Providers[0].Err)
	assert.EqualValues(t, 1, p.calls.Load())
	assert.EqualValues(t, 1, metrics.suppressed.Load())

	// The pool keeps the last applied results.
	pool, err := sess.Results("google")
	require.NoError(t, err)
	assert.Len(t, pool, 1)

	clock.Advance(2 * time.Millisecond)
	resp, err = sess.Search(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, resp.Providers[0].Outcome)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestSearch_GuardIsPerSessionAndKey(t *testing.T) {
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p}, WithPolicy(cache.NoCachePolicy()))
	ctx := context.Background()

	sess := svc.NewSession("s", narration)
	_, err := sess.Search(ctx, Query{Text: "a b c"})
	require.NoError(t, err)
	resp, err := sess.Search(ctx, Query{Text: "d e f"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, resp.Providers[0].Outcome, "different key is not suppressed")

	other, err := svc.NewSession("s", narration).Search(ctx, Query{Text: "d e f"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, other.Providers[0].Outcome, "another session has its own guard")
}

func TestSearch_ProviderFailure(t *testing.T) {
	clock := newFakeClock()
	bad := &recordingProvider{id: "google", kind: provider.KindPhrase, err: errors.New("503")}
	good := &recordingProvider{id: "envato", kind: provider.KindWord}
	svc, mem := newTestService(t, clock, []provider.Provider{bad, good})
	sess := svc.NewSession("s", narration)
	ctx := context.Background()

	resp, err := sess.Search(ctx, Query{})
	require.NoError(t, err)

	failed, _ := resp.Result("google")
	assert.Equal(t, OutcomeFailed, failed.Outcome)
	assert.Empty(t, failed.Results)
	assert.ErrorIs(t, failed.Err, provider.ErrNetwork)
	assert.ErrorIs(t, resp.Errors(), provider.ErrNetwork)

	ok, _ := resp.Result("envato")
	assert.Equal(t, OutcomeFetched, ok.Outcome)

	// Failures are not cached: only the envato page is stored.
	keys, err := mem.Keys(ctx, "search_")
	require.NoError(t, err)
	assert.Equal(t, []string{ok.Key}, keys)

	// No retry inside the window; a new attempt after it calls again.
	clock.Advance(guard.DefaultWindow)
	_, err = sess.Search(ctx, Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, bad.calls.Load())
}

func TestSearch_Timeout(t *testing.T) {
	slow := provider.NewFunc("google", provider.KindPhrase, func(ctx context.Context, _ provider.Request) (provider.Response, error) {
		<-ctx.Done()
		return provider.Response{}, ctx.Err()
	})
	exec := resilience.NewExecutor(resilience.WithTimeout(20 * time.Millisecond))
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{slow}, WithExecutor(exec))

	resp, err := svc.NewSession("s", narration).Search(context.Background(), Query{})
	require.NoError(t, err)

	pr := resp.Providers[0]
	assert.Equal(t, OutcomeFailed, pr.Outcome)
	assert.ErrorIs(t, pr.Err, resilience.ErrTimeout)
	assert.ErrorIs(t, pr.Err, provider.ErrNetwork)
}

func TestSearch_EmptyNarrationSkips(t *testing.T) {
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p})

	resp, err := svc.NewSession("s", "  the of and ").Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Providers[0].Outcome)
	assert.Empty(t, resp.Providers[0].Key)
	assert.Zero(t, p.calls.Load())
}

func TestSearch_StaleAfterReset(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := provider.NewFunc("google", provider.KindPhrase, func(ctx context.Context, req provider.Request) (provider.Response, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return provider.Response{}, ctx.Err()
		}
		return provider.Response{Results: []selection.ResultItem{{ID: "1", URL: "u1"}}}, nil
	})
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{blocking})
	sess := svc.NewSession("s", narration)

	done := make(chan Response, 1)
	go func() {
		resp, _ := sess.Search(context.Background(), Query{})
		done <- resp
	}()

	<-started
	sess.Reset("city skyline at night")
	close(release)
	resp := <-done

	assert.Equal(t, OutcomeStale, resp.Providers[0].Outcome)
	assert.Len(t, resp.Providers[0].Results, 1)
	pool, err := sess.Results("google")
	require.NoError(t, err)
	assert.Empty(t, pool, "stale results must not reach the pool")
	assert.Equal(t, "city skyline at night", sess.Narration())
	assert.Contains(t, sess.Bundle().WordTerms, "skyline")
}

func TestSearch_BulkheadFullIsBusyAndRetryable(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	p := provider.NewFunc("google", provider.KindPhrase, func(ctx context.Context, req provider.Request) (provider.Response, error) {
		if req.Query == "slow harbor" {
			once.Do(func() { close(started) })
			<-release
		}
		return provider.Response{Results: []selection.ResultItem{{ID: "1", URL: "u-" + req.Query}}}, nil
	})
	exec := resilience.NewExecutor(resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1})))
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p}, WithExecutor(exec))
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.NewSession("a", narration).Search(ctx, Query{Text: "slow harbor"})
	}()
	<-started

	sess := svc.NewSession("b", narration)
	resp, err := sess.Search(ctx, Query{Text: "quiet beach"})
	require.NoError(t, err)
	pr := resp.Providers[0]
	assert.Equal(t, OutcomeBusy, pr.Outcome)
	assert.ErrorIs(t, pr.Err, resilience.ErrBulkheadFull)
	assert.NotErrorIs(t, pr.Err, provider.ErrNetwork)

	close(release)
	<-done

	// No clock advance: the rejected attempt must not trip the guard.
	resp, err = sess.Search(ctx, Query{Text: "quiet beach"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetched, resp.Providers[0].Outcome)
}

func TestSearch_SharesInFlightCalls(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var n int32
	var mu sync.Mutex
	p := provider.NewFunc("google", provider.KindPhrase, func(ctx context.Context, _ provider.Request) (provider.Response, error) {
		mu.Lock()
		n++
		first := n == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return provider.Response{Results: []selection.ResultItem{{ID: "1", URL: "u1"}}}, nil
	})
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p})
	ctx := context.Background()

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, _ := svc.NewSession("a", narration).Search(ctx, Query{})
		outcomes[0] = resp.Providers[0].Outcome
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, _ := svc.NewSession("b", narration).Search(ctx, Query{})
		outcomes[1] = resp.Providers[0].Outcome
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.EqualValues(t, 1, n, "identical concurrent searches share one provider call")
	assert.Equal(t, OutcomeFetched, outcomes[0])
	assert.Contains(t, []Outcome{OutcomeFetched, OutcomeCached}, outcomes[1])
}

func TestSearch_CallerCancel(t *testing.T) {
	release := make(chan struct{})
	p := provider.NewFunc("google", provider.KindPhrase, func(ctx context.Context, _ provider.Request) (provider.Response, error) {
		<-release
		return provider.Response{}, nil
	})
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := svc.NewSession("s", narration).Search(ctx, Query{})
	close(release)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeFailed, resp.Providers[0].Outcome)
	assert.ErrorIs(t, resp.Providers[0].Err, context.Canceled)
}

func TestSession_SelectAndCommit(t *testing.T) {
	google := &recordingProvider{id: "google", kind: provider.KindPhrase}
	envato := &recordingProvider{id: "envato", kind: provider.KindWord}
	svc, _ := newTestService(t, newFakeClock(), []provider.Provider{google, envato})
	ctx := context.Background()

	sess := svc.NewSession("scene-7", narration)
	assert.NotEmpty(t, sess.ID())
	assert.NotEqual(t, sess.ID(), svc.NewSession("scene-7", narration).ID())
	assert.Equal(t, "scene-7", sess.SceneID())

	_, ok, err := sess.Commit(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok, "nothing selected")
	_, ok = svc.LastSelection(ctx, "scene-7")
	assert.False(t, ok)

	resp, err := sess.Search(ctx, Query{})
	require.NoError(t, err)
	gURL := resp.Providers[0].Results[0].URL
	eURL := resp.Providers[1].Results[0].URL

	_, err = sess.Select("google", gURL)
	require.NoError(t, err)
	st, err := sess.Select("envato", eURL)
	require.NoError(t, err)
	assert.Equal(t, selection.State{Provider: "envato", URL: eURL}, st)
	assert.Equal(t, st, sess.State())

	sel, ok, err := sess.Commit(ctx, " foxes at dusk ")
	require.NoError(t, err)
	require.True(t, ok)
	want := selection.Selection{SelectedURL: eURL, Provider: "envato", ModifiedKeyword: "foxes at dusk"}
	assert.Equal(t, want, sel)

	got, ok := svc.LastSelection(ctx, "scene-7")
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, svc.ForgetSelection(ctx, "scene-7"))
	_, ok = svc.LastSelection(ctx, "scene-7")
	assert.False(t, ok)
}

func TestService_TopicsAndMediaLibrary(t *testing.T) {
	p := &recordingProvider{id: "google", kind: provider.KindPhrase}
	svc, mem := newTestService(t, newFakeClock(), []provider.Provider{p})
	ctx := context.Background()

	q := TopicQuery{Location: "Lisbon", LocationType: "city", DateRange: "7d", Country: "PT"}
	assert.Equal(t, "topics_Lisbon_city_7d_PT", q.Key())

	discovered := 0
	discover := func(context.Context) ([]string, error) {
		discovered++
		return []string{"tram", "fado"}, nil
	}
	first, err := svc.Topics(ctx, q, discover)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	second, err := svc.Topics(ctx, q, discover)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, []string{"tram", "fado"}, second.Data)
	assert.Equal(t, 1, discovered)

	list := func(context.Context) ([]selection.ResultItem, error) {
		return []selection.ResultItem{{ID: "m1", URL: "file:///m1.mp4"}}, nil
	}
	_, err = svc.MediaLibrary(ctx, list)
	require.NoError(t, err)
	lib, err := svc.MediaLibrary(ctx, list)
	require.NoError(t, err)
	assert.True(t, lib.Cached)

	require.NoError(t, svc.InvalidateMediaLibrary(ctx))
	keys, err := mem.Keys(ctx, cache.MediaLibraryKey())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
