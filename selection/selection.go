package selection

import (
	"fmt"
	"slices"
	"sync"
)

// ProviderID names a result provider, for example "google" or "envato".
type ProviderID string

// ResultItem is one search result. Items are not modified after fetch.
type ResultItem struct {
	ID       string     `json:"id"`
	URL      string     `json:"url"`
	Provider ProviderID `json:"provider"`
}

// State is the selection across all pools. The zero value is Empty.
type State struct {
	Provider ProviderID `json:"provider,omitempty"`
	URL      string     `json:"url,omitempty"`
}

// Empty reports whether nothing is selected.
func (s State) Empty() bool { return s.URL == "" }

func (s State) String() string {
	if s.Empty() {
		return "Empty"
	}
	return fmt.Sprintf("Selected(%s, %s)", s.Provider, s.URL)
}

// Selection is the committed pick handed back to the caller.
type Selection struct {
	SelectedURL     string     `json:"selectedUrl"`
	Provider        ProviderID `json:"provider"`
	ModifiedKeyword string     `json:"modifiedKeyword,omitempty"`
}

// Reconciler enforces at most one selected item across its provider pools.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: every transition is applied under one lock; readers never see
//   a partially applied selection.
type Reconciler struct {
	mu      sync.RWMutex
	order   []ProviderID
	pools   map[ProviderID][]ResultItem
	current State
}

// NewReconciler builds a Reconciler with one empty pool per provider.
// Duplicate provider IDs are collapsed.
func NewReconciler(providers ...ProviderID) *Reconciler {
	r := &Reconciler{pools: make(map[ProviderID][]ResultItem, len(providers))}
	for _, p := range providers {
		if _, ok := r.pools[p]; ok {
			continue
		}
		r.order = append(r.order, p)
		r.pools[p] = nil
	}
	return r
}

// Providers returns the registered providers in registration order.
func (r *Reconciler) Providers() []ProviderID {
	return slices.Clone(r.order)
}

// SetResults replaces the items of provider's pool. A selection in that pool
// survives only if its URL is still among the new items.
func (r *Reconciler) SetResults(provider ProviderID, items []ResultItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[provider]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	r.pools[provider] = slices.Clone(items)

	if r.current.Provider == provider && !containsURL(items, r.current.URL) {
		r.current = State{}
	}
	return nil
}

// Results returns a copy of provider's pool.
func (r *Reconciler) Results(provider ProviderID) ([]ResultItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.pools[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return slices.Clone(items), nil
}

// Select toggles the selection of url in provider's pool and returns the
// resulting state. Selecting the current item clears it; selecting anything
// else replaces the current selection, clearing every other pool.
func (r *Reconciler) Select(provider ProviderID, url string) (State, error) {
	if url == "" {
		return State{}, ErrEmptyURL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[provider]; !ok {
		return r.current, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	next := State{Provider: provider, URL: url}
	if r.current == next {
		next = State{}
	}
	r.current = next
	return next, nil
}

// State returns the current selection.
func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SelectedIn returns the URL selected in provider's pool, if any.
func (r *Reconciler) SelectedIn(provider ProviderID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current.Empty() || r.current.Provider != provider {
		return "", false
	}
	return r.current.URL, true
}

// Commit returns the current pick with modifiedKeyword attached.
// ok is false when nothing is selected.
func (r *Reconciler) Commit(modifiedKeyword string) (Selection, bool) {
	st := r.State()
	if st.Empty() {
		return Selection{}, false
	}
	return Selection{
		SelectedURL:     st.URL,
		Provider:        st.Provider,
		ModifiedKeyword: modifiedKeyword,
	}, true
}

// Reset clears every pool and the selection, keeping the registered
// providers.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p := range r.pools {
		r.pools[p] = nil
	}
	r.current = State{}
}

func containsURL(items []ResultItem, url string) bool {
	return slices.ContainsFunc(items, func(it ResultItem) bool { return it.URL == url })
}
