package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/mediaquery/selection"
)

// Kind tells the pipeline which query shape a provider wants.
type Kind string

const (
	KindPhrase Kind = "phrase"
	KindWord   Kind = "word"
)

// ParseKind parses "phrase" or "word", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPhrase, KindWord:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Request is one page of a search.
type Request struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Response carries the results of one page.
type Response struct {
	Results []selection.ResultItem `json:"results"`
}

// Provider searches one media source.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Search must honor cancellation and deadlines.
// - Errors: failures satisfy errors.Is(err, ErrNetwork).
// - Results: every returned item carries Provider == ID().
type Provider interface {
	ID() selection.ProviderID
	Kind() Kind
	Search(ctx context.Context, req Request) (Response, error)
}

// SearchFunc is the function shape adapted by Func.
type SearchFunc func(ctx context.Context, req Request) (Response, error)

// Func adapts a SearchFunc into a Provider.
type Func struct {
	id   selection.ProviderID
	kind Kind
	fn   SearchFunc
}

// NewFunc builds a Func provider.
func NewFunc(id selection.ProviderID, kind Kind, fn SearchFunc) *Func {
	return &Func{id: id, kind: kind, fn: fn}
}

func (f *Func) ID() selection.ProviderID { return f.id }
func (f *Func) Kind() Kind               { return f.kind }

// Search calls the wrapped function, stamping results with the provider ID
// and wrapping errors as ErrNetwork.
func (f *Func) Search(ctx context.Context, req Request) (Response, error) {
	resp, err := f.fn(ctx, req)
	if err != nil {
		return Response{}, Wrap(f.id, err)
	}
	for i := range resp.Results {
		resp.Results[i].Provider = f.id
	}
	return resp, nil
}

var _ Provider = (*Func)(nil)
