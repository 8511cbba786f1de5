// Package provider defines the media search providers queried by the search
// pipeline.
//
// A provider is either phrase-oriented (it wants one natural-language query)
// or word-oriented (it wants space-separated keywords). Both return the same
// selection.ResultItem shape.
//
// HTTPProvider covers the common case of a JSON search endpoint. Func adapts
// plain functions for tests and embedding callers.
//
// Every failure returned by a provider in this package satisfies
// errors.Is(err, ErrNetwork).
package provider
