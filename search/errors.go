package search

import "errors"

var (
	// ErrNoProviders is returned by New without providers.
	ErrNoProviders = errors.New("search: no providers")

	// ErrDuplicateProvider is returned by New when two providers share an ID.
	ErrDuplicateProvider = errors.New("search: duplicate provider")

	// ErrNilAdapter is returned by New without a storage adapter.
	ErrNilAdapter = errors.New("search: nil storage adapter")
)
