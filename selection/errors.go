package selection

import "errors"

var (
	// ErrUnknownProvider is returned for a provider the Reconciler was not
	// built with.
	ErrUnknownProvider = errors.New("selection: unknown provider")

	// ErrEmptyURL is returned when selecting an item with no URL.
	ErrEmptyURL = errors.New("selection: empty url")
)
