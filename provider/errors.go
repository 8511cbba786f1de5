package provider

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/mediaquery/selection"
)

var (
	// ErrNetwork marks every provider search failure.
	ErrNetwork = errors.New("provider: network error")

	// ErrUnknownKind is returned by ParseKind for an unrecognized kind.
	ErrUnknownKind = errors.New("provider: unknown kind")

	// ErrMissingEndpoint is returned when an HTTP provider has no endpoint.
	ErrMissingEndpoint = errors.New("provider: missing endpoint")

	// ErrMissingID is returned when a provider is configured without an ID.
	ErrMissingID = errors.New("provider: missing id")
)

// Error describes a failed search against one provider.
type Error struct {
	Provider   selection.ProviderID
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is makes every provider Error match ErrNetwork.
func (e *Error) Is(target error) bool { return target == ErrNetwork }

// Wrap turns err into an *Error for provider id unless it already is one.
// Nil stays nil.
func Wrap(id selection.ProviderID, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Provider: id, Err: err}
}
