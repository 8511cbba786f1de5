package storage

import "errors"

// Sentinel errors for storage operations.
var (
	ErrNotFound       = errors.New("storage: key not found")
	ErrCorruptToken   = errors.New("storage: token is corrupt or foreign")
	ErrUnknownBackend = errors.New("storage: unknown backend")
	ErrMissingKey     = errors.New("storage: signing key is required")
	ErrClosed         = errors.New("storage: store is closed")
)

// Op names used in Error for diagnostics.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpDelete = "delete"
	OpList   = "list"
	OpPing   = "ping"
)

// Error wraps a backend failure with the operation and key it concerned.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return "storage: " + e.Op + ": " + e.Err.Error()
	}
	return "storage: " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
