package health

import "errors"

var (
	// ErrCheckTimeout is recorded on a result whose checker missed the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned for an unregistered checker name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrProbeMismatch is recorded when a probe value reads back changed.
	ErrProbeMismatch = errors.New("health: probe mismatch")
)
