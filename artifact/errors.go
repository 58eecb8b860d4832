package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given session / id pair
	// does not exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")
	// ErrTooLarge is returned when an artifact exceeds the configured size limit.
	ErrTooLarge = errors.New("artifact exceeds size limit")
)
