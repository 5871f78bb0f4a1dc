package common

import "errors"

// Error taxonomy shared across the engine. Callers match with errors.Is and
// the request layer maps each class to an HTTP status.
var (
	// ErrNotFound indicates a referenced entity or relationship endpoint
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an operation collided with exclusive state,
	// e.g. starting an evaluation while one is already running.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed caller input, e.g. an unknown
	// retrieval mode or benchmark category.
	ErrValidation = errors.New("validation failed")

	// ErrExternalService indicates an embedding or generation call failed
	// or timed out.
	ErrExternalService = errors.New("external service error")
)
