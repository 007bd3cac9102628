package telemetry

import (
	"errors"
	"fmt"
)

// Sentinel errors for dependency failures. The engine never converts one of
// these into a fabricated success value — callers decide fallback policy.
var (
	ErrNotFound          = errors.New("battery not found")
	ErrModelUnavailable  = errors.New("scoring model unavailable")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrDependencyTimeout = errors.New("dependency timed out")
)

// ValidationError rejects a reading before it enters any stateful pipeline.
// Recoverable by the caller correcting the input; never retried as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reading: %s: %s", e.Field, e.Reason)
}
