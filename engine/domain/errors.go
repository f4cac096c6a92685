package domain

import (
	"errors"
	"fmt"
)

// Request-level failures. These propagate to the boundary unmodified; the
// transport layer maps them to status codes.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNoCandidates         = errors.New("no candidates to rank")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Validation sentinels.
var (
	ErrMissingID     = errors.New("missing identity")
	ErrInactive      = errors.New("candidate not active")
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownAction = errors.New("unknown swipe action")
	ErrEmptyProfile  = errors.New("profile has no content")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
