package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports required input fields that were absent. Evaluation
// fails fast on validation; no partial scoring occurs.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{MissingFields: fields}
}

// InternalError wraps an unexpected engine failure. The cause is logged by
// the caller; the message surfaced outward stays opaque.
type InternalError struct {
	Op    string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s", e.Op)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}
