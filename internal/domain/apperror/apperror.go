// Package apperror defines the shared error taxonomy that repositories
// and services return and the HTTP layer translates to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// DomainError wraps a sentinel with a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// NewConflictError reports a concurrent-modification or uniqueness clash.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports a forbidden aggregate state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewValidationError reports rejected input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}
