// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrMissingCredential is the fatal configuration error raised once at
	// startup when no completion-service API key is present. It disables
	// all scheduling; it is never retried.
	ErrMissingCredential = errors.New("completion service credential missing")

	ErrDuplicateEntity = errors.New("entity already tracked")
	ErrEntityNotFound  = errors.New("entity not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// TransportError represents a failed or timed-out call to the completion
// service. It is transient: the entity stays retryable by any later trigger.
type TransportError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s] %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(provider, operation string, err error) *TransportError {
	return &TransportError{Provider: provider, Operation: operation, Err: err}
}

// MalformedResponseError represents a completion that succeeded at the
// transport level but could not be parsed into the expected shape.
// Excerpt carries the head of the raw text for diagnostics.
type MalformedResponseError struct {
	Shape   string
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %v: %q", e.Shape, e.Err, e.Excerpt)
	}
	return fmt.Sprintf("malformed %s response: %q", e.Shape, e.Excerpt)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NewMalformedResponseError creates a new MalformedResponseError.
func NewMalformedResponseError(shape, excerpt string, err error) *MalformedResponseError {
	return &MalformedResponseError{Shape: shape, Excerpt: excerpt, Err: err}
}

// IsTransient reports whether an error represents a condition worth
// retrying on a later trigger. Configuration errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingCredential) {
		return false
	}
	var te *TransportError
	var me *MalformedResponseError
	return errors.As(err, &te) || errors.As(err, &me)
}
