package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all services. Handlers map these to HTTP statuses.
var (
	// ErrNotFound signals a lookup by id or unique key missed
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a duplicate unique key, e.g. email already registered
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized signals a missing or invalid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstreamUnavailable signals the store or identity gateway is unreachable.
	// Authorization checks and writes propagate this (fail-closed); public reads
	// degrade to empty results in the handlers instead.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports which field failed and why, so the caller can act
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-level validation error
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
