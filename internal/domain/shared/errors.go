// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Lookup errors
	ErrNotFound     = errors.New("entity not found")
	ErrDuplicateKey = errors.New("duplicate secondary key")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// Authentication errors
	ErrAuthentication = errors.New("authentication failed")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCacheMiss signals an absent cache entry. It never surfaces to
	// callers of the services: a miss always falls back to the durable
	// store.
	ErrCacheMiss = errors.New("cache miss")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "account", "session"
	Op      string // Operation that failed, e.g., "Create", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrPhoneTaken           = NewDomainError("student", "Create", ErrDuplicateKey, "phone number already registered")
	ErrStudentNotPersisted  = NewDomainError("student", "Save", ErrInvalidState, "student has no id; create it first")
	ErrGradeOutOfRange      = NewDomainError("student", "Validate", ErrValueOutOfRange, "grade must be between 0 and 20")
	ErrInvalidStudentFields = NewDomainError("student", "Validate", ErrValidation, "missing required student fields")
)

// Account domain errors
var (
	ErrAccountNotFound      = NewDomainError("account", "Find", ErrNotFound, "account not found")
	ErrUsernameTaken        = NewDomainError("account", "Create", ErrDuplicateKey, "username already registered")
	ErrAccountNotPersisted  = NewDomainError("account", "Save", ErrInvalidState, "account has no id; create it first")
	ErrInvalidAccountFields = NewDomainError("account", "Validate", ErrValidation, "missing required account fields")
	ErrInvalidRole          = NewDomainError("account", "Validate", ErrValidation, "invalid role")
)

// Session domain errors
var (
	ErrSessionNotFound = NewDomainError("session", "Validate", ErrNotFound, "session not found")
	ErrSessionExpired  = NewDomainError("session", "Validate", ErrExpired, "session expired")
	ErrBadCredentials  = NewDomainError("session", "Authenticate", ErrAuthentication, "invalid username or password")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateKey checks if the error is a secondary-key collision.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsStoreUnavailable checks if the error is an adapter-level I/O failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
