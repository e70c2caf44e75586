package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors raised on the client before or instead of a backend call
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input caught before any network call
	ValidationError struct {
		Message string
	}

	// ForbiddenError indicates the session role cannot perform the action
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string  { return e.Message }

// Is lets errors.Is match typed errors against the sentinels below.
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ForbiddenError) Is(target error) bool  { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTransport    = errors.New("transport error")
	ErrNoSession    = errors.New("not logged in")
)

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// APIError is a non-2xx response from the backend.
// Message is the backend-provided message when present, otherwise a generic fallback.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps backend status codes onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return target == ErrValidation
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	}
	return false
}

// TransportError means no response was received (timeout, refused connection, ...).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrTransport
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ConflictError represents a resource conflict reported by the backend
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder, user, department)
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// UserMessage returns the string shown to a user for err.
// Backend messages are surfaced as-is; anything else falls back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Message
	}
	var forbidden *ForbiddenError
	if errors.As(err, &forbidden) {
		return forbidden.Message
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Message
	}
	if errors.Is(err, ErrNoSession) {
		return "You are not logged in"
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "Failed to connect to the server"
	}
	return fallback
}
