package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// handler layer without switching on concrete types.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a referenced directory or document does not exist
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (illegal name, bad sort order, ...)
	ValidationError struct {
		Message string
	}

	// CycleError indicates a move that would place a directory under its own subtree
	CycleError struct {
		Message string
	}

	// NotEmptyError indicates a non-cascading delete on a directory that still
	// has children or documents
	NotEmptyError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *CycleError) Error() string      { return e.Message }
func (e *NotEmptyError) Error() string   { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *CycleError) StatusCode() int      { return http.StatusConflict }
func (e *NotEmptyError) StatusCode() int   { return http.StatusConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
	ErrCycle      = errors.New("cycle detected")
	ErrNotEmpty   = errors.New("directory not empty")
)

// Is implementations so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *CycleError) Is(target error) bool      { return target == ErrCycle }
func (e *NotEmptyError) Is(target error) bool   { return target == ErrNotEmpty }

// ConflictError represents a path collision with details about the existing
// resource, so handlers can return the colliding path alongside the 409.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (directory, document)
	Path         string // The colliding materialized path
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
