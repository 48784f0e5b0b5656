// Package errors defines the error taxonomy of the search subsystem:
// validation failures, backend unavailability, and synchronization failures.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable is returned when the requested search backend
	// cannot serve queries (e.g., index tables not migrated yet)
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrIndexNotReady is returned by maintenance operations when the
	// native index tables have not been initialized
	ErrIndexNotReady = errors.New("search index not initialized")

	// ErrNoteNotFound is returned when a note is not found
	ErrNoteNotFound = errors.New("note not found")
)

// ValidationError carries the field that failed validation and a
// human-readable reason. Validation errors are never partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// BackendUnavailableError identifies which backend could not serve a request
// and why, so the query path can decide whether to fall back.
type BackendUnavailableError struct {
	Backend string
	Reason  string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend '%s' unavailable: %s", e.Backend, e.Reason)
}

func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// NewBackendUnavailableError creates a new BackendUnavailableError
func NewBackendUnavailableError(backend, reason string) *BackendUnavailableError {
	return &BackendUnavailableError{Backend: backend, Reason: reason}
}

// NoteNotFoundError represents a note not found error with context
type NoteNotFoundError struct {
	NoteID string
}

func (e *NoteNotFoundError) Error() string {
	return fmt.Sprintf("note '%s' not found", e.NoteID)
}

func (e *NoteNotFoundError) Is(target error) bool {
	return target == ErrNoteNotFound
}

// NewNoteNotFoundError creates a new NoteNotFoundError
func NewNoteNotFoundError(noteID string) *NoteNotFoundError {
	return &NoteNotFoundError{NoteID: noteID}
}
