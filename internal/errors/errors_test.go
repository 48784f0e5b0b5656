package errors

import (
	"errors"
	"testing"
)

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("batch_size", "must be between 10 and 1000")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if errors.Is(err, ErrBackendUnavailable) {
		t.Error("ValidationError should not match ErrBackendUnavailable")
	}
}

func TestBackendUnavailableErrorIs(t *testing.T) {
	err := NewBackendUnavailableError("sqlite", "index tables not initialized")

	if !errors.Is(err, ErrBackendUnavailable) {
		t.Error("BackendUnavailableError should match ErrBackendUnavailable")
	}

	want := "backend 'sqlite' unavailable: index tables not initialized"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNoteNotFoundErrorIs(t *testing.T) {
	err := NewNoteNotFoundError("abc123")

	if !errors.Is(err, ErrNoteNotFound) {
		t.Error("NoteNotFoundError should match ErrNoteNotFound")
	}
}
