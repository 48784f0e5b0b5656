// Package api provides validation utilities for API request handling.
package api

import (
	"strings"

	"github.com/notabase/search/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateNoteID validates a note ID parameter
func ValidateNoteID(noteID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if noteID == "" {
		result.AddError("noteId", "Note ID is required")
		return result
	}
	if strings.TrimSpace(noteID) != noteID {
		result.AddError("noteId", "Note ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateNote validates the note fields of a create or update request.
func ValidateNote(note *model.Note) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if note == nil {
		result.AddError("note", "Note body is required")
		return result
	}
	if strings.TrimSpace(note.Title) == "" {
		result.AddError("title", "Title is required")
	}
	if note.Type == "" {
		result.AddError("type", "Note type is required")
	}

	return result
}

// ValidateSearchRequest validates the search request fields that gin binding
// cannot express.
func ValidateSearchRequest(req *SearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.Query) == "" {
		result.AddError("query", "Query text is required")
	}
	if req.Limit < 0 {
		result.AddError("limit", "Limit cannot be negative")
	}

	return result
}
