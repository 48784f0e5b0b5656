package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/model"
)

// CreateNoteRequest carries a new note and its placement.
type CreateNoteRequest struct {
	Note         model.Note `json:"note"`
	ParentNoteID string     `json:"parent_note_id,omitempty"`
	Content      string     `json:"content,omitempty"`
}

// UpdateContentRequest carries replacement note content.
type UpdateContentRequest struct {
	Content string `json:"content"`
}

// CreateNoteHandler inserts a note. The search index picks it up in the same
// transaction.
func (api *API) CreateNoteHandler(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Note.NoteID == "" {
		result := &ValidationResult{}
		result.AddError("note_id", "Note ID is required")
		SendValidationError(c, result)
		return
	}
	if result := ValidateNote(&req.Note); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.store.CreateNote(req.Note, req.ParentNoteID, req.Content); err != nil {
		if errors.Is(err, internalErrors.ErrInvalidInput) {
			SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
			return
		}
		SendInternalError(c, "create note", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Note '" + req.Note.NoteID + "' created"})
}

// GetNoteHandler returns one note's metadata.
func (api *API) GetNoteHandler(c *gin.Context) {
	noteID := c.Param("noteId")
	if result := ValidateNoteID(noteID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	note, err := api.store.GetNote(noteID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrNoteNotFound) {
			SendNoteNotFoundError(c, noteID)
			return
		}
		SendInternalError(c, "get note", err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// UpdateNoteHandler rewrites a note's metadata.
func (api *API) UpdateNoteHandler(c *gin.Context) {
	noteID := c.Param("noteId")
	if result := ValidateNoteID(noteID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var note model.Note
	if err := c.ShouldBindJSON(&note); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}
	note.NoteID = noteID

	if result := ValidateNote(&note); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.store.UpdateNote(note); err != nil {
		if errors.Is(err, internalErrors.ErrNoteNotFound) {
			SendNoteNotFoundError(c, noteID)
			return
		}
		SendInternalError(c, "update note", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note '" + noteID + "' updated"})
}

// UpdateNoteContentHandler replaces a note's content blob.
func (api *API) UpdateNoteContentHandler(c *gin.Context) {
	noteID := c.Param("noteId")
	if result := ValidateNoteID(noteID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := api.store.UpdateNoteContent(noteID, req.Content); err != nil {
		if errors.Is(err, internalErrors.ErrNoteNotFound) {
			SendNoteNotFoundError(c, noteID)
			return
		}
		SendInternalError(c, "update note content", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content of note '" + noteID + "' updated"})
}

// DeleteNoteHandler soft-deletes a note.
func (api *API) DeleteNoteHandler(c *gin.Context) {
	noteID := c.Param("noteId")
	if result := ValidateNoteID(noteID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.store.DeleteNote(noteID); err != nil {
		if errors.Is(err, internalErrors.ErrNoteNotFound) {
			SendNoteNotFoundError(c, noteID)
			return
		}
		SendInternalError(c, "delete note", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note '" + noteID + "' deleted"})
}
