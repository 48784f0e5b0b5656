package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notabase/search/internal/engine"
	internalErrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query string `json:"query"`
	// Operator is the match operator spelling, e.g. "*=*" or "~=".
	// Empty selects substring matching.
	Operator string `json:"operator,omitempty"`
	// Backend overrides the configured default ("memory" or "sqlite").
	Backend         string `json:"backend,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
	AncestorNoteID  string `json:"ancestor_note_id,omitempty"`
	DisableFuzzy    bool   `json:"disable_fuzzy,omitempty"`
	Limit           int    `json:"limit,omitempty"`
}

// SearchHandler executes a search and returns ranked hits.
// Request Body: SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	if result := ValidateSearchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.engine.Search(engine.Request{
		Text:     req.Query,
		Operator: req.Operator,
		Backend:  req.Backend,
		Options: services.SearchOptions{
			IncludeArchived: req.IncludeArchived,
			AncestorNoteID:  req.AncestorNoteID,
			DisableFuzzy:    req.DisableFuzzy,
			Limit:           req.Limit,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, internalErrors.ErrInvalidInput):
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, err.Error())
		case errors.Is(err, internalErrors.ErrBackendUnavailable):
			SendError(c, http.StatusServiceUnavailable, ErrorCodeBackendUnavailable, err.Error())
		default:
			SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed, "Search failed: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
