package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/notabase/search/config"
	"github.com/notabase/search/internal/engine"
	"github.com/notabase/search/services"
)

// GetMetricsHandler returns per-backend latency reports and the native
// index's own search statistics.
func (api *API) GetMetricsHandler(c *gin.Context) {
	response := gin.H{
		"comparison": api.monitor.Compare(config.BackendMemory, config.BackendSQLite),
	}
	if api.native != nil {
		response["sqlite_stats"] = api.native.Stats()
	}
	if n, err := strconv.Atoi(c.DefaultQuery("samples", "0")); err == nil && n > 0 {
		samples := gin.H{}
		for _, backend := range api.monitor.Backends() {
			samples[backend] = api.monitor.RecentSamples(backend, n)
		}
		response["samples"] = samples
	}
	c.JSON(http.StatusOK, response)
}

// ResetMetricsHandler discards all recorded latency samples.
func (api *API) ResetMetricsHandler(c *gin.Context) {
	api.monitor.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Performance metrics reset"})
}

// GetABTestsHandler returns the comparison summary and recent results.
func (api *API) GetABTestsHandler(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("recent", "20"))
	if err != nil || n < 0 {
		n = 20
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":     api.abtests.Enabled(),
		"sample_rate": api.abtests.SampleRate(),
		"summary":     api.abtests.Summarize(),
		"recent":      api.abtests.RecentResults(n),
	})
}

// ResetABTestsHandler discards the comparison history.
func (api *API) ResetABTestsHandler(c *gin.Context) {
	api.abtests.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "A/B test results reset"})
}

// SampleRateRequest carries a new shadow-comparison sampling rate.
type SampleRateRequest struct {
	SampleRate float64 `json:"sample_rate"`
}

// SetSampleRateHandler updates the shadow-comparison sampling rate.
func (api *API) SetSampleRateHandler(c *gin.Context) {
	var req SampleRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := api.abtests.SetSampleRate(req.SampleRate); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sample rate updated", "sample_rate": req.SampleRate})
}

// GetConfigHandler returns the live settings.
func (api *API) GetConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.settings.Get())
}

// UpdateConfigHandler replaces the live settings. Out-of-range values are
// rejected as a whole; nothing is clamped or partially applied.
func (api *API) UpdateConfigHandler(c *gin.Context) {
	var settings config.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := api.settings.Update(settings); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	api.abtests.SetEnabled(settings.ABTestingEnabled)
	if settings.ABTestingEnabled {
		if err := api.abtests.SetSampleRate(settings.ABSampleRate); err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated", "config": api.settings.Get()})
}

// GetSQLiteStatusHandler reports native index completeness.
func (api *API) GetSQLiteStatusHandler(c *gin.Context) {
	status, err := api.native.Status()
	if err != nil {
		SendInternalError(c, "read index status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// RebuildRequest carries rebuild options.
type RebuildRequest struct {
	Force bool `json:"force,omitempty"`
}

// RebuildIndexHandler drops and repopulates the native index.
func (api *API) RebuildIndexHandler(c *gin.Context) {
	var req RebuildRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	indexed, err := api.native.RebuildIndex(req.Force)
	if err != nil {
		SendError(c, http.StatusConflict, ErrorCodeIndexFailed, "Rebuild failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index rebuilt", "indexed_notes": indexed})
}

// SyncRequest optionally restricts a sync to specific notes.
type SyncRequest struct {
	NoteIDs []string `json:"note_ids,omitempty"`
}

// SyncIndexHandler indexes eligible notes that are missing from the native
// index without touching rows that are already current.
func (api *API) SyncIndexHandler(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	synced, err := api.native.SyncMissingNotes(req.NoteIDs)
	if err != nil {
		SendError(c, http.StatusConflict, ErrorCodeIndexFailed, "Sync failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index synchronized", "synced_notes": synced})
}

// ClearIndexHandler drops the native index. Searches fall back to the memory
// backend until the index is rebuilt.
func (api *API) ClearIndexHandler(c *gin.Context) {
	if err := api.native.ClearIndex(); err != nil {
		SendInternalError(c, "clear index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index cleared"})
}

// ComparisonRequest names one query to run on both backends.
type ComparisonRequest struct {
	Query    string `json:"query"`
	Operator string `json:"operator,omitempty"`
}

// RunComparisonHandler runs one on-demand comparison, bypassing sampling.
func (api *API) RunComparisonHandler(c *gin.Context) {
	var req ComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		result := &ValidationResult{}
		result.AddError("query", "Query text is required")
		SendValidationError(c, result)
		return
	}

	operator, err := services.ParseOperator(req.Operator)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, err.Error())
		return
	}

	result, err := api.abtests.RunComparison(engine.BuildQuery(req.Query, operator))
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed, "Comparison failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
