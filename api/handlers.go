package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notabase/search/internal/abtest"
	"github.com/notabase/search/internal/engine"
	"github.com/notabase/search/internal/nativeindex"
	"github.com/notabase/search/internal/perfmon"
	"github.com/notabase/search/store"
)

// API holds the dependencies of the HTTP handlers.
type API struct {
	engine   *engine.Engine
	store    *store.Store
	native   *nativeindex.Service
	monitor  *perfmon.Monitor
	abtests  *abtest.Service
	settings *engine.SettingsHolder
}

// Deps bundles everything SetupRoutes wires into the handlers.
type Deps struct {
	Engine   *engine.Engine
	Store    *store.Store
	Native   *nativeindex.Service
	Monitor  *perfmon.Monitor
	ABTests  *abtest.Service
	Settings *engine.SettingsHolder
}

// NewAPI creates a new API handler structure.
func NewAPI(deps Deps) *API {
	return &API{
		engine:   deps.Engine,
		store:    deps.Store,
		native:   deps.Native,
		monitor:  deps.Monitor,
		abtests:  deps.ABTests,
		settings: deps.Settings,
	}
}

// SetupRoutes defines all the API routes for the search service.
func SetupRoutes(router *gin.Engine, deps Deps) {
	apiHandler := NewAPI(deps)

	router.GET("/health", apiHandler.HealthCheckHandler)

	router.POST("/search", apiHandler.SearchHandler)

	noteRoutes := router.Group("/notes")
	{
		noteRoutes.POST("", apiHandler.CreateNoteHandler)
		noteRoutes.GET("/:noteId", apiHandler.GetNoteHandler)
		noteRoutes.PUT("/:noteId", apiHandler.UpdateNoteHandler)
		noteRoutes.PUT("/:noteId/content", apiHandler.UpdateNoteContentHandler)
		noteRoutes.DELETE("/:noteId", apiHandler.DeleteNoteHandler)
	}

	adminRoutes := router.Group("/admin/search")
	{
		adminRoutes.GET("/metrics", apiHandler.GetMetricsHandler)
		adminRoutes.DELETE("/metrics", apiHandler.ResetMetricsHandler)

		adminRoutes.GET("/ab-tests", apiHandler.GetABTestsHandler)
		adminRoutes.DELETE("/ab-tests", apiHandler.ResetABTestsHandler)
		adminRoutes.PUT("/ab-tests/sample-rate", apiHandler.SetSampleRateHandler)

		adminRoutes.GET("/config", apiHandler.GetConfigHandler)
		adminRoutes.PUT("/config", apiHandler.UpdateConfigHandler)

		adminRoutes.GET("/sqlite/status", apiHandler.GetSQLiteStatusHandler)
		adminRoutes.POST("/sqlite/rebuild", apiHandler.RebuildIndexHandler)
		adminRoutes.POST("/sqlite/sync", apiHandler.SyncIndexHandler)
		adminRoutes.DELETE("/sqlite/index", apiHandler.ClearIndexHandler)

		adminRoutes.POST("/test", apiHandler.RunComparisonHandler)
	}
}

// HealthCheckHandler reports service liveness and backend readiness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	nativeReady := api.native != nil && api.native.Ready()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"sqlite_ready":    nativeReady,
		"default_backend": api.settings.Get().DefaultBackend,
	})
}
