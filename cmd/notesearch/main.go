package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/notabase/search/api"
	"github.com/notabase/search/config"
	"github.com/notabase/search/internal/abtest"
	"github.com/notabase/search/internal/engine"
	"github.com/notabase/search/internal/memsearch"
	"github.com/notabase/search/internal/nativeindex"
	"github.com/notabase/search/internal/perfmon"
	"github.com/notabase/search/store"
)

// maxRequestBody bounds note content uploads.
const maxRequestBody = 10 << 20

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "notesearch",
		Short: "Note search service with dual backends",
		Long: `Notesearch serves full-text search over a note hierarchy. Queries run on
either an in-memory graph traversal backend or a SQLite-backed native index,
with shadow comparisons between the two to validate parity.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "notesearch.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd(), rebuildCmd(), syncCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// stack is the fully wired service: store, backends, dispatcher, telemetry.
type stack struct {
	settings config.Settings
	store    *store.Store
	native   *nativeindex.Service
	engine   *engine.Engine
	monitor  *perfmon.Monitor
	abtests  *abtest.Service
	holder   *engine.SettingsHolder
}

func buildStack() (*stack, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening note database: %w", err)
	}

	native, err := nativeindex.NewService(st.DB(), settings.RebuildBatchSize)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("initializing native index: %w", err)
	}
	st.RegisterObserver(nativeindex.NewSyncer())

	memory := memsearch.NewEngine(st)
	monitor := perfmon.NewMonitor(0)
	abtests := abtest.NewService(memory, native)
	abtests.SetEnabled(settings.ABTestingEnabled)
	if settings.ABTestingEnabled {
		if err := abtests.SetSampleRate(settings.ABSampleRate); err != nil {
			st.Close()
			return nil, err
		}
	}

	holder := engine.NewSettingsHolder(settings)
	eng := engine.NewEngine(st, memory, native, monitor, abtests, holder)

	return &stack{
		settings: settings,
		store:    st,
		native:   native,
		engine:   eng,
		monitor:  monitor,
		abtests:  abtests,
		holder:   holder,
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search service",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildStack()
			if err != nil {
				return err
			}
			defer s.store.Close()

			if s.settings.AutoRebuild && s.settings.SQLiteEnabled && !s.native.Ready() {
				log.Printf("native index empty, rebuilding")
				if _, err := s.native.RebuildIndex(true); err != nil {
					return fmt.Errorf("auto rebuild: %w", err)
				}
			}

			router := gin.Default()
			router.Use(api.CORSMiddleware())
			router.Use(api.RequestSizeLimitMiddleware(maxRequestBody))
			api.SetupRoutes(router, api.Deps{
				Engine:   s.engine,
				Store:    s.store,
				Native:   s.native,
				Monitor:  s.monitor,
				ABTests:  s.abtests,
				Settings: s.holder,
			})

			log.Printf("starting server on %s (default backend: %s)",
				s.settings.ListenAddr, s.settings.DefaultBackend)
			return router.Run(s.settings.ListenAddr)
		},
	}
}

func rebuildCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Drop and repopulate the native search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildStack()
			if err != nil {
				return err
			}
			defer s.store.Close()

			indexed, err := s.native.RebuildIndex(force)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d notes\n", indexed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the index is uninitialized")
	return cmd
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [noteId...]",
		Short: "Index eligible notes missing from the native index",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildStack()
			if err != nil {
				return err
			}
			defer s.store.Close()

			synced, err := s.native.SyncMissingNotes(args)
			if err != nil {
				return err
			}
			fmt.Printf("synced %d missing notes\n", synced)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print native index completeness",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildStack()
			if err != nil {
				return err
			}
			defer s.store.Close()

			status, err := s.native.Status()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
