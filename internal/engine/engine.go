// Package engine dispatches searches to the active backend and turns raw ID
// sets into ranked results. Both backends go through the single scoring and
// ordering path here, so switching backends changes which notes are found,
// never how they are ranked.
package engine

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notabase/search/config"
	"github.com/notabase/search/internal/abtest"
	apperrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/internal/graph"
	"github.com/notabase/search/internal/perfmon"
	"github.com/notabase/search/internal/scoring"
	"github.com/notabase/search/internal/tokenizer"
	"github.com/notabase/search/model"
	"github.com/notabase/search/services"
)

// SnapshotSource loads a point-in-time view of the note graph.
type SnapshotSource interface {
	Snapshot() (*graph.Snapshot, error)
}

// ReadyChecker is implemented by backends that can be temporarily unable to
// serve, like the native index before its first build.
type ReadyChecker interface {
	Ready() bool
}

// Engine routes queries, ranks results and feeds the observability side
// channels. Safe for concurrent use; settings updates take effect on the
// next search.
type Engine struct {
	source   SnapshotSource
	memory   services.Backend
	sqlite   services.Backend
	monitor  *perfmon.Monitor
	abtests  *abtest.Service
	settings *SettingsHolder
}

// NewEngine wires the dispatcher. The sqlite backend may be nil when the
// native index is disabled outright.
func NewEngine(source SnapshotSource, memory, sqlite services.Backend,
	monitor *perfmon.Monitor, abtests *abtest.Service, settings *SettingsHolder) *Engine {
	return &Engine{
		source:   source,
		memory:   memory,
		sqlite:   sqlite,
		monitor:  monitor,
		abtests:  abtests,
		settings: settings,
	}
}

// Request is one search invocation as the API layer hands it over.
type Request struct {
	Text     string
	Operator string
	// Backend overrides the configured default for this request; empty
	// means no override.
	Backend string
	Options services.SearchOptions
}

// BuildQuery tokenizes raw query text into the backend query shape.
func BuildQuery(text string, operator services.Operator) services.SearchQuery {
	return services.SearchQuery{
		Text:     strings.TrimSpace(text),
		Tokens:   tokenizer.Tokenize(text),
		Operator: operator,
	}
}

// Search runs one query end to end: parse, pick a backend, collect the
// match set, filter, score, order, truncate.
func (e *Engine) Search(req Request) (services.SearchResult, error) {
	start := time.Now()
	cfg := e.settings.Get()

	operator, err := services.ParseOperator(req.Operator)
	if err != nil {
		return services.SearchResult{}, apperrors.NewValidationError("operator", err.Error())
	}

	query := BuildQuery(req.Text, operator)
	query.Options = req.Options

	result := services.SearchResult{
		Hits:    []services.SearchHit{},
		QueryID: uuid.New().String(),
	}
	if len(query.Tokens) == 0 {
		result.Backend = cfg.DefaultBackend
		return result, nil
	}

	backendName, backend, err := e.pickBackend(req.Backend, cfg)
	if err != nil {
		return services.SearchResult{}, err
	}
	result.Backend = backendName

	matches, err := backend.Search(query)
	if err != nil {
		return services.SearchResult{}, fmt.Errorf("search on %s backend: %w", backendName, err)
	}

	snapshot, err := e.source.Snapshot()
	if err != nil {
		return services.SearchResult{}, fmt.Errorf("loading note graph: %w", err)
	}

	hits := e.rank(snapshot, matches, query)
	result.Total = len(hits)

	limit := query.Options.Limit
	if limit <= 0 {
		limit = cfg.SearchResultLimit
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	result.Hits = hits

	took := time.Since(start)
	result.Took = took.Milliseconds()
	e.monitor.Record(backendName, took, len(hits))
	if cfg.LogPerformance {
		log.Printf("search: backend=%s operator=%s tokens=%d results=%d took=%s",
			backendName, operator, len(query.Tokens), result.Total, took)
	}

	if e.abtests != nil && e.sqlite != nil {
		e.abtests.MaybeRunComparison(query)
	}
	return result, nil
}

// pickBackend resolves the backend serving this request. The sqlite backend
// is chosen only when enabled and ready; otherwise the request silently
// falls back to the always-available memory backend. An explicit sqlite
// override while the backend is disabled is an error rather than a fallback.
func (e *Engine) pickBackend(override string, cfg config.Settings) (string, services.Backend, error) {
	name := cfg.DefaultBackend
	if override != "" {
		name = override
	}

	switch name {
	case config.BackendMemory:
		return config.BackendMemory, e.memory, nil
	case config.BackendSQLite:
		if !cfg.SQLiteEnabled || e.sqlite == nil {
			if override != "" {
				return "", nil, apperrors.NewBackendUnavailableError(
					config.BackendSQLite, "native index is disabled")
			}
			return config.BackendMemory, e.memory, nil
		}
		if rc, ok := e.sqlite.(ReadyChecker); ok && !rc.Ready() {
			log.Printf("sqlite backend not ready, falling back to memory backend")
			return config.BackendMemory, e.memory, nil
		}
		return config.BackendSQLite, e.sqlite, nil
	default:
		return "", nil, apperrors.NewValidationError("backend",
			fmt.Sprintf("unknown backend %q", name))
	}
}

// rank filters the raw match set by visibility and scope, scores every
// surviving candidate, and orders hits deterministically.
func (e *Engine) rank(snapshot *graph.Snapshot, matches services.IDSet, query services.SearchQuery) []services.SearchHit {
	hits := make([]services.SearchHit, 0, len(matches))
	scopeSet := scopeSet(snapshot, query.Options.AncestorNoteID)
	enableFuzzy := !query.Options.DisableFuzzy || query.Operator == services.OpFuzzy

	for id := range matches {
		note, ok := snapshot.Note(id)
		if !ok {
			continue
		}
		if scopeSet != nil && !scopeSet.Has(id) {
			continue
		}
		hidden := snapshot.IsHidden(id)
		if hidden && !query.Options.IncludeArchived {
			continue
		}

		path := snapshot.BestPath(id)
		score, fuzzyScore := scoring.Score(scoring.Candidate{
			NoteID:    id,
			Title:     note.Title,
			PathTitle: snapshot.PathTitle(path),
			Hidden:    hidden,
		}, query.Text, query.Tokens, enableFuzzy)

		hits = append(hits, services.SearchHit{
			NoteID:     id,
			Title:      note.Title,
			Path:       path,
			Score:      score,
			FuzzyScore: fuzzyScore,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NoteID < hits[j].NoteID
	})
	return hits
}

// scopeSet collects the notes reachable from the requested ancestor, or nil
// when the search is unscoped.
func scopeSet(snapshot *graph.Snapshot, ancestorID string) services.IDSet {
	if ancestorID == "" {
		return nil
	}
	scope := services.NewIDSet()
	snapshot.Walk(ancestorID, func(note model.Note) bool {
		scope.Add(note.NoteID)
		return true
	})
	return scope
}
