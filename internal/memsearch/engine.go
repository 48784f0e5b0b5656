package memsearch

import (
	"fmt"

	"github.com/notabase/search/internal/graph"
	"github.com/notabase/search/internal/normalize"
	"github.com/notabase/search/model"
	"github.com/notabase/search/services"
)

// SnapshotSource loads a point-in-time view of the note graph. The canonical
// store satisfies it.
type SnapshotSource interface {
	Snapshot() (*graph.Snapshot, error)
}

// Engine is the in-memory search backend. Each search walks a fresh graph
// snapshot, so it needs no index maintenance and serves as the always-ready
// fallback. Like the SQLite backend it answers membership only; hidden and
// scope filtering happen in the dispatcher so both backends stay comparable.
type Engine struct {
	source SnapshotSource
}

func NewEngine(source SnapshotSource) *Engine {
	return &Engine{source: source}
}

var _ services.Backend = (*Engine)(nil)

// Search walks every note reachable from the visible and hidden roots and
// collects the IDs of index-eligible notes satisfying all query tokens.
func (e *Engine) Search(query services.SearchQuery) (services.IDSet, error) {
	results := services.NewIDSet()
	if len(query.Tokens) == 0 {
		return results, nil
	}

	snapshot, err := e.source.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("memory backend: loading snapshot: %w", err)
	}

	visit := func(note model.Note) bool {
		content, hasContent := snapshot.Content(note.NoteID)
		if !model.IsIndexEligible(note, hasContent) {
			return true
		}
		if newDocument(note.Title, normalize.Content(note.Mime, content)).matches(query.Tokens, query.Operator) {
			results.Add(note.NoteID)
		}
		return true
	}
	snapshot.Walk(model.RootID, visit)
	snapshot.Walk(model.HiddenRootID, visit)

	return results, nil
}
