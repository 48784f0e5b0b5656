package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notabase/search/config"
	"github.com/notabase/search/internal/abtest"
	"github.com/notabase/search/internal/memsearch"
	"github.com/notabase/search/internal/nativeindex"
	"github.com/notabase/search/internal/perfmon"
	"github.com/notabase/search/model"
	"github.com/notabase/search/services"
	"github.com/notabase/search/store"
)

type fixture struct {
	store  *store.Store
	native *nativeindex.Service
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	native, err := nativeindex.NewService(st.DB(), 0)
	require.NoError(t, err)
	st.RegisterObserver(nativeindex.NewSyncer())

	memory := memsearch.NewEngine(st)

	settings := config.Settings{SQLiteEnabled: true}
	settings.ApplyDefaults()
	holder := NewSettingsHolder(settings)

	eng := NewEngine(st, memory, native,
		perfmon.NewMonitor(0), abtest.NewService(memory, native), holder)

	return &fixture{store: st, native: native, engine: eng}
}

func (f *fixture) addNote(t *testing.T, id, title, parentID, content string) {
	t.Helper()
	err := f.store.CreateNote(model.Note{
		NoteID: id,
		Title:  title,
		Type:   model.NoteTypeText,
	}, parentID, content)
	require.NoError(t, err)
}

func hitIDs(result services.SearchResult) []string {
	ids := make([]string, len(result.Hits))
	for i, h := range result.Hits {
		ids[i] = h.NoteID
	}
	return ids
}

func seedNotes(t *testing.T, f *fixture) {
	f.addNote(t, "folder", "Projects", model.RootID, "project overview")
	f.addNote(t, "n1", "Meeting Notes", "folder", "Weekly sync about the budget report")
	f.addNote(t, "n2", "Budget Report", model.RootID, "quarterly figures")
	f.addNote(t, "hid1", "Old Budget", model.HiddenRootID, "archived budget data")
}

func TestBackendsReturnSameHits(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	queries := []struct {
		text     string
		operator string
	}{
		{"budget", "*=*"},
		{"budget report", "*=*"},
		{"budgte", "~="},
		{"budget", "="},
		{"quarterly", "=*"},
		{"figures", "*="},
		{"nonexistent", "*=*"},
	}

	for _, q := range queries {
		memResult, err := f.engine.Search(Request{
			Text: q.text, Operator: q.operator, Backend: config.BackendMemory,
			Options: services.SearchOptions{IncludeArchived: true},
		})
		require.NoError(t, err, "memory backend query %q", q.text)

		sqlResult, err := f.engine.Search(Request{
			Text: q.text, Operator: q.operator, Backend: config.BackendSQLite,
			Options: services.SearchOptions{IncludeArchived: true},
		})
		require.NoError(t, err, "sqlite backend query %q", q.text)

		assert.Equal(t, hitIDs(memResult), hitIDs(sqlResult),
			"backends disagree on %q %s", q.text, q.operator)
		assert.Equal(t, config.BackendMemory, memResult.Backend)
		assert.Equal(t, config.BackendSQLite, sqlResult.Backend)
	}
}

func TestRankingPrefersTitleMatches(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	result, err := f.engine.Search(Request{Text: "budget report"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	// Exact title match outranks a note that merely contains the words.
	assert.Equal(t, "n2", result.Hits[0].NoteID)
	for i := 1; i < len(result.Hits); i++ {
		assert.LessOrEqual(t, result.Hits[i].Score, result.Hits[i-1].Score)
	}
}

func TestHiddenNotesExcludedByDefault(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	result, err := f.engine.Search(Request{Text: "budget"})
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(result), "hid1")

	result, err = f.engine.Search(Request{
		Text:    "budget",
		Options: services.SearchOptions{IncludeArchived: true},
	})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "hid1")
}

func TestAncestorScope(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	result, err := f.engine.Search(Request{
		Text:    "budget",
		Options: services.SearchOptions{AncestorNoteID: "folder"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, hitIDs(result))
}

func TestResultLimit(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	result, err := f.engine.Search(Request{
		Text:    "budget",
		Options: services.SearchOptions{Limit: 1},
	})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
	assert.Equal(t, 2, result.Total)
}

func TestEmptyQueryReturnsNoHits(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	result, err := f.engine.Search(Request{Text: "   "})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.NotEmpty(t, result.QueryID)
}

func TestFallbackWhenNativeNotReady(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)
	require.NoError(t, f.native.ClearIndex())

	holder := f.engine.settings
	cfg := holder.Get()
	cfg.DefaultBackend = config.BackendSQLite
	require.NoError(t, holder.Update(cfg))

	result, err := f.engine.Search(Request{Text: "budget"})
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, result.Backend)
	assert.NotEmpty(t, result.Hits)
}

func TestExplicitSQLiteOverrideWhileDisabled(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	holder := f.engine.settings
	cfg := holder.Get()
	cfg.SQLiteEnabled = false
	require.NoError(t, holder.Update(cfg))

	_, err := f.engine.Search(Request{Text: "budget", Backend: config.BackendSQLite})
	assert.Error(t, err)

	// Without an override the same settings silently use memory.
	result, err := f.engine.Search(Request{Text: "budget"})
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, result.Backend)
}

func TestUnknownOperatorRejected(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	_, err := f.engine.Search(Request{Text: "budget", Operator: "<>"})
	assert.Error(t, err)
}

func TestUnknownBackendRejected(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)

	_, err := f.engine.Search(Request{Text: "budget", Backend: "redis"})
	assert.Error(t, err)
}
