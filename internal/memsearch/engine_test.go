package memsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notabase/search/internal/graph"
	"github.com/notabase/search/internal/tokenizer"
	"github.com/notabase/search/model"
	"github.com/notabase/search/services"
)

type staticSource struct{ snapshot *graph.Snapshot }

func (s staticSource) Snapshot() (*graph.Snapshot, error) { return s.snapshot, nil }

func buildSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()

	b := graph.NewBuilder()
	b.AddNote(model.Note{NoteID: model.RootID, Title: "root", Type: model.NoteTypeText}, "", false)
	b.AddNote(model.Note{NoteID: model.HiddenRootID, Title: "Hidden Notes", Type: model.NoteTypeText}, "", false)

	b.AddNote(model.Note{NoteID: "n1", Title: "Meeting Notes", Type: model.NoteTypeText},
		"Weekly sync about the budget report", true)
	b.AddNote(model.Note{NoteID: "n2", Title: "Budget Report", Type: model.NoteTypeText},
		"quarterly figures", true)
	b.AddNote(model.Note{NoteID: "hid1", Title: "Archived Budget", Type: model.NoteTypeText},
		"old budget data", true)
	b.AddNote(model.Note{NoteID: "img1", Title: "Budget Chart", Type: model.NoteTypeImage}, "", false)
	b.AddNote(model.Note{NoteID: "del1", Title: "Budget Draft", Type: model.NoteTypeText, IsDeleted: true},
		"deleted budget", true)
	b.AddNote(model.Note{NoteID: "nob1", Title: "Budget Stub", Type: model.NoteTypeText}, "", false)

	b.AddBranch(model.RootID, "n1")
	b.AddBranch(model.RootID, "n2")
	b.AddBranch(model.HiddenRootID, "hid1")
	b.AddBranch(model.RootID, "img1")
	b.AddBranch(model.RootID, "del1")
	b.AddBranch(model.RootID, "nob1")
	return b.Build()
}

func search(t *testing.T, e *Engine, text string, op services.Operator) []string {
	t.Helper()
	got, err := e.Search(services.SearchQuery{
		Text:     text,
		Tokens:   tokenizer.Tokenize(text),
		Operator: op,
	})
	require.NoError(t, err)
	return got.Sorted()
}

func TestEngineMembership(t *testing.T) {
	e := NewEngine(staticSource{buildSnapshot(t)})

	tests := []struct {
		name     string
		text     string
		operator services.Operator
		want     []string
	}{
		// Hidden notes are members; visibility is the dispatcher's concern.
		{"contains", "budget", services.OpContains, []string{"hid1", "n1", "n2"}},
		{"contains all tokens required", "budget quarterly", services.OpContains, []string{"n2"}},
		{"contains partial word", "udge", services.OpContains, []string{"hid1", "n1", "n2"}},
		{"prefix of full text", "meeting", services.OpPrefix, []string{"n1"}},
		{"suffix of full text", "figures", services.OpSuffix, []string{"n2"}},
		{"exact word", "budget", services.OpExactWord, []string{"hid1", "n1", "n2"}},
		{"exact word rejects partial", "udge", services.OpExactWord, nil},
		{"fuzzy transposition", "budgte", services.OpFuzzy, []string{"hid1", "n1", "n2"}},
		{"fuzzy short token no match", "xq", services.OpFuzzy, nil},
		{"no match", "nonexistent", services.OpContains, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, search(t, e, tt.text, tt.operator))
		})
	}
}

func TestEngineSkipsIneligibleNotes(t *testing.T) {
	e := NewEngine(staticSource{buildSnapshot(t)})

	// img1 (wrong type), del1 (deleted) and nob1 (no content blob) all carry
	// "budget" in their titles but never match.
	got := search(t, e, "budget", services.OpContains)
	assert.NotContains(t, got, "img1")
	assert.NotContains(t, got, "del1")
	assert.NotContains(t, got, "nob1")
}

func TestEngineEmptyQuery(t *testing.T) {
	e := NewEngine(staticSource{buildSnapshot(t)})

	got, err := e.Search(services.SearchQuery{Operator: services.OpContains})
	require.NoError(t, err)
	assert.Empty(t, got.Sorted())
}

func TestFuzzyTokenMatch(t *testing.T) {
	tests := []struct {
		query string
		note  string
		want  bool
	}{
		{"budget", "budget", true},
		{"budgte", "budget", true},
		{"budge", "budget", true},
		{"bud", "budget", false}, // length difference beyond threshold
		{"ab", "ab", true},       // exact equality ignores length guards
		{"ab", "abc", false},     // short tokens never fuzzy match
		{"café", "cafe", true},
		{"kitten", "sitting", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fuzzyTokenMatch(tt.query, tt.note),
			"fuzzyTokenMatch(%q, %q)", tt.query, tt.note)
	}
}
