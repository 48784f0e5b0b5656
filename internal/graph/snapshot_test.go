package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notabase/search/model"
)

// buildTestGraph constructs:
//
//	root -> a -> b -> c
//	root -> d
//	_hidden -> h1 -> h2
//	_hidden -> b    (b is also reachable visibly, so it is not hidden)
//	cycle: c -> a
func buildTestGraph() *Snapshot {
	b := NewBuilder()
	for _, n := range []struct{ id, title string }{
		{model.RootID, "root"},
		{model.HiddenRootID, "Hidden Notes"},
		{"a", "Alpha"},
		{"b", "Beta"},
		{"c", "Gamma"},
		{"d", "Delta"},
		{"h1", "Hidden One"},
		{"h2", "Hidden Two"},
	} {
		b.AddNote(model.Note{NoteID: n.id, Title: n.title, Type: model.NoteTypeText}, "", false)
	}

	b.AddBranch(model.RootID, "a")
	b.AddBranch("a", "b")
	b.AddBranch("b", "c")
	b.AddBranch(model.RootID, "d")
	b.AddBranch(model.HiddenRootID, "h1")
	b.AddBranch("h1", "h2")
	b.AddBranch(model.HiddenRootID, "b")
	b.AddBranch("c", "a")
	return b.Build()
}

func TestIsHidden(t *testing.T) {
	s := buildTestGraph()

	assert.False(t, s.IsHidden("a"))
	assert.False(t, s.IsHidden("d"))
	assert.True(t, s.IsHidden("h1"))
	assert.True(t, s.IsHidden("h2"))

	// A clone with one visible path is not hidden.
	assert.False(t, s.IsHidden("b"))

	// A note with no branches at all has no visible path.
	assert.True(t, s.IsHidden("orphan"))
}

func TestBestPathPrefersVisible(t *testing.T) {
	s := buildTestGraph()

	assert.Equal(t, []string{model.RootID, "a", "b"}, s.BestPath("b"))
	assert.Equal(t, []string{model.RootID, "a", "b", "c"}, s.BestPath("c"))

	// Hidden-only notes still resolve through the hidden root.
	assert.Equal(t, []string{model.HiddenRootID, "h1", "h2"}, s.BestPath("h2"))

	assert.Nil(t, s.BestPath("orphan"))
}

func TestPathTitle(t *testing.T) {
	s := buildTestGraph()

	assert.Equal(t, "", s.PathTitle(s.BestPath("a")))
	assert.Equal(t, "Alpha", s.PathTitle(s.BestPath("b")))
	assert.Equal(t, "Alpha / Beta", s.PathTitle(s.BestPath("c")))
}

func TestWalkVisitsReachableOnce(t *testing.T) {
	s := buildTestGraph()

	var visited []string
	s.Walk(model.RootID, func(note model.Note) bool {
		visited = append(visited, note.NoteID)
		return true
	})

	// The a-b-c cycle must not cause revisits.
	assert.ElementsMatch(t, []string{model.RootID, "a", "b", "c", "d"}, visited)
}

func TestWalkPrunes(t *testing.T) {
	s := buildTestGraph()

	var visited []string
	s.Walk(model.RootID, func(note model.Note) bool {
		visited = append(visited, note.NoteID)
		return note.NoteID != "a"
	})

	assert.NotContains(t, visited, "b")
	assert.Contains(t, visited, "d")
}
