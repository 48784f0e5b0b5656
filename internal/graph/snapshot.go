// Package graph provides a read-only snapshot of the note hierarchy. The
// in-memory query engine traverses it, and the dispatcher uses it to resolve
// note paths and hidden/archived classification for ranking. A snapshot is
// immutable once built and safe for concurrent use.
package graph

import (
	"strings"

	"github.com/notabase/search/model"
)

// Snapshot is a point-in-time view of the note graph.
type Snapshot struct {
	notes    map[string]model.Note
	content  map[string]string   // noteID -> blob content
	children map[string][]string // parentID -> child noteIDs
	parents  map[string][]string // noteID -> parent noteIDs
}

// Builder accumulates graph state while a snapshot is being loaded.
type Builder struct {
	snapshot *Snapshot
}

// NewBuilder creates an empty snapshot builder.
func NewBuilder() *Builder {
	return &Builder{snapshot: &Snapshot{
		notes:    make(map[string]model.Note),
		content:  make(map[string]string),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}}
}

// AddNote registers a note and, when hasContent is true, its blob content.
func (b *Builder) AddNote(note model.Note, content string, hasContent bool) {
	b.snapshot.notes[note.NoteID] = note
	if hasContent {
		b.snapshot.content[note.NoteID] = content
	}
}

// AddBranch registers a parent-child placement. Deleted branches must not be
// added.
func (b *Builder) AddBranch(parentID, noteID string) {
	b.snapshot.children[parentID] = append(b.snapshot.children[parentID], noteID)
	b.snapshot.parents[noteID] = append(b.snapshot.parents[noteID], parentID)
}

// Build finalizes the snapshot.
func (b *Builder) Build() *Snapshot {
	s := b.snapshot
	b.snapshot = nil
	return s
}

// Note returns the note with the given id.
func (s *Snapshot) Note(noteID string) (model.Note, bool) {
	n, ok := s.notes[noteID]
	return n, ok
}

// Content returns the blob content of a note and whether the note has any.
func (s *Snapshot) Content(noteID string) (string, bool) {
	c, ok := s.content[noteID]
	return c, ok
}

// NoteCount returns the number of notes in the snapshot.
func (s *Snapshot) NoteCount() int { return len(s.notes) }

// Children returns the child note ids of a parent, in insertion order.
func (s *Snapshot) Children(parentID string) []string {
	return s.children[parentID]
}

// IsHidden reports whether a note is only reachable through the hidden
// subtree. A note with at least one visible path is not hidden.
func (s *Snapshot) IsHidden(noteID string) bool {
	return !s.hasVisiblePath(noteID, make(map[string]bool))
}

func (s *Snapshot) hasVisiblePath(noteID string, visiting map[string]bool) bool {
	if noteID == model.RootID {
		return true
	}
	if noteID == model.HiddenRootID || visiting[noteID] {
		return false
	}
	visiting[noteID] = true
	defer delete(visiting, noteID)

	for _, parent := range s.parents[noteID] {
		if s.hasVisiblePath(parent, visiting) {
			return true
		}
	}
	return false
}

// BestPath returns one path of note ids from the root to the note,
// preferring paths that avoid the hidden subtree. Returns nil when the note
// is unreachable from any root.
func (s *Snapshot) BestPath(noteID string) []string {
	if path := s.pathAvoiding(noteID, true, make(map[string]bool)); path != nil {
		return path
	}
	return s.pathAvoiding(noteID, false, make(map[string]bool))
}

func (s *Snapshot) pathAvoiding(noteID string, avoidHidden bool, visiting map[string]bool) []string {
	if noteID == model.RootID || noteID == model.HiddenRootID {
		if avoidHidden && noteID == model.HiddenRootID {
			return nil
		}
		return []string{noteID}
	}
	if visiting[noteID] {
		return nil
	}
	visiting[noteID] = true
	defer delete(visiting, noteID)

	for _, parent := range s.parents[noteID] {
		if prefix := s.pathAvoiding(parent, avoidHidden, visiting); prefix != nil {
			return append(prefix, noteID)
		}
	}
	return nil
}

// PathTitle renders the display string of a path, excluding the root and the
// note itself, e.g. ["root","a","b","c"] -> "A / B".
func (s *Snapshot) PathTitle(path []string) string {
	if len(path) <= 2 {
		return ""
	}
	titles := make([]string, 0, len(path)-2)
	for _, id := range path[1 : len(path)-1] {
		if n, ok := s.notes[id]; ok {
			titles = append(titles, n.Title)
		}
	}
	return strings.Join(titles, " / ")
}

// Walk visits every note reachable from startID exactly once, depth-first.
// The visit function returning false prunes the subtree below that note.
func (s *Snapshot) Walk(startID string, visit func(note model.Note) bool) {
	visited := make(map[string]bool)
	s.walk(startID, visited, visit)
}

func (s *Snapshot) walk(noteID string, visited map[string]bool, visit func(note model.Note) bool) {
	if visited[noteID] {
		return
	}
	visited[noteID] = true

	if note, ok := s.notes[noteID]; ok {
		if !visit(note) {
			return
		}
	}
	for _, child := range s.children[noteID] {
		s.walk(child, visited, visit)
	}
}
