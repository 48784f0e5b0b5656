// Package model defines the read model the search subsystem consumes from the
// canonical note store: notes, their content blobs, and the classification
// rules deciding which notes are eligible for full-text indexing.
package model

// NoteType identifies the kind of content a note carries.
type NoteType string

const (
	NoteTypeText    NoteType = "text"
	NoteTypeCode    NoteType = "code"
	NoteTypeMermaid NoteType = "mermaid"
	NoteTypeCanvas  NoteType = "canvas"
	NoteTypeMindMap NoteType = "mindMap"
	NoteTypeImage   NoteType = "image"
	NoteTypeFile    NoteType = "file"
	NoteTypeSearch  NoteType = "search"
)

// indexableTypes are the text-bearing note types that participate in
// full-text indexing. Image, file and saved-search notes carry no
// searchable text content.
var indexableTypes = map[NoteType]bool{
	NoteTypeText:    true,
	NoteTypeCode:    true,
	NoteTypeMermaid: true,
	NoteTypeCanvas:  true,
	NoteTypeMindMap: true,
}

// IndexableTypes returns the note types eligible for full-text indexing, in a
// stable order suitable for building SQL IN clauses.
func IndexableTypes() []NoteType {
	return []NoteType{NoteTypeText, NoteTypeCode, NoteTypeMermaid, NoteTypeCanvas, NoteTypeMindMap}
}

// HiddenRootID is the reserved identifier of the subtree holding hidden and
// system notes. Notes reachable only through this subtree are treated as
// archived for search purposes.
const HiddenRootID = "_hidden"

// RootID is the identifier of the visible tree root.
const RootID = "root"

// Note is the search engine's view of a note. Content lives separately in a
// Blob referenced by BlobID; a note without a blob has no indexable content.
type Note struct {
	NoteID      string   `json:"note_id"`
	Title       string   `json:"title"`
	Type        NoteType `json:"type"`
	Mime        string   `json:"mime"`
	BlobID      string   `json:"blob_id,omitempty"`
	IsProtected bool     `json:"is_protected"`
	IsDeleted   bool     `json:"is_deleted"`
}

// Blob holds note content, stored separately from note metadata so that
// multiple notes (clones) can reference the same content.
type Blob struct {
	BlobID  string
	Content string
}

// Branch places a note under a parent. A note can have multiple branches
// (clones); the hierarchy is a DAG rooted at RootID.
type Branch struct {
	BranchID     string
	NoteID       string
	ParentNoteID string
	IsDeleted    bool
}

// IsIndexEligible reports whether a note belongs in the full-text index.
// Every synchronization path (mutation events, full rebuild, missing-note
// sync) must apply exactly this predicate: text-bearing type, not deleted,
// not protected, and content present.
func IsIndexEligible(note Note, hasContent bool) bool {
	return indexableTypes[note.Type] &&
		!note.IsDeleted &&
		!note.IsProtected &&
		hasContent
}
