package nativeindex

import (
	"database/sql"
	"fmt"

	"github.com/notabase/search/model"
	"github.com/notabase/search/store"
)

// Syncer keeps the derived search tables consistent with the canonical note
// store by observing mutation events inside the mutating transaction. Every
// event follows the same shape: drop the old derived rows, reinsert only if
// the note is still eligible. Transitions out of eligibility (deletion,
// protection, type change, content removal) therefore need no special cases.
type Syncer struct{}

var _ store.Observer = (*Syncer)(nil)

func NewSyncer() *Syncer { return &Syncer{} }

// OnNoteMutated applies one mutation to the derived tables. An error aborts
// the canonical mutation too, so the index never commits out of step.
func (sy *Syncer) OnNoteMutated(tx *sql.Tx, m store.Mutation) error {
	switch m.Kind {
	case store.NoteCreated, store.NoteUpdated:
		return sy.reindexNote(tx, m.NoteID)
	case store.NoteDeleted:
		return removeDocument(tx, m.NoteID)
	case store.BlobUpserted:
		// Clones share a blob, so a content change can touch several notes.
		return sy.reindexBlobReferences(tx, m.BlobID)
	default:
		return fmt.Errorf("unknown mutation kind %d for note %s", m.Kind, m.NoteID)
	}
}

func (sy *Syncer) reindexNote(tx *sql.Tx, noteID string) error {
	if err := removeDocument(tx, noteID); err != nil {
		return err
	}

	var (
		note               model.Note
		noteType, mime     string
		protected, deleted int
		content            sql.NullString
	)
	err := tx.QueryRow(`
		SELECT n.title, n.type, n.mime, n.isProtected, n.isDeleted, b.content
		FROM notes n
		LEFT JOIN blobs b ON n.blobId = b.blobId
		WHERE n.noteId = ?
	`, noteID).Scan(&note.Title, &noteType, &mime, &protected, &deleted, &content)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading note %s for reindex: %w", noteID, err)
	}
	note.NoteID = noteID
	note.Type = model.NoteType(noteType)
	note.Mime = mime
	note.IsProtected = protected != 0
	note.IsDeleted = deleted != 0

	if !model.IsIndexEligible(note, content.Valid) {
		return nil
	}
	return indexDocument(tx, noteID, note.Title, mime, content.String)
}

func (sy *Syncer) reindexBlobReferences(tx *sql.Tx, blobID string) error {
	rows, err := tx.Query(`SELECT noteId FROM notes WHERE blobId = ?`, blobID)
	if err != nil {
		return fmt.Errorf("finding notes for blob %s: %w", blobID, err)
	}
	var noteIDs []string
	for rows.Next() {
		var noteID string
		if err := rows.Scan(&noteID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning blob reference: %w", err)
		}
		noteIDs = append(noteIDs, noteID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, noteID := range noteIDs {
		if err := sy.reindexNote(tx, noteID); err != nil {
			return err
		}
	}
	return nil
}
