// Package store implements the canonical note store on SQLite. It is the
// single source of truth for notes, branches and content blobs; every
// derived structure (the native search index) must be reconstructable from
// it. Mutations emit events to registered observers inside the mutating
// transaction, so derived state is never observably stale relative to a
// committed write.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/notabase/search/internal/errors"
	"github.com/notabase/search/internal/graph"
	"github.com/notabase/search/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
    noteId TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    type TEXT NOT NULL,
    mime TEXT NOT NULL DEFAULT '',
    blobId TEXT NOT NULL DEFAULT '',
    isProtected INTEGER NOT NULL DEFAULT 0,
    isDeleted INTEGER NOT NULL DEFAULT 0,
    dateModified TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS branches (
    branchId TEXT PRIMARY KEY,
    noteId TEXT NOT NULL,
    parentNoteId TEXT NOT NULL,
    isDeleted INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_branches_noteId ON branches(noteId);
CREATE INDEX IF NOT EXISTS idx_branches_parentNoteId ON branches(parentNoteId);

CREATE TABLE IF NOT EXISTS blobs (
    blobId TEXT PRIMARY KEY,
    content TEXT NOT NULL
);
`

// MutationKind identifies what changed in the canonical store.
type MutationKind int

const (
	// NoteCreated fires after a new note row is inserted.
	NoteCreated MutationKind = iota
	// NoteUpdated fires after note metadata changes (title, type,
	// protection, deletion state).
	NoteUpdated
	// NoteDeleted fires after a note is hard-removed.
	NoteDeleted
	// BlobUpserted fires after blob content is inserted or updated; it may
	// affect every note referencing the blob.
	BlobUpserted
)

// Mutation describes one canonical-store change delivered to observers.
type Mutation struct {
	Kind   MutationKind
	NoteID string
	BlobID string
}

// Observer consumes mutation events. OnNoteMutated runs inside the mutating
// transaction: returning an error aborts the whole mutation, keeping
// canonical and derived state atomic.
type Observer interface {
	OnNoteMutated(tx *sql.Tx, m Mutation) error
}

// Store owns the SQLite database holding the canonical note graph.
type Store struct {
	db *sql.DB

	mu        sync.Mutex // serializes writers
	observers []Observer
}

// Open opens (creating if necessary) the note database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open note database: %w", err)
	}

	// WAL for concurrent readers during writes; a single writer connection
	// is all SQLite can use anyway.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create note schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureRoots(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// ensureRoots guarantees the visible root and the hidden subtree root exist.
func (s *Store) ensureRoots() error {
	for _, root := range []struct{ id, title string }{
		{model.RootID, "root"},
		{model.HiddenRootID, "Hidden Notes"},
	} {
		_, err := s.db.Exec(`
			INSERT OR IGNORE INTO notes (noteId, title, type) VALUES (?, ?, 'text')
		`, root.id, root.title)
		if err != nil {
			return fmt.Errorf("failed to ensure root note %s: %w", root.id, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying database for derived-state engines living in the
// same file (the native search index). Writers must still go through Store
// mutations or the explicit rebuild/sync operations.
func (s *Store) DB() *sql.DB { return s.db }

// RegisterObserver subscribes an observer to mutation events.
func (s *Store) RegisterObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// mutate runs fn and the observers in one transaction.
func (s *Store) mutate(fn func(tx *sql.Tx) (Mutation, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	m, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, o := range s.observers {
		if err := o.OnNoteMutated(tx, m); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("index synchronization failed: %w", err)
		}
	}

	return tx.Commit()
}

// CreateNote inserts a note under parentID with the given content. An empty
// content creates a note without a blob.
func (s *Store) CreateNote(note model.Note, parentID, content string) error {
	if note.NoteID == "" {
		return errors.NewValidationError("note_id", "must not be empty")
	}
	if parentID == "" {
		parentID = model.RootID
	}

	return s.mutate(func(tx *sql.Tx) (Mutation, error) {
		if content != "" {
			note.BlobID = uuid.New().String()
			if _, err := tx.Exec(`INSERT INTO blobs (blobId, content) VALUES (?, ?)`,
				note.BlobID, content); err != nil {
				return Mutation{}, fmt.Errorf("failed to insert blob: %w", err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO notes (noteId, title, type, mime, blobId, isProtected, isDeleted)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, note.NoteID, note.Title, string(note.Type), note.Mime, note.BlobID,
			boolInt(note.IsProtected), boolInt(note.IsDeleted)); err != nil {
			return Mutation{}, fmt.Errorf("failed to insert note: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO branches (branchId, noteId, parentNoteId) VALUES (?, ?, ?)
		`, uuid.New().String(), note.NoteID, parentID); err != nil {
			return Mutation{}, fmt.Errorf("failed to insert branch: %w", err)
		}

		return Mutation{Kind: NoteCreated, NoteID: note.NoteID, BlobID: note.BlobID}, nil
	})
}

// UpdateNote rewrites a note's metadata (title, type, mime, protection and
// deletion flags). The blob reference is unchanged.
func (s *Store) UpdateNote(note model.Note) error {
	return s.mutate(func(tx *sql.Tx) (Mutation, error) {
		res, err := tx.Exec(`
			UPDATE notes
			SET title = ?, type = ?, mime = ?, isProtected = ?, isDeleted = ?,
			    dateModified = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			WHERE noteId = ?
		`, note.Title, string(note.Type), note.Mime,
			boolInt(note.IsProtected), boolInt(note.IsDeleted), note.NoteID)
		if err != nil {
			return Mutation{}, fmt.Errorf("failed to update note: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Mutation{}, errors.NewNoteNotFoundError(note.NoteID)
		}
		return Mutation{Kind: NoteUpdated, NoteID: note.NoteID}, nil
	})
}

// UpdateNoteContent replaces the content blob of a note, creating one if the
// note had none.
func (s *Store) UpdateNoteContent(noteID, content string) error {
	return s.mutate(func(tx *sql.Tx) (Mutation, error) {
		var blobID string
		err := tx.QueryRow(`SELECT blobId FROM notes WHERE noteId = ?`, noteID).Scan(&blobID)
		if err == sql.ErrNoRows {
			return Mutation{}, errors.NewNoteNotFoundError(noteID)
		}
		if err != nil {
			return Mutation{}, fmt.Errorf("failed to load note: %w", err)
		}

		if blobID == "" {
			blobID = uuid.New().String()
			if _, err := tx.Exec(`INSERT INTO blobs (blobId, content) VALUES (?, ?)`,
				blobID, content); err != nil {
				return Mutation{}, fmt.Errorf("failed to insert blob: %w", err)
			}
			if _, err := tx.Exec(`UPDATE notes SET blobId = ? WHERE noteId = ?`,
				blobID, noteID); err != nil {
				return Mutation{}, fmt.Errorf("failed to link blob: %w", err)
			}
		} else {
			if _, err := tx.Exec(`UPDATE blobs SET content = ? WHERE blobId = ?`,
				content, blobID); err != nil {
				return Mutation{}, fmt.Errorf("failed to update blob: %w", err)
			}
		}

		return Mutation{Kind: BlobUpserted, NoteID: noteID, BlobID: blobID}, nil
	})
}

// DeleteNote soft-deletes a note. The row remains for undelete; derived
// indexes drop it via the NoteDeleted event.
func (s *Store) DeleteNote(noteID string) error {
	return s.mutate(func(tx *sql.Tx) (Mutation, error) {
		res, err := tx.Exec(`UPDATE notes SET isDeleted = 1 WHERE noteId = ?`, noteID)
		if err != nil {
			return Mutation{}, fmt.Errorf("failed to delete note: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Mutation{}, errors.NewNoteNotFoundError(noteID)
		}
		return Mutation{Kind: NoteDeleted, NoteID: noteID}, nil
	})
}

// GetNote loads a single note.
func (s *Store) GetNote(noteID string) (model.Note, error) {
	row := s.db.QueryRow(`
		SELECT noteId, title, type, mime, blobId, isProtected, isDeleted
		FROM notes WHERE noteId = ?
	`, noteID)
	return scanNote(row)
}

// Snapshot loads a read-only view of the whole note graph.
func (s *Store) Snapshot() (*graph.Snapshot, error) {
	builder := graph.NewBuilder()

	rows, err := s.db.Query(`
		SELECT n.noteId, n.title, n.type, n.mime, n.blobId, n.isProtected, n.isDeleted,
		       b.content
		FROM notes n
		LEFT JOIN blobs b ON n.blobId = b.blobId
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var note model.Note
		var typ string
		var protected, deleted int
		var content sql.NullString
		if err := rows.Scan(&note.NoteID, &note.Title, &typ, &note.Mime, &note.BlobID,
			&protected, &deleted, &content); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note.Type = model.NoteType(typ)
		note.IsProtected = protected != 0
		note.IsDeleted = deleted != 0
		builder.AddNote(note, content.String, content.Valid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	branchRows, err := s.db.Query(`
		SELECT parentNoteId, noteId FROM branches WHERE isDeleted = 0
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	defer branchRows.Close()

	for branchRows.Next() {
		var parentID, noteID string
		if err := branchRows.Scan(&parentID, &noteID); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		builder.AddBranch(parentID, noteID)
	}
	if err := branchRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return builder.Build(), nil
}

func scanNote(row *sql.Row) (model.Note, error) {
	var note model.Note
	var typ string
	var protected, deleted int
	err := row.Scan(&note.NoteID, &note.Title, &typ, &note.Mime, &note.BlobID,
		&protected, &deleted)
	if err == sql.ErrNoRows {
		return model.Note{}, errors.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to scan note: %w", err)
	}
	note.Type = model.NoteType(typ)
	note.IsProtected = protected != 0
	note.IsDeleted = deleted != 0
	return note, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
