package nativeindex

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/notabase/search/internal/normalize"
	"github.com/notabase/search/internal/tokenizer"
	"github.com/notabase/search/model"
)

// indexableTypesIn renders the eligible note types as a SQL IN clause body.
func indexableTypesIn() string {
	types := model.IndexableTypes()
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = "'" + string(t) + "'"
	}
	return strings.Join(quoted, ", ")
}

// eligibleNotesWhere is the SQL rendition of model.IsIndexEligible, applied
// against the canonical notes and blobs tables (aliased n and b). Every code
// path that decides index membership in SQL must use this fragment so the
// database and the Go predicate never disagree.
var eligibleNotesWhere = fmt.Sprintf(
	`n.type IN (%s) AND n.isDeleted = 0 AND n.isProtected = 0 AND b.content IS NOT NULL`,
	indexableTypesIn())

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// indexDocument writes all derived rows for one note. Callers must have
// removed any previous rows for the note first.
func indexDocument(tx execer, noteID, title, mime, content string) error {
	content = normalize.Content(mime, content)

	titleNorm := normalize.Text(title)
	fullText := tokenizer.JoinNormalized(title, content)

	if _, err := tx.Exec(
		`INSERT INTO note_search_content (noteId, title, content, title_normalized, full_text_normalized)
		 VALUES (?, ?, ?, ?, ?)`,
		noteID, title, content, titleNorm, fullText,
	); err != nil {
		return fmt.Errorf("indexing note %s content: %w", noteID, err)
	}

	// One position counter runs across the title and content streams, so a
	// token's position is stable within the whole note.
	position := 0
	for _, token := range tokenizer.Tokenize(title) {
		if _, err := tx.Exec(
			`INSERT INTO note_tokens (noteId, token_normalized, position, source) VALUES (?, ?, ?, 'title')`,
			noteID, token, position,
		); err != nil {
			return fmt.Errorf("indexing note %s title tokens: %w", noteID, err)
		}
		position++
	}
	for _, token := range tokenizer.Tokenize(content) {
		if _, err := tx.Exec(
			`INSERT INTO note_tokens (noteId, token_normalized, position, source) VALUES (?, ?, ?, 'content')`,
			noteID, token, position,
		); err != nil {
			return fmt.Errorf("indexing note %s content tokens: %w", noteID, err)
		}
		position++
	}

	// The FTS row stores the distinct normalized tokens space-joined, so
	// FTS5's tokenizer reproduces exactly the token set in note_tokens.
	allTokens := tokenizer.TokenizeUnique(title + " " + content)
	if _, err := tx.Exec(
		`INSERT INTO notes_fts (noteId, tokens) VALUES (?, ?)`,
		noteID, strings.Join(allTokens, " "),
	); err != nil {
		return fmt.Errorf("indexing note %s full-text row: %w", noteID, err)
	}
	return nil
}

// removeDocument deletes all derived rows for one note. Removing a note that
// was never indexed is a no-op.
func removeDocument(tx execer, noteID string) error {
	for _, stmt := range []string{
		`DELETE FROM note_search_content WHERE noteId = ?`,
		`DELETE FROM note_tokens WHERE noteId = ?`,
		`DELETE FROM notes_fts WHERE noteId = ?`,
	} {
		if _, err := tx.Exec(stmt, noteID); err != nil {
			return fmt.Errorf("removing note %s from index: %w", noteID, err)
		}
	}
	return nil
}
