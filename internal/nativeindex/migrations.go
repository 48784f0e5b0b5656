package nativeindex

import (
	"database/sql"
	"fmt"
)

// The derived search tables live alongside the canonical note tables in the
// same database file so that index synchronization can run inside the note
// mutation transaction.
//
// note_search_content holds one row per indexed note with pre-normalized
// text, note_tokens holds the word-level projection used by exact-word and
// fuzzy matching, and notes_fts is an FTS5 table over the normalized token
// stream for fast conjunctive word queries.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS note_search_content (
		noteId TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		title_normalized TEXT NOT NULL,
		full_text_normalized TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_note_search_content_title
		ON note_search_content(title_normalized)`,
	`CREATE TABLE IF NOT EXISTS note_tokens (
		noteId TEXT NOT NULL,
		token_normalized TEXT NOT NULL,
		position INTEGER NOT NULL,
		source TEXT NOT NULL CHECK (source IN ('title', 'content')),
		PRIMARY KEY (noteId, position, source)
	) WITHOUT ROWID`,
	`CREATE INDEX IF NOT EXISTS idx_note_tokens_token
		ON note_tokens(token_normalized)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
		noteId UNINDEXED,
		tokens
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range migrationStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying search index schema: %w", err)
		}
	}
	return nil
}
