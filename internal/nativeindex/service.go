package nativeindex

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/services"
)

const (
	// defaultBatchSize bounds how many notes a rebuild reads per pass.
	defaultBatchSize = 100

	// optimizeThreshold is the number of synced documents above which the
	// FTS index gets an optimize pass to merge its b-tree segments.
	optimizeThreshold = 64
)

// IndexStatus describes how complete the derived index is relative to the
// eligible notes in the canonical store.
type IndexStatus struct {
	Initialized     bool    `json:"initialized"`
	IndexedNotes    int     `json:"indexed_notes"`
	EligibleNotes   int     `json:"eligible_notes"`
	MissingNotes    int     `json:"missing_notes"`
	TokenCount      int     `json:"token_count"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// SearchStats aggregates timing over the searches this service served.
type SearchStats struct {
	TotalSearches int64         `json:"total_searches"`
	TotalTime     time.Duration `json:"total_time"`
	AverageTime   time.Duration `json:"average_time"`
	LastTime      time.Duration `json:"last_time"`
}

// Service is the SQLite-backed search backend. It answers membership queries
// from the derived tables and owns index maintenance (rebuild, sync, clear).
// Ranking is not its concern; it only decides which notes match.
type Service struct {
	db        *sql.DB
	batchSize int

	mu          sync.RWMutex
	initialized bool
	stats       SearchStats
}

// NewService applies the index schema and reports the service ready when the
// index already holds rows or the store has nothing eligible to index.
func NewService(db *sql.DB, batchSize int) (*Service, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	s := &Service{db: db, batchSize: batchSize}

	indexed, eligible, err := s.countIndexedAndEligible()
	if err != nil {
		return nil, err
	}
	s.initialized = indexed > 0 || eligible == 0
	return s, nil
}

// Ready reports whether the index can be trusted to answer searches. A
// cleared index is not ready until the next rebuild or sync repopulates it.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Search answers a membership query: which note IDs satisfy every query
// token under the given operator. Scope and archived filtering belong to the
// caller.
func (s *Service) Search(query services.SearchQuery) (services.IDSet, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("sqlite backend: %w", apperrors.ErrIndexNotReady)
	}
	if len(query.Tokens) == 0 {
		return services.NewIDSet(), nil
	}

	start := time.Now()

	var (
		results services.IDSet
		err     error
	)
	switch query.Operator {
	case services.OpContains:
		results, err = s.searchLike(query.Tokens, `nsc.full_text_normalized LIKE '%' || ? || '%'`)
	case services.OpPrefix:
		results, err = s.searchLike(query.Tokens, `nsc.full_text_normalized LIKE ? || '%'`)
	case services.OpSuffix:
		results, err = s.searchLike(query.Tokens, `nsc.full_text_normalized LIKE '%' || ?`)
	case services.OpExactWord:
		results, err = s.searchExactWord(query.Tokens)
	case services.OpFuzzy:
		results, err = s.searchFuzzy(query.Tokens)
	default:
		return nil, apperrors.NewValidationError("operator", fmt.Sprintf("unsupported operator %q", query.Operator))
	}
	if err != nil {
		return nil, err
	}

	s.recordSearch(time.Since(start))
	return results, nil
}

// searchLike handles the three substring-shaped operators. Every token must
// satisfy the same LIKE condition against the note's normalized full text.
func (s *Service) searchLike(tokens []string, condition string) (services.IDSet, error) {
	conditions := make([]string, len(tokens))
	params := make([]any, len(tokens))
	for i, token := range tokens {
		conditions[i] = condition
		params[i] = token
	}

	query := `SELECT nsc.noteId FROM note_search_content nsc WHERE ` +
		strings.Join(conditions, " AND ")
	return s.collectIDs(query, params...)
}

// searchExactWord requires every token to appear as a whole word. The FTS
// rows hold the same normalized token stream as note_tokens, so a conjunctive
// MATCH over quoted tokens is exact word-set membership.
func (s *Service) searchExactWord(tokens []string) (services.IDSet, error) {
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(token, `"`, `""`) + `"`
	}
	match := strings.Join(quoted, " ")

	return s.collectIDs(
		`SELECT f.noteId FROM notes_fts f WHERE f.notes_fts MATCH ?`, match)
}

// searchFuzzy matches a token when the note's full text contains it exactly,
// or when some indexed token lies within the edit distance threshold. The
// guards mirror the in-memory matcher: both tokens at least three characters
// and length difference no more than the threshold.
func (s *Service) searchFuzzy(tokens []string) (services.IDSet, error) {
	const tokenCondition = `(
		nsc.full_text_normalized LIKE '%' || ?1 || '%'
		OR EXISTS (
			SELECT 1 FROM note_tokens nt
			WHERE nt.noteId = nsc.noteId
			AND (
				nt.token_normalized = ?1
				OR (
					length(?1) >= 3
					AND length(nt.token_normalized) >= 3
					AND abs(length(nt.token_normalized) - length(?1)) <= 2
					AND edit_distance(?1, nt.token_normalized, 2) <= 2
				)
			)
		)
	)`

	conditions := make([]string, len(tokens))
	params := make([]any, len(tokens))
	for i, token := range tokens {
		// Numbered placeholders let one token bind all five uses.
		conditions[i] = strings.ReplaceAll(tokenCondition, "?1", fmt.Sprintf("?%d", i+1))
		params[i] = token
	}

	query := `SELECT nsc.noteId FROM note_search_content nsc WHERE ` +
		strings.Join(conditions, " AND ")
	return s.collectIDs(query, params...)
}

func (s *Service) collectIDs(query string, params ...any) (services.IDSet, error) {
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("sqlite search query: %w", err)
	}
	defer rows.Close()

	results := services.NewIDSet()
	for rows.Next() {
		var noteID string
		if err := rows.Scan(&noteID); err != nil {
			return nil, fmt.Errorf("sqlite search scan: %w", err)
		}
		results.Add(noteID)
	}
	return results, rows.Err()
}

func (s *Service) recordSearch(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalSearches++
	s.stats.TotalTime += took
	s.stats.LastTime = took
	s.stats.AverageTime = s.stats.TotalTime / time.Duration(s.stats.TotalSearches)
}

// Stats returns a copy of the accumulated search timings.
func (s *Service) Stats() SearchStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// RebuildIndex drops and repopulates all derived tables in one transaction.
// Readers either see the old index or the new one, never a partial state.
// Rebuilding an index that is already consistent yields the same rows again,
// so the operation is safe to repeat. When force is false a rebuild on an
// uninitialized index is refused so callers notice they raced startup.
func (s *Service) RebuildIndex(force bool) (int, error) {
	if !s.Ready() && !force {
		return 0, fmt.Errorf("refusing rebuild: %w (use force)", apperrors.ErrIndexNotReady)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"note_search_content", "note_tokens", "notes_fts"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return 0, fmt.Errorf("clearing %s for rebuild: %w", table, err)
		}
	}

	indexed := 0
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.loadEligibleBatch(tx, offset)
		if err != nil {
			return 0, err
		}
		if len(batch) == 0 {
			break
		}
		for _, doc := range batch {
			if err := indexDocument(tx, doc.noteID, doc.title, doc.mime, doc.content); err != nil {
				return 0, err
			}
			indexed++
		}
	}

	if _, err := tx.Exec(`INSERT INTO notes_fts(notes_fts) VALUES('optimize')`); err != nil {
		return 0, fmt.Errorf("optimizing full-text index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	log.Printf("search index rebuilt: %d notes indexed", indexed)
	return indexed, nil
}

type eligibleDoc struct {
	noteID  string
	title   string
	mime    string
	content string
}

func (s *Service) loadEligibleBatch(tx *sql.Tx, offset int) ([]eligibleDoc, error) {
	rows, err := tx.Query(fmt.Sprintf(
		`SELECT n.noteId, n.title, n.mime, b.content
		 FROM notes n
		 LEFT JOIN blobs b ON n.blobId = b.blobId
		 WHERE %s
		 ORDER BY n.noteId
		 LIMIT ? OFFSET ?`, eligibleNotesWhere),
		s.batchSize, offset)
	if err != nil {
		return nil, fmt.Errorf("loading eligible notes: %w", err)
	}
	defer rows.Close()

	var batch []eligibleDoc
	for rows.Next() {
		var doc eligibleDoc
		if err := rows.Scan(&doc.noteID, &doc.title, &doc.mime, &doc.content); err != nil {
			return nil, fmt.Errorf("scanning eligible note: %w", err)
		}
		batch = append(batch, doc)
	}
	return batch, rows.Err()
}

// SyncMissingNotes indexes eligible notes the index does not know about yet.
// With noteIDs it checks only those notes, otherwise it scans the whole
// store. On an index that is already in sync it touches nothing and returns
// zero.
func (s *Service) SyncMissingNotes(noteIDs []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting sync transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		`SELECT n.noteId, n.title, n.mime, b.content
		 FROM notes n
		 LEFT JOIN blobs b ON n.blobId = b.blobId
		 WHERE %s
		 AND NOT EXISTS (SELECT 1 FROM note_search_content nsc WHERE nsc.noteId = n.noteId)`,
		eligibleNotesWhere)
	var params []any
	if len(noteIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(noteIDs)), ", ")
		query += ` AND n.noteId IN (` + placeholders + `)`
		for _, id := range noteIDs {
			params = append(params, id)
		}
	}

	rows, err := tx.Query(query, params...)
	if err != nil {
		return 0, fmt.Errorf("finding missing notes: %w", err)
	}
	var missing []eligibleDoc
	for rows.Next() {
		var doc eligibleDoc
		if err := rows.Scan(&doc.noteID, &doc.title, &doc.mime, &doc.content); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning missing note: %w", err)
		}
		missing = append(missing, doc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, doc := range missing {
		if err := indexDocument(tx, doc.noteID, doc.title, doc.mime, doc.content); err != nil {
			return 0, err
		}
	}

	if len(missing) >= optimizeThreshold {
		if _, err := tx.Exec(`INSERT INTO notes_fts(notes_fts) VALUES('optimize')`); err != nil {
			return 0, fmt.Errorf("optimizing full-text index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing sync: %w", err)
	}

	if len(missing) > 0 {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		log.Printf("search index sync: %d missing notes indexed", len(missing))
	}
	return len(missing), nil
}

// ClearIndex drops all derived rows. The service reports not ready until a
// rebuild or sync repopulates the index.
func (s *Service) ClearIndex() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting clear transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"note_search_content", "note_tokens", "notes_fts"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}

	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()

	log.Printf("search index cleared")
	return nil
}

// Status reports index completeness against the canonical store.
func (s *Service) Status() (IndexStatus, error) {
	indexed, eligible, err := s.countIndexedAndEligible()
	if err != nil {
		return IndexStatus{}, err
	}

	var tokenCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM note_tokens`).Scan(&tokenCount); err != nil {
		return IndexStatus{}, fmt.Errorf("counting index tokens: %w", err)
	}

	status := IndexStatus{
		Initialized:   s.Ready(),
		IndexedNotes:  indexed,
		EligibleNotes: eligible,
		MissingNotes:  eligible - indexed,
		TokenCount:    tokenCount,
	}
	if eligible > 0 {
		status.CoveragePercent = float64(indexed) / float64(eligible) * 100
	} else {
		status.CoveragePercent = 100
	}
	return status, nil
}

func (s *Service) countIndexedAndEligible() (indexed, eligible int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM note_search_content`).Scan(&indexed); err != nil {
		return 0, 0, fmt.Errorf("counting indexed notes: %w", err)
	}
	err = s.db.QueryRow(fmt.Sprintf(
		`SELECT COUNT(*) FROM notes n LEFT JOIN blobs b ON n.blobId = b.blobId WHERE %s`,
		eligibleNotesWhere)).Scan(&eligible)
	if err != nil {
		return 0, 0, fmt.Errorf("counting eligible notes: %w", err)
	}
	return indexed, eligible, nil
}
