// Package services defines the shared search contract: the query shape, the
// closed operator set, and the backend strategy interface both engines
// implement.
package services

import (
	"fmt"
	"sort"
)

// Operator is the closed set of match operators. Using a typed enum instead
// of raw operator strings makes an unrecognized operator a compile-time
// concern; every switch over Operator must be exhaustive.
type Operator int

const (
	// OpContains matches notes whose text contains every token (*=*).
	OpContains Operator = iota
	// OpPrefix matches notes whose text starts with every token (=*).
	OpPrefix
	// OpSuffix matches notes whose text ends with every token (*=).
	OpSuffix
	// OpFuzzy matches tokens within a bounded edit distance (~=).
	OpFuzzy
	// OpExactWord matches notes containing every token as a whole word (=).
	OpExactWord
)

// String returns the query-language spelling of the operator.
func (op Operator) String() string {
	switch op {
	case OpContains:
		return "*=*"
	case OpPrefix:
		return "=*"
	case OpSuffix:
		return "*="
	case OpFuzzy:
		return "~="
	case OpExactWord:
		return "="
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// ParseOperator maps a query-language operator spelling to its Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "*=*", "contains", "":
		return OpContains, nil
	case "=*", "prefix":
		return OpPrefix, nil
	case "*=", "suffix":
		return OpSuffix, nil
	case "~=", "fuzzy":
		return OpFuzzy, nil
	case "=", "word":
		return OpExactWord, nil
	}
	return OpContains, fmt.Errorf("unknown search operator %q", s)
}

// SearchOptions carries the context flags of a search invocation.
type SearchOptions struct {
	// IncludeArchived includes notes inside the hidden subtree.
	IncludeArchived bool `json:"include_archived"`
	// AncestorNoteID restricts the search to a subtree; empty means the
	// whole graph.
	AncestorNoteID string `json:"ancestor_note_id,omitempty"`
	// DisableFuzzy turns off typo-tolerant scoring and matching.
	DisableFuzzy bool `json:"disable_fuzzy"`
	// Limit bounds the number of ranked hits returned; <= 0 uses the
	// engine default.
	Limit int `json:"limit,omitempty"`
}

// SearchQuery is an immutable description of one search invocation.
type SearchQuery struct {
	// Text is the raw query string, used for title-level scoring tiers.
	Text string
	// Tokens are the normalized query tokens.
	Tokens []string
	// Operator selects the matching strategy.
	Operator Operator
	// Options are the context flags for this invocation.
	Options SearchOptions
}

// IDSet is a set of note identifiers produced by a backend.
type IDSet map[string]struct{}

// NewIDSet builds an IDSet from the given identifiers.
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add inserts id into the set.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Equal reports whether both sets contain exactly the same identifiers.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the identifiers in lexicographic order, for deterministic
// output and logging.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Backend is the strategy interface both query engines implement. It
// computes match-set membership only; ranking happens in the dispatcher so
// that both backends share one scoring path.
type Backend interface {
	Search(query SearchQuery) (IDSet, error)
}

// SearchHit is one ranked result.
type SearchHit struct {
	NoteID     string   `json:"note_id"`
	Title      string   `json:"title"`
	Path       []string `json:"path"`
	Score      float64  `json:"score"`
	FuzzyScore float64  `json:"fuzzy_score"`
}

// SearchResult is the caller-visible outcome of one search invocation.
type SearchResult struct {
	Hits    []SearchHit `json:"hits"`
	Total   int         `json:"total"`
	Backend string      `json:"backend"`
	Took    int64       `json:"took"` // milliseconds
	QueryID string      `json:"query_id"`
}
