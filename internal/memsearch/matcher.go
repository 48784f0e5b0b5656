// Package memsearch implements the graph-traversal search backend. It walks
// an in-memory snapshot of the note hierarchy and evaluates the same operator
// semantics the SQLite backend expresses in SQL, so both backends return the
// same note ID sets for the same query.
package memsearch

import (
	"strings"
	"unicode/utf8"

	"github.com/notabase/search/internal/scoring"
	"github.com/notabase/search/internal/tokenizer"
	"github.com/notabase/search/internal/typoutil"
	"github.com/notabase/search/services"
)

// document is one note's searchable text in its matchable forms. The token
// set is built lazily since only the exact-word and fuzzy operators need it.
type document struct {
	fullText string
	rawText  string
	tokens   map[string]struct{}
}

func newDocument(title, content string) *document {
	return &document{
		fullText: tokenizer.JoinNormalized(title, content),
		rawText:  title + " " + content,
	}
}

func (d *document) tokenSet() map[string]struct{} {
	if d.tokens == nil {
		d.tokens = tokenizer.TokenSet(d.rawText)
	}
	return d.tokens
}

// matches reports whether the document satisfies every query token under the
// operator. Callers pass normalized tokens.
func (d *document) matches(tokens []string, operator services.Operator) bool {
	for _, token := range tokens {
		if !d.matchesToken(token, operator) {
			return false
		}
	}
	return true
}

func (d *document) matchesToken(token string, operator services.Operator) bool {
	switch operator {
	case services.OpContains:
		return strings.Contains(d.fullText, token)
	case services.OpPrefix:
		return strings.HasPrefix(d.fullText, token)
	case services.OpSuffix:
		return strings.HasSuffix(d.fullText, token)
	case services.OpExactWord:
		_, ok := d.tokenSet()[token]
		return ok
	case services.OpFuzzy:
		if strings.Contains(d.fullText, token) {
			return true
		}
		for noteToken := range d.tokenSet() {
			if fuzzyTokenMatch(token, noteToken) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// fuzzyTokenMatch mirrors the SQLite fuzzy condition: exact equality always
// matches, otherwise both tokens must be long enough and within the edit
// distance threshold. Lengths count runes, matching SQL's length() on text.
func fuzzyTokenMatch(queryToken, noteToken string) bool {
	if queryToken == noteToken {
		return true
	}
	queryLen := utf8.RuneCountInString(queryToken)
	noteLen := utf8.RuneCountInString(noteToken)
	if queryLen < scoring.MinFuzzyTokenLength || noteLen < scoring.MinFuzzyTokenLength {
		return false
	}
	if diff := queryLen - noteLen; diff > scoring.MaxEditDistance || -diff > scoring.MaxEditDistance {
		return false
	}
	return typoutil.IsMatch(queryToken, noteToken, scoring.MaxEditDistance)
}
