// Package tokenizer turns raw text into comparable token sequences for both
// query parsing and the native index's token projection.
package tokenizer

import (
	"regexp"
	"strings"

	"github.com/notabase/search/internal/normalize"
)

// nonAlphanumericRegex matches sequences of non-alphanumeric characters.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

// camelCaseRegex handles cases like "theOffice" -> "the Office" or "myAPI" -> "my API"
var camelCaseRegex = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Tokenize converts a string into a slice of normalized tokens.
// It splits camel/PascalCase, folds case and diacritics, and splits by
// non-alphanumeric characters.
func Tokenize(text string) []string {
	// 1. Split camelCase/PascalCase before case folding destroys the boundaries
	processedText := acronymRegex.ReplaceAllString(text, "$1 $2")
	processedText = camelCaseRegex.ReplaceAllString(processedText, "$1 $2")

	// 2. Fold case and diacritics
	folded := normalize.Text(processedText)

	// 3. Split by non-alphanumeric characters
	split := nonAlphanumericRegex.Split(folded, -1)

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// TokenizeUnique returns the distinct tokens of text in first-seen order.
// The native index's full-text rows store each distinct token once.
func TokenizeUnique(text string) []string {
	tokens := Tokenize(text)

	result := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}

// TokenSet returns the tokens of text as a membership set, used by the
// exact-word operator.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// JoinNormalized produces the single normalized full-text string stored per
// indexed document: normalized title, a space, then normalized content.
func JoinNormalized(title, content string) string {
	titleNorm := normalize.Text(title)
	contentNorm := normalize.Text(content)
	if contentNorm == "" {
		return titleNorm
	}
	return strings.TrimSpace(titleNorm + " " + contentNorm)
}
