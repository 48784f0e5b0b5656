// Package normalize provides the single text normalization used across the
// search subsystem. Both query text and indexed note text pass through the
// same function so that comparisons in the scorer, the in-memory matcher and
// the native index always agree.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD, strips combining marks (diacritics) and
// recomposes to NFC.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text lowercases the input and removes diacritics, e.g. "Café" -> "cafe".
// Falls back to plain lowercasing if the transform fails on malformed input.
func Text(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
