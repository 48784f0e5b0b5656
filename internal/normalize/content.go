package normalize

import (
	"html"
	"regexp"
	"strings"
)

// MaxContentLength caps how much of a note's content participates in search.
// Content beyond the cap still lives in the canonical blob, it just cannot
// be found.
const MaxContentLength = 500_000

var (
	scriptStyleRegex = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagRegex     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// stripHTML reduces HTML note content to its visible text. Tags become
// spaces so adjacent block elements do not merge into one token.
func stripHTML(content string) string {
	content = scriptStyleRegex.ReplaceAllString(content, " ")
	content = htmlTagRegex.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(content, " "))
}

// Content prepares note content for matching: HTML notes are stripped to
// their visible text, everything is truncated to the search cap. Both
// backends must run content through here so they see identical text.
// Truncation works on bytes but backs off to the previous rune boundary.
func Content(mime, content string) string {
	if strings.Contains(mime, "text/html") {
		content = stripHTML(content)
	}
	if len(content) > MaxContentLength {
		cut := MaxContentLength
		for cut > 0 && !isRuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return content
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
