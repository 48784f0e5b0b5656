// Package scoring ranks candidate notes against a query. Contributions are
// additive across tiers; approximate (fuzzy) contributions are tracked
// separately and capped so that a flood of weak fuzzy hits can never outrank
// a single strong exact hit.
package scoring

import (
	"strings"

	"github.com/notabase/search/internal/normalize"
	"github.com/notabase/search/internal/typoutil"
)

// Scoring weights, in tier order. Exact title match dominates; each lower
// tier is strictly smaller than the one above it.
const (
	ScoreNoteIDExactMatch = 1000.0
	ScoreTitleExactMatch  = 2000.0
	ScoreTitlePrefixMatch = 700.0
	ScoreTitleWordMatch   = 400.0

	// Per-token unit weights, scaled by token length and field factor.
	tokenExactWeight    = 4.0
	tokenPrefixWeight   = 2.0
	tokenContainsWeight = 1.0
	tokenFuzzyWeight    = 0.5

	// Title matches weigh more than matches in the note path display string.
	titleFactor = 1.5
	pathFactor  = 1.0

	// titleFuzzyBase is the ceiling of a whole-title fuzzy match before
	// similarity scaling; deliberately below ScoreTitleWordMatch.
	titleFuzzyBase = 240.0

	// FuzzyScoreCeiling bounds the total fuzzy contribution per candidate.
	FuzzyScoreCeiling = 300.0

	// maxFuzzyTokenPoints caps a single token-level fuzzy hit.
	maxFuzzyTokenPoints = 12.0

	// MinFuzzyTokenLength excludes very short tokens from fuzzy comparison;
	// 1-2 character tokens produce combinatorial false positives.
	MinFuzzyTokenLength = 3

	// MaxEditDistance bounds every edit-distance computation.
	MaxEditDistance = 2

	// hiddenPenaltyDivisor divides the final score of candidates inside a
	// hidden subtree. Division keeps hidden notes rankable relative to each
	// other while never letting them outrank an equally scored visible note.
	hiddenPenaltyDivisor = 3.0
)

// Candidate is one note reachable from the search scope.
type Candidate struct {
	NoteID string
	Title  string
	// PathTitle is the display string of the note's path, e.g.
	// "projects / 2024 / budget".
	PathTitle string
	// Hidden marks candidates inside the hidden or system subtree.
	Hidden bool
}

// Score computes the relevance of a candidate for the given query. It
// returns the accumulated score and the portion of it contributed by fuzzy
// matching. Invariants: fuzzyScore <= score and fuzzyScore <= FuzzyScoreCeiling.
func Score(c Candidate, queryText string, tokens []string, enableFuzzy bool) (score, fuzzyScore float64) {
	acc := &accumulator{}

	normalizedQuery := normalize.Text(queryText)
	normalizedTitle := normalize.Text(c.Title)

	if strings.EqualFold(c.NoteID, queryText) {
		acc.add(ScoreNoteIDExactMatch)
	}

	switch {
	case normalizedTitle == normalizedQuery && normalizedQuery != "":
		acc.add(ScoreTitleExactMatch)
	case strings.HasPrefix(normalizedTitle, normalizedQuery) && normalizedQuery != "":
		acc.add(ScoreTitlePrefixMatch)
	case containsWholeWord(normalizedTitle, normalizedQuery):
		acc.add(ScoreTitleWordMatch)
	case enableFuzzy:
		acc.addTitleFuzzy(normalizedQuery, normalizedTitle)
	}

	acc.addScoreForStrings(tokens, c.Title, titleFactor, enableFuzzy)
	acc.addScoreForStrings(tokens, c.PathTitle, pathFactor, enableFuzzy)

	if c.Hidden {
		// Divide both so fuzzyScore <= score survives the penalty.
		acc.score /= hiddenPenaltyDivisor
		acc.fuzzyScore /= hiddenPenaltyDivisor
	}

	return acc.score, acc.fuzzyScore
}

// accumulator tracks the running score and enforces the fuzzy budget.
type accumulator struct {
	score      float64
	fuzzyScore float64
}

func (a *accumulator) add(points float64) {
	a.score += points
}

// addFuzzy credits fuzzy points against the remaining budget; once the
// ceiling is reached further fuzzy hits contribute nothing.
func (a *accumulator) addFuzzy(points float64) {
	remaining := FuzzyScoreCeiling - a.fuzzyScore
	if remaining <= 0 || points <= 0 {
		return
	}
	if points > remaining {
		points = remaining
	}
	a.score += points
	a.fuzzyScore += points
}

// addTitleFuzzy awards a bounded fuzzy bonus for a near-miss of the whole
// title. The allowed distance shrinks with the shorter string so that tiny
// strings cannot fuzzy-match through wholesale replacement.
func (a *accumulator) addTitleFuzzy(normalizedQuery, normalizedTitle string) {
	queryLen := len([]rune(normalizedQuery))
	titleLen := len([]rune(normalizedTitle))
	if queryLen == 0 || titleLen == 0 {
		return
	}

	minLen, maxLen := queryLen, titleLen
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}
	if minLen < MinFuzzyTokenLength {
		return
	}

	allowed := minLen / 3
	if allowed > MaxEditDistance {
		allowed = MaxEditDistance
	}
	if allowed == 0 {
		return
	}

	distance := typoutil.BoundedDistance(normalizedQuery, normalizedTitle, allowed)
	if distance > allowed {
		return
	}

	similarity := 1.0 - float64(distance)/float64(maxLen)
	a.addFuzzy(titleFuzzyBase * similarity)
}

// addScoreForStrings scores every chunk/token pair of one field. Tiers are
// exact chunk match > chunk starts with token > chunk contains token >
// bounded-edit-distance fuzzy match; unit contributions scale with token
// length and the field factor.
func (a *accumulator) addScoreForStrings(tokens []string, field string, factor float64, enableFuzzy bool) {
	if field == "" || len(tokens) == 0 {
		return
	}

	chunks := strings.Fields(normalize.Text(field))

	for _, chunk := range chunks {
		for _, token := range tokens {
			tokenLen := float64(len([]rune(token)))

			switch {
			case chunk == token:
				a.add(tokenExactWeight * tokenLen * factor)
			case strings.HasPrefix(chunk, token):
				a.add(tokenPrefixWeight * tokenLen * factor)
			case strings.Contains(chunk, token):
				a.add(tokenContainsWeight * tokenLen * factor)
			case enableFuzzy:
				a.addTokenFuzzy(token, chunk, factor)
			}
		}
	}
}

func (a *accumulator) addTokenFuzzy(token, chunk string, factor float64) {
	tokenLen := len([]rune(token))
	chunkLen := len([]rune(chunk))
	if tokenLen < MinFuzzyTokenLength || chunkLen < MinFuzzyTokenLength {
		return
	}

	distance := typoutil.BoundedDistance(token, chunk, MaxEditDistance)
	if distance > MaxEditDistance {
		return
	}

	maxLen := tokenLen
	if chunkLen > maxLen {
		maxLen = chunkLen
	}
	similarity := 1.0 - float64(distance)/float64(maxLen)

	points := tokenFuzzyWeight * float64(tokenLen) * factor * similarity
	if points > maxFuzzyTokenPoints {
		points = maxFuzzyTokenPoints
	}
	a.addFuzzy(points)
}

// containsWholeWord reports whether needle occurs in haystack delimited by
// word boundaries (non-alphanumeric runes or string edges).
func containsWholeWord(haystack, needle string) bool {
	if needle == "" || len(needle) > len(haystack) {
		return false
	}

	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start

		end := idx + len(needle)
		if boundaryBefore(haystack, idx) && boundaryAfter(haystack, end) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordRune(rune(s[idx-1]))
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	return !isWordRune(rune(s[idx]))
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z'
}
