package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scoreOf(t *testing.T, title, query string, tokens []string, fuzzy bool) (float64, float64) {
	t.Helper()
	c := Candidate{NoteID: "n1", Title: title, PathTitle: "root / " + title}
	return Score(c, query, tokens, fuzzy)
}

func TestTitleTierOrdering(t *testing.T) {
	query := "budget report"
	tokens := []string{"budget", "report"}

	exact, _ := scoreOf(t, "Budget Report", query, tokens, true)
	prefix, _ := scoreOf(t, "Budget Report 2024", query, tokens, true)
	word, _ := scoreOf(t, "Annual Budget Report Archive", query, tokens, true)
	fuzzyTitle, fuzzyPart := scoreOf(t, "Budget Reprot", query, tokens, true)

	assert.Greater(t, exact, prefix, "exact title match must outrank prefix match")
	assert.Greater(t, prefix, word, "prefix match must outrank whole-word match")
	assert.Greater(t, word, fuzzyTitle, "whole-word match must outrank fuzzy title match")
	assert.Greater(t, fuzzyPart, 0.0, "typo title should earn a fuzzy contribution")
}

func TestNoteIDExactMatch(t *testing.T) {
	c := Candidate{NoteID: "abc123", Title: "Unrelated"}
	score, _ := Score(c, "abc123", []string{"abc123"}, false)
	assert.GreaterOrEqual(t, score, ScoreNoteIDExactMatch)
}

func TestExactTitleDominatesPartialTitle(t *testing.T) {
	// Query "Meeting Notes" against an exact-title note and a word-match note.
	query := "Meeting Notes"
	tokens := []string{"meeting", "notes"}

	exact, _ := scoreOf(t, "Meeting Notes", query, tokens, true)
	partial, _ := scoreOf(t, "Meeting Note 2024", query, tokens, true)

	assert.Greater(t, exact, partial)
}

func TestTypoQueryRanksBelowExactTokenMatch(t *testing.T) {
	// "hte" is a typo for "the": it should fuzzy-match but stay below a note
	// with an exact "the" token.
	tokens := []string{"hte"}

	fuzzyScore, fuzzyPart := scoreOf(t, "The Budget Report", "hte", tokens, true)
	assert.Greater(t, fuzzyPart, 0.0, "typo should produce a nonzero fuzzy score")
	assert.LessOrEqual(t, fuzzyPart, FuzzyScoreCeiling)

	exactScore, _ := scoreOf(t, "The Budget Report", "the", []string{"the"}, true)
	assert.Greater(t, exactScore, fuzzyScore)
}

func TestShortTokensNeverFuzzyMatch(t *testing.T) {
	// Tokens below MinFuzzyTokenLength only match exactly/prefix/contains.
	for _, token := range []string{"a", "ab"} {
		_, fuzzyPart := scoreOf(t, "abc def ghi", token, []string{token}, true)
		assert.Zero(t, fuzzyPart, "token %q must not fuzzy match", token)
	}
}

func TestFuzzyDisabled(t *testing.T) {
	_, fuzzyPart := scoreOf(t, "Budget Reprot", "budget report", []string{"budget", "report"}, false)
	assert.Zero(t, fuzzyPart)
}

func TestFuzzyScoreInvariants(t *testing.T) {
	// A pathological candidate full of near-miss chunks: the fuzzy budget
	// must hold regardless of how many weak hits accumulate.
	nearMisses := make([]string, 200)
	for i := range nearMisses {
		nearMisses[i] = "reprot"
	}
	c := Candidate{
		NoteID:    "n1",
		Title:     strings.Join(nearMisses, " "),
		PathTitle: strings.Join(nearMisses, " "),
	}

	score, fuzzyScore := Score(c, "report", []string{"report"}, true)

	assert.LessOrEqual(t, fuzzyScore, score, "fuzzyScore must never exceed score")
	assert.LessOrEqual(t, fuzzyScore, FuzzyScoreCeiling, "fuzzy budget must cap accumulation")
	assert.InDelta(t, FuzzyScoreCeiling, fuzzyScore, 1.0, "budget should be exhausted by many fuzzy hits")
}

func TestHiddenPenaltyDividesNotSubtracts(t *testing.T) {
	visible := Candidate{NoteID: "n1", Title: "Project Plan"}
	hidden := Candidate{NoteID: "n2", Title: "Project Plan", Hidden: true}

	vScore, _ := Score(visible, "project plan", []string{"project", "plan"}, true)
	hScore, hFuzzy := Score(hidden, "project plan", []string{"project", "plan"}, true)

	assert.Greater(t, vScore, hScore, "hidden note must rank below visible twin")
	assert.Greater(t, hScore, 0.0, "hidden note must remain rankable")
	assert.LessOrEqual(t, hFuzzy, hScore)
	assert.InDelta(t, vScore/3, hScore, 0.001)
}

func TestPathMatchesWeighLessThanTitleMatches(t *testing.T) {
	inTitle := Candidate{NoteID: "n1", Title: "kubernetes", PathTitle: "root / misc"}
	inPath := Candidate{NoteID: "n2", Title: "misc", PathTitle: "root / kubernetes"}

	titleScore, _ := Score(inTitle, "zzz", []string{"kubernetes"}, false)
	pathScore, _ := Score(inPath, "zzz", []string{"kubernetes"}, false)

	assert.Greater(t, titleScore, pathScore)
}

func TestEmptyFieldsScoreZero(t *testing.T) {
	c := Candidate{NoteID: "n1", Title: "", PathTitle: ""}
	score, fuzzyScore := Score(c, "anything", []string{"anything"}, true)
	assert.Zero(t, score)
	assert.Zero(t, fuzzyScore)
}

func TestContainsWholeWord(t *testing.T) {
	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{"the budget report", "budget", true},
		{"the budget report", "budget report", true},
		{"the budgetary report", "budget", false},
		{"budget", "budget", true},
		{"a-budget-line", "budget", true},
		{"", "budget", false},
		{"budget", "", false},
	}

	for _, tt := range tests {
		if got := containsWholeWord(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("containsWholeWord(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}
