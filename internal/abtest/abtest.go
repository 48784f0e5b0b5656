// Package abtest runs shadow comparisons between the two search backends on
// a sampled fraction of live queries. Comparisons judge result parity by ID
// set equality and collect relative latency, feeding the decision of which
// backend should be the default.
package abtest

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/notabase/search/internal/errors"
	"github.com/notabase/search/services"
)

const (
	// defaultMaxResults bounds the retained comparison history.
	defaultMaxResults = 500

	// tieBand is the relative latency band inside which neither backend is
	// declared the winner. A backend must be more than 20% faster to win.
	tieBand = 0.20
)

// ComparisonResult is the outcome of one shadow comparison.
type ComparisonResult struct {
	ID           string        `json:"id"`
	Query        string        `json:"query"`
	Operator     string        `json:"operator"`
	Timestamp    time.Time     `json:"timestamp"`
	MemoryTook   time.Duration `json:"memory_took"`
	SQLiteTook   time.Duration `json:"sqlite_took"`
	MemoryCount  int           `json:"memory_count"`
	SQLiteCount  int           `json:"sqlite_count"`
	ResultsMatch bool          `json:"results_match"`
	// Speedup is memory latency divided by SQLite latency; above 1 the
	// SQLite backend was faster.
	Speedup float64 `json:"speedup"`
	Winner  string  `json:"winner"`
}

// Summary aggregates the retained comparison history.
type Summary struct {
	TotalComparisons int     `json:"total_comparisons"`
	Matches          int     `json:"matches"`
	Mismatches       int     `json:"mismatches"`
	MismatchRate     float64 `json:"mismatch_rate"`
	AverageSpeedup   float64 `json:"average_speedup"`
	SQLiteWins       int     `json:"sqlite_wins"`
	MemoryWins       int     `json:"memory_wins"`
	Ties             int     `json:"ties"`
	Recommendation   string  `json:"recommendation"`
}

// Service samples live queries and runs both backends in parallel. Safe for
// concurrent use.
type Service struct {
	memory services.Backend
	sqlite services.Backend

	mu         sync.Mutex
	enabled    bool
	sampleRate float64
	rng        *rand.Rand
	results    []ComparisonResult
	maxResults int
}

// NewService creates a harness over the two backends. Sampling starts
// disabled; enable it with SetEnabled and tune the rate with SetSampleRate.
func NewService(memory, sqlite services.Backend) *Service {
	return &Service{
		memory:     memory,
		sqlite:     sqlite,
		sampleRate: 0.1,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		maxResults: defaultMaxResults,
	}
}

// SetEnabled switches sampling on or off.
func (s *Service) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Enabled reports whether sampling is active.
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetSampleRate sets the fraction of queries shadowed, in [0, 1].
func (s *Service) SetSampleRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return apperrors.NewValidationError("sample_rate",
			fmt.Sprintf("must be between 0 and 1, got %g", rate))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleRate = rate
	return nil
}

// SampleRate returns the current sampling fraction.
func (s *Service) SampleRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// MaybeRunComparison shadows the query in the background when sampling
// selects it. The caller's search path never waits on, or fails from, the
// comparison.
func (s *Service) MaybeRunComparison(query services.SearchQuery) {
	s.mu.Lock()
	selected := s.enabled && s.rng.Float64() < s.sampleRate
	s.mu.Unlock()
	if !selected {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("comparison for query %q panicked: %v", query.Text, r)
			}
		}()
		if _, err := s.RunComparison(query); err != nil {
			log.Printf("comparison for query %q failed: %v", query.Text, err)
		}
	}()
}

// RunComparison executes the query on both backends in parallel and records
// the outcome.
func (s *Service) RunComparison(query services.SearchQuery) (ComparisonResult, error) {
	var (
		memorySet, sqliteSet   services.IDSet
		memoryTook, sqliteTook time.Duration
	)

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		start := time.Now()
		set, err := s.memory.Search(query)
		memoryTook = time.Since(start)
		if err != nil {
			return fmt.Errorf("memory backend: %w", err)
		}
		memorySet = set
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		set, err := s.sqlite.Search(query)
		sqliteTook = time.Since(start)
		if err != nil {
			return fmt.Errorf("sqlite backend: %w", err)
		}
		sqliteSet = set
		return nil
	})
	if err := g.Wait(); err != nil {
		return ComparisonResult{}, err
	}

	result := ComparisonResult{
		ID:           uuid.New().String(),
		Query:        query.Text,
		Operator:     query.Operator.String(),
		Timestamp:    time.Now(),
		MemoryTook:   memoryTook,
		SQLiteTook:   sqliteTook,
		MemoryCount:  len(memorySet),
		SQLiteCount:  len(sqliteSet),
		ResultsMatch: memorySet.Equal(sqliteSet),
	}
	if sqliteTook > 0 {
		result.Speedup = float64(memoryTook) / float64(sqliteTook)
	}
	result.Winner = pickWinner(result.Speedup)

	s.record(result)
	return result, nil
}

// pickWinner declares a backend the winner only when it beats the other by
// more than the tie band.
func pickWinner(speedup float64) string {
	switch {
	case speedup > 1+tieBand:
		return "sqlite"
	case speedup > 0 && speedup < 1-tieBand:
		return "memory"
	default:
		return "tie"
	}
}

func (s *Service) record(result ComparisonResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
	if len(s.results) > s.maxResults {
		s.results = s.results[len(s.results)-s.maxResults:]
	}
	if !result.ResultsMatch {
		log.Printf("backend result mismatch: query=%q operator=%s memory=%d sqlite=%d",
			result.Query, result.Operator, result.MemoryCount, result.SQLiteCount)
	}
}

// RecentResults returns up to n most recent comparisons, newest last.
func (s *Service) RecentResults(n int) []ComparisonResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.results) {
		n = len(s.results)
	}
	out := make([]ComparisonResult, n)
	copy(out, s.results[len(s.results)-n:])
	return out
}

// Summarize aggregates the retained history into a recommendation.
func (s *Service) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{TotalComparisons: len(s.results)}
	if len(s.results) == 0 {
		summary.Recommendation = "no comparisons recorded yet"
		return summary
	}

	var speedupSum float64
	for _, r := range s.results {
		if r.ResultsMatch {
			summary.Matches++
		} else {
			summary.Mismatches++
		}
		speedupSum += r.Speedup
		switch r.Winner {
		case "sqlite":
			summary.SQLiteWins++
		case "memory":
			summary.MemoryWins++
		default:
			summary.Ties++
		}
	}
	summary.MismatchRate = float64(summary.Mismatches) / float64(summary.TotalComparisons)
	summary.AverageSpeedup = speedupSum / float64(summary.TotalComparisons)

	switch {
	case summary.MismatchRate > 0.01:
		summary.Recommendation = "investigate result mismatches before switching backends"
	case summary.SQLiteWins > summary.MemoryWins*2:
		summary.Recommendation = "sqlite backend is consistently faster; consider making it the default"
	case summary.MemoryWins > summary.SQLiteWins*2:
		summary.Recommendation = "memory backend is consistently faster; keep it as the default"
	default:
		summary.Recommendation = "backends perform similarly; either default is reasonable"
	}
	return summary
}

// Reset discards the retained comparison history.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
}
