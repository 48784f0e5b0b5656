// Package perfmon collects per-backend search timing samples. It keeps a
// bounded window of recent samples per backend so memory stays constant no
// matter how long the process runs.
package perfmon

import (
	"sync"
	"time"
)

// DefaultMaxSamples is the per-backend sample window size.
const DefaultMaxSamples = 1000

// Sample is one recorded search execution.
type Sample struct {
	Backend     string        `json:"backend"`
	Took        time.Duration `json:"took"`
	ResultCount int           `json:"result_count"`
	Timestamp   time.Time     `json:"timestamp"`
}

// BackendReport summarizes one backend's recorded samples.
type BackendReport struct {
	Backend     string        `json:"backend"`
	SampleCount int           `json:"sample_count"`
	AverageTook time.Duration `json:"average_took"`
	MinTook     time.Duration `json:"min_took"`
	MaxTook     time.Duration `json:"max_took"`
}

// Comparison relates two backends' average latencies.
type Comparison struct {
	Reports []BackendReport `json:"reports"`
	// SpeedupRatio is first average divided by second average; zero when
	// either backend has no samples.
	SpeedupRatio float64 `json:"speedup_ratio"`
}

// Monitor records and aggregates samples. Safe for concurrent use.
type Monitor struct {
	mu         sync.RWMutex
	maxSamples int
	samples    map[string][]Sample
}

// NewMonitor creates a monitor keeping at most maxSamples per backend. A
// non-positive maxSamples selects the default window.
func NewMonitor(maxSamples int) *Monitor {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Monitor{
		maxSamples: maxSamples,
		samples:    make(map[string][]Sample),
	}
}

// Record stores one sample, evicting the oldest once the window is full.
func (m *Monitor) Record(backend string, took time.Duration, resultCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := append(m.samples[backend], Sample{
		Backend:     backend,
		Took:        took,
		ResultCount: resultCount,
		Timestamp:   time.Now(),
	})
	if len(window) > m.maxSamples {
		window = window[len(window)-m.maxSamples:]
	}
	m.samples[backend] = window
}

// RecentSamples returns up to n most recent samples for a backend, newest
// last.
func (m *Monitor) RecentSamples(backend string, n int) []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	window := m.samples[backend]
	if n <= 0 || n > len(window) {
		n = len(window)
	}
	out := make([]Sample, n)
	copy(out, window[len(window)-n:])
	return out
}

// Report summarizes one backend. A backend with no samples reports zeros.
func (m *Monitor) Report(backend string) BackendReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reportLocked(backend)
}

func (m *Monitor) reportLocked(backend string) BackendReport {
	report := BackendReport{Backend: backend}
	window := m.samples[backend]
	if len(window) == 0 {
		return report
	}

	var total time.Duration
	report.MinTook = window[0].Took
	for _, s := range window {
		total += s.Took
		if s.Took < report.MinTook {
			report.MinTook = s.Took
		}
		if s.Took > report.MaxTook {
			report.MaxTook = s.Took
		}
	}
	report.SampleCount = len(window)
	report.AverageTook = total / time.Duration(len(window))
	return report
}

// Compare reports both backends and their average-latency ratio.
func (m *Monitor) Compare(first, second string) Comparison {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a := m.reportLocked(first)
	b := m.reportLocked(second)
	c := Comparison{Reports: []BackendReport{a, b}}
	if a.AverageTook > 0 && b.AverageTook > 0 {
		c.SpeedupRatio = float64(a.AverageTook) / float64(b.AverageTook)
	}
	return c
}

// Backends returns the backend names with recorded samples.
func (m *Monitor) Backends() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.samples))
	for name := range m.samples {
		names = append(names, name)
	}
	return names
}

// Reset discards all recorded samples.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = make(map[string][]Sample)
}
