// Package config defines the runtime settings of the search service: which
// backend serves queries, index maintenance limits, and the shadow-comparison
// sampling controls.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// BackendMemory selects the graph-traversal engine.
	BackendMemory = "memory"
	// BackendSQLite selects the native index engine.
	BackendSQLite = "sqlite"
)

// Memory limit bounds for the native index cache, in bytes.
const (
	MinMemoryLimit = 1 << 20 // 1 MiB
	MaxMemoryLimit = 1 << 30 // 1 GiB
)

// Batch size bounds for index rebuild passes.
const (
	MinBatchSize = 10
	MaxBatchSize = 1000
)

// Settings holds every tunable of the service. Zero values are filled by
// ApplyDefaults; out-of-range values are rejected by Validate, never
// silently clamped.
type Settings struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	// DatabasePath locates the SQLite file holding notes and the derived
	// search index.
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// DefaultBackend serves queries that carry no backend override.
	DefaultBackend string `yaml:"default_backend" json:"default_backend"`

	// SQLiteEnabled gates the native backend entirely. When false every
	// query runs on the memory backend regardless of overrides.
	SQLiteEnabled bool `yaml:"sqlite_enabled" json:"sqlite_enabled"`

	// AutoRebuild rebuilds an empty native index at startup.
	AutoRebuild bool `yaml:"auto_rebuild" json:"auto_rebuild"`

	// MaxMemoryBytes caps the native index page cache.
	MaxMemoryBytes int64 `yaml:"max_memory_bytes" json:"max_memory_bytes"`

	// RebuildBatchSize is how many notes one rebuild pass reads.
	RebuildBatchSize int `yaml:"rebuild_batch_size" json:"rebuild_batch_size"`

	// SearchResultLimit is the default number of ranked hits returned.
	SearchResultLimit int `yaml:"search_result_limit" json:"search_result_limit"`

	// LogPerformance logs per-query timings.
	LogPerformance bool `yaml:"log_performance" json:"log_performance"`

	// ABTestingEnabled switches shadow comparisons on.
	ABTestingEnabled bool `yaml:"ab_testing_enabled" json:"ab_testing_enabled"`

	// ABSampleRate is the fraction of queries shadow-compared, in [0, 1].
	ABSampleRate float64 `yaml:"ab_sample_rate" json:"ab_sample_rate"`
}

// ApplyDefaults fills unset fields with working values.
func (s *Settings) ApplyDefaults() {
	if s.ListenAddr == "" {
		s.ListenAddr = ":8080"
	}
	if s.DatabasePath == "" {
		s.DatabasePath = "notes.db"
	}
	if s.DefaultBackend == "" {
		s.DefaultBackend = BackendMemory
	}
	if s.MaxMemoryBytes == 0 {
		s.MaxMemoryBytes = 64 << 20
	}
	if s.RebuildBatchSize == 0 {
		s.RebuildBatchSize = 100
	}
	if s.SearchResultLimit == 0 {
		s.SearchResultLimit = 50
	}
}

// Validate returns every constraint violation as a human-readable message.
// An empty slice means the settings are usable.
func (s *Settings) Validate() []string {
	var conflicts []string

	if s.DefaultBackend != BackendMemory && s.DefaultBackend != BackendSQLite {
		conflicts = append(conflicts, fmt.Sprintf(
			"default_backend must be %q or %q, got %q", BackendMemory, BackendSQLite, s.DefaultBackend))
	}
	if s.DefaultBackend == BackendSQLite && !s.SQLiteEnabled {
		conflicts = append(conflicts, "default_backend is sqlite but sqlite_enabled is false")
	}
	if s.MaxMemoryBytes < MinMemoryLimit || s.MaxMemoryBytes > MaxMemoryLimit {
		conflicts = append(conflicts, fmt.Sprintf(
			"max_memory_bytes must be between %d and %d, got %d", MinMemoryLimit, MaxMemoryLimit, s.MaxMemoryBytes))
	}
	if s.RebuildBatchSize < MinBatchSize || s.RebuildBatchSize > MaxBatchSize {
		conflicts = append(conflicts, fmt.Sprintf(
			"rebuild_batch_size must be between %d and %d, got %d", MinBatchSize, MaxBatchSize, s.RebuildBatchSize))
	}
	if s.SearchResultLimit <= 0 {
		conflicts = append(conflicts, fmt.Sprintf(
			"search_result_limit must be positive, got %d", s.SearchResultLimit))
	}
	if s.ABSampleRate < 0 || s.ABSampleRate > 1 {
		conflicts = append(conflicts, fmt.Sprintf(
			"ab_sample_rate must be between 0 and 1, got %g", s.ABSampleRate))
	}

	return conflicts
}

// Load reads settings from a YAML file, applies defaults and validates. A
// missing file yields pure defaults.
func Load(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return s, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	s.ApplyDefaults()
	if conflicts := s.Validate(); len(conflicts) > 0 {
		return s, fmt.Errorf("invalid config %s: %v", path, conflicts)
	}
	return s, nil
}

// Save writes settings as YAML.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
