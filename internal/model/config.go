package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the runtime configuration of compass. Similarity weights and
// thresholds are fixed constants of the uml package and are not part of it.
type Config struct {
	Clustering   ClusteringConfig   `yaml:"clustering" mapstructure:"clustering"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ClusteringConfig controls how cluster statistics are reported
type ClusteringConfig struct {
	MinCorroboratingSubmissions int `yaml:"min_corroborating_submissions" mapstructure:"min_corroborating_submissions"` // 0 uses the engine default
	MaxMatrixSubmissions        int `yaml:"max_matrix_submissions" mapstructure:"max_matrix_submissions"` // 0 disables the similarity matrix
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // submissions indexed in parallel
	MatrixWorkers int `yaml:"matrix_workers" mapstructure:"matrix_workers"` // pairwise comparisons in parallel
}

// RateLimitingConfig throttles submission intake per exercise
type RateLimitingConfig struct {
	SubmissionsPerSecond float64 `yaml:"submissions_per_second" mapstructure:"submissions_per_second"` // 0 disables throttling
	BurstSize            int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the pairwise similarity cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	TopClusters   int  `yaml:"top_clusters" mapstructure:"top_clusters"` // clusters listed in the summary
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "compass-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".compass", "cache")
	}

	return &Config{
		Clustering: ClusteringConfig{
			MinCorroboratingSubmissions: 2,
			MaxMatrixSubmissions:        200,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       runtime.NumCPU(),
			MatrixWorkers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			SubmissionsPerSecond: 0,
			BurstSize:            10,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
			TopClusters:   10,
		},
	}
}
