// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ScoreboardURL is the remote scoreboard endpoint,
	// e.g. "http://127.0.0.1:8080/api/game/7/scoreboard".
	ScoreboardURL string `koanf:"scoreboard_url"`

	// CachePath is where the raw snapshot JSON is cached on disk.
	CachePath string `koanf:"cache_path"`

	// ResultsPath is where the precomputed analysis envelope is persisted.
	ResultsPath string `koanf:"results_path"`

	// CacheMaxAgeSeconds is the snapshot staleness window.
	CacheMaxAgeSeconds int `koanf:"cache_max_age_seconds"`

	// FetchTimeoutSeconds bounds the remote scoreboard request.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// AnalysisWorkers shards the pair comparison loop. 1 runs sequentially.
	AnalysisWorkers int `koanf:"analysis_workers"`

	// MaxPairResults caps the ranked pair table per run. 0 is unlimited.
	MaxPairResults int `koanf:"max_pair_results"`

	// Default analysis parameters, used for precomputation and as
	// fallbacks for on-demand requests that omit fields.
	DefaultMethods         []string `koanf:"default_methods"`
	TimeProximitySeconds   float64  `koanf:"time_proximity_seconds"`
	MinSimilarityThreshold float64  `koanf:"min_similarity_threshold"`
	MinUserScore           float64  `koanf:"min_user_score"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		ScoreboardURL:       "",
		CachePath:           "scoreboard_data.json",
		ResultsPath:         "analysis_results.json",
		CacheMaxAgeSeconds:  300,
		FetchTimeoutSeconds: 10,
		AnalysisWorkers:     runtime.NumCPU(),
		MaxPairResults:      0,
		DefaultMethods: []string{
			"jaccard", "weighted_jaccard", "sequence", "time_proximity", "time_diff_dist",
		},
		TimeProximitySeconds:   300,
		MinSimilarityThreshold: 0,
		MinUserScore:           0,
	}
}
