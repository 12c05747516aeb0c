package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RADAR_CONFIG is set
//  3. env (prefix RADAR_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RADAR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RADAR_ADDR, RADAR_SCOREBOARD_URL, ...
	// Map env keys like RADAR_CACHE_MAX_AGE_SECONDS -> cache_max_age_seconds,
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("RADAR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "radar_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CacheMaxAgeSeconds <= 0:
		return fmt.Errorf("%w: cache_max_age_seconds must be positive", ErrInvalidConfig)
	case c.TimeProximitySeconds <= 0:
		return fmt.Errorf("%w: time_proximity_seconds must be positive", ErrInvalidConfig)
	case c.MinSimilarityThreshold < 0 || c.MinSimilarityThreshold > 1:
		return fmt.Errorf("%w: min_similarity_threshold must be in [0,1]", ErrInvalidConfig)
	case c.AnalysisWorkers < 1:
		return fmt.Errorf("%w: analysis_workers must be at least 1", ErrInvalidConfig)
	case c.MaxPairResults < 0:
		return fmt.Errorf("%w: max_pair_results must not be negative", ErrInvalidConfig)
	}
	return nil
}
