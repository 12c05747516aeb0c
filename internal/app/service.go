// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hexpel/copycatch/internal/adapters/results"
	"github.com/hexpel/copycatch/internal/adapters/scoreboard"
	"github.com/hexpel/copycatch/internal/domain/analysis"
	"github.com/hexpel/copycatch/internal/domain/normalize"
	"github.com/hexpel/copycatch/pkg/logger"
	"github.com/hexpel/copycatch/pkg/metrics"
)

// Service implements the API dependencies for the collusion radar.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     scoreboard.Source
	store      *results.Store
	normalizer *normalize.Normalizer
	analyzer   *analysis.Analyzer

	// Configuration
	scoreboardURL  string
	cachePath      string
	resultsPath    string
	cacheMaxAge    time.Duration
	fetchTimeout   time.Duration
	workerCount    int
	maxPairResults int
	defaults       analysis.Params

	// State
	started          bool
	lastAnalysisTime time.Time
	lastBloodBonus   int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScoreboardURL sets the upstream scoreboard endpoint.
func WithScoreboardURL(url string) Option {
	return func(s *Service) {
		s.scoreboardURL = url
	}
}

// WithCachePath sets the snapshot cache file location.
func WithCachePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.cachePath = path
		}
	}
}

// WithResultsPath sets the persisted analysis result file location.
func WithResultsPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.resultsPath = path
		}
	}
}

// WithCacheMaxAge sets how long a cached snapshot stays fresh.
func WithCacheMaxAge(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cacheMaxAge = d
		}
	}
}

// WithFetchTimeout sets the upstream HTTP timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithWorkerCount sets the number of pair-comparison workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxPairResults caps the ranked pair table per run. Zero keeps
// every pair.
func WithMaxPairResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPairResults = n
		}
	}
}

// WithDefaultParams sets the default analysis parameter set used by
// scheduled precomputation and as the base for on-demand requests.
func WithDefaultParams(p analysis.Params) Option {
	return func(s *Service) {
		s.defaults = p
	}
}

// WithSource overrides the snapshot source. Primarily for tests.
func WithSource(src scoreboard.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cachePath:    "scoreboard_data.json",
		resultsPath:  "analysis_results.json",
		cacheMaxAge:  5 * time.Minute,
		fetchTimeout: 10 * time.Second,
		workerCount:  runtime.NumCPU(),
		defaults: analysis.Params{
			Methods:              analysis.DefaultMethods(),
			TimeProximitySeconds: 300,
		},
		logger: nil, // Defaults to a no-op logger when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}

	s.logger.Info(ctx, "starting collusion radar service...")

	if s.source == nil {
		s.source = scoreboard.New(s.scoreboardURL,
			scoreboard.WithCachePath(s.cachePath),
			scoreboard.WithMaxAge(s.cacheMaxAge),
			scoreboard.WithFetchTimeout(s.fetchTimeout),
			scoreboard.WithLogger(s.logger.Named("scoreboard")),
		)
	}
	s.store = results.New(s.resultsPath)
	s.normalizer = normalize.New(
		normalize.WithLogger(s.logger.Named("normalize")),
	)
	s.analyzer = analysis.New(
		analysis.WithWorkers(s.workerCount),
		analysis.WithMaxPairResults(s.maxPairResults),
		analysis.WithLogger(s.logger.Named("analysis")),
	)

	s.started = true
	s.logger.Info(ctx, "collusion radar service started",
		logger.Int("workers", s.workerCount),
		logger.String("resultsPath", s.resultsPath),
	)
	metrics.UpdateAnalysisWorkerCount(s.workerCount)

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "collusion radar service stopped")
}

// RefreshAndAnalyze forces a fresh scoreboard fetch and, on success,
// recomputes and persists the default analysis. It returns the capture
// time of the fetched snapshot and whether the precomputation was
// stored.
func (s *Service) RefreshAndAnalyze(ctx context.Context) (time.Time, bool, error) {
	snap, fetchedAt, err := s.source.Snapshot(ctx, true)
	if err != nil {
		metrics.RecordAnalysisError()
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	s.mu.Lock()
	s.lastBloodBonus = snap.BloodBonus
	params := s.defaults
	s.mu.Unlock()

	norm := s.normalizer.Normalize(ctx, snap, params.MinUserScore)
	res := s.analyzer.Run(ctx, norm.Contestants, norm.RarityWeights, norm.Challenges, params)
	metrics.UpdateActiveContestants(len(norm.Contestants))
	metrics.UpdateKnownChallenges(len(norm.Challenges))

	env := results.NewEnvelope(res, params)
	if err := s.store.Save(ctx, env); err != nil {
		s.logger.Warn(ctx, "failed to persist analysis results",
			logger.Error(err),
		)
		return fetchedAt, false, nil
	}

	s.mu.Lock()
	s.lastAnalysisTime = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info(ctx, "default analysis precomputed",
		logger.String("runID", res.RunID),
		logger.Int("pairs", len(res.SimilarPairs)),
		logger.Int("edges", len(res.NetworkEdges)),
	)
	return fetchedAt, true, nil
}

// Status reports data and analysis freshness for the status endpoint.
func (s *Service) Status(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defaults := s.defaults
	lastAnalysis := s.lastAnalysisTime
	bloodBonus := s.lastBloodBonus
	resultsPath := s.resultsPath
	cachePath := s.cachePath
	url := s.scoreboardURL
	s.mu.RUnlock()

	fetchTime := "N/A"
	sourceInfo := fmt.Sprintf("%s (no cached snapshot)", url)
	if info, ok := s.source.(scoreboard.CacheInfo); ok {
		if at, found := info.CachedAt(); found {
			fetchTime = at.UTC().Format(time.RFC3339)
			sourceInfo = fmt.Sprintf("%s (cache: %s)", url, cachePath)
			metrics.UpdateSnapshotAge(time.Since(at).Seconds())
		}
	}

	analysisTime := "N/A"
	analysisInfo := "no precomputed analysis"
	if !lastAnalysis.IsZero() {
		analysisTime = lastAnalysis.Format(time.RFC3339)
		analysisInfo = resultsPath
	} else if env, err := s.store.Load(ctx); err == nil {
		analysisTime = env.CalculationTimeISO
		analysisInfo = resultsPath
	}

	return map[string]interface{}{
		"last_data_fetch_time_iso":     fetchTime,
		"scoreboard_source_info":       sourceInfo,
		"last_analysis_time_iso":       analysisTime,
		"analysis_source_info":         analysisInfo,
		"blood_bonus":                  bloodBonus,
		"default_analysis_params_used": defaults,
		"analysis_worker_count":        s.workerCount,
	}
}

// CachedResult loads the most recently persisted default analysis.
func (s *Service) CachedResult(ctx context.Context) (*results.Envelope, error) {
	env, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Analyze runs an on-demand analysis with the given overrides applied
// on top of the configured defaults. The snapshot cache is honored, so
// a recent snapshot is reused without hitting the upstream. The
// returned envelope is not persisted.
func (s *Service) Analyze(ctx context.Context, patch analysis.ParamsPatch) (*results.Envelope, time.Time, error) {
	s.mu.RLock()
	params := s.defaults.Merge(patch)
	s.mu.RUnlock()

	snap, fetchedAt, err := s.source.Snapshot(ctx, false)
	if err != nil {
		metrics.RecordAnalysisError()
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	s.mu.Lock()
	s.lastBloodBonus = snap.BloodBonus
	s.mu.Unlock()

	norm := s.normalizer.Normalize(ctx, snap, params.MinUserScore)
	res := s.analyzer.Run(ctx, norm.Contestants, norm.RarityWeights, norm.Challenges, params)
	metrics.UpdateActiveContestants(len(norm.Contestants))
	metrics.UpdateKnownChallenges(len(norm.Challenges))

	return results.NewEnvelope(res, params), fetchedAt, nil
}

// DefaultParams returns a copy of the configured default parameter set.
func (s *Service) DefaultParams() analysis.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
	}
	if !s.lastAnalysisTime.IsZero() {
		stats["lastAnalysisTime"] = s.lastAnalysisTime.Format(time.RFC3339)
	}
	if s.started {
		metrics.UpdateAnalysisWorkerCount(s.workerCount)
	}
	return stats
}
