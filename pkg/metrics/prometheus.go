// Package metrics provides Prometheus metrics for the copycatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Analysis metrics - the core of this service
	analysesTotal       prometheus.Counter
	analysisErrors      prometheus.Counter
	analysisDuration    prometheus.Histogram
	pairsCompared       prometheus.Counter
	activeContestants   prometheus.Gauge
	knownChallenges     prometheus.Gauge
	baselinesComputed   prometheus.Gauge
	edgesEmitted        prometheus.Gauge
	analysisWorkerCount prometheus.Gauge

	// Snapshot acquisition metrics
	snapshotFetches     prometheus.Counter
	snapshotFetchErrors prometheus.Counter
	snapshotCacheHits   prometheus.Counter
	snapshotAgeSeconds  prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "copycatch",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analysesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of analysis runs completed",
	})

	m.analysisErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_errors_total",
		Help:      "Total number of analysis runs that failed (e.g. unknown target)",
	})

	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of full analysis run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.pairsCompared = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_compared_total",
		Help:      "Total number of contestant pairs compared across all runs",
	})

	m.activeContestants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_contestants",
		Help:      "Number of contestants retained after normalization in the last run",
	})

	m.knownChallenges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "known_challenges",
		Help:      "Number of known challenges in the last normalized snapshot",
	})

	m.baselinesComputed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "temporal_baselines",
		Help:      "Number of challenges with a usable temporal baseline in the last run",
	})

	m.edgesEmitted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_edges",
		Help:      "Number of graph edges above threshold in the last run",
	})

	m.analysisWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of workers sharding the pair comparison loop",
	})

	m.snapshotFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoreboard",
		Name:      "fetches_total",
		Help:      "Total number of remote scoreboard fetches",
	})

	m.snapshotFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoreboard",
		Name:      "fetch_errors_total",
		Help:      "Total number of failed remote scoreboard fetches",
	})

	m.snapshotCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoreboard",
		Name:      "cache_hits_total",
		Help:      "Total number of snapshot requests served from the local cache",
	})

	m.snapshotAgeSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "scoreboard",
		Name:      "snapshot_age_seconds",
		Help:      "Age of the snapshot used by the most recent analysis",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP error responses by endpoint and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers on the global manager.

// RecordAnalysisRun records a completed analysis run and its duration.
func RecordAnalysisRun(durationMs float64) {
	globalManager.analysesTotal.Inc()
	globalManager.analysisDuration.Observe(durationMs)
}

// RecordAnalysisError records a failed analysis run.
func RecordAnalysisError() {
	globalManager.analysisErrors.Inc()
}

// RecordPairsCompared adds to the total of compared pairs.
func RecordPairsCompared(n int) {
	globalManager.pairsCompared.Add(float64(n))
}

// UpdateActiveContestants sets the retained-contestant gauge.
func UpdateActiveContestants(n int) {
	globalManager.activeContestants.Set(float64(n))
}

// UpdateKnownChallenges sets the known-challenge gauge.
func UpdateKnownChallenges(n int) {
	globalManager.knownChallenges.Set(float64(n))
}

// UpdateBaselinesComputed sets the usable-baseline gauge.
func UpdateBaselinesComputed(n int) {
	globalManager.baselinesComputed.Set(float64(n))
}

// UpdateEdgesEmitted sets the graph-edge gauge.
func UpdateEdgesEmitted(n int) {
	globalManager.edgesEmitted.Set(float64(n))
}

// UpdateAnalysisWorkerCount sets the pair-loop worker gauge.
func UpdateAnalysisWorkerCount(n int) {
	globalManager.analysisWorkerCount.Set(float64(n))
}

// RecordSnapshotFetch records a remote scoreboard fetch.
func RecordSnapshotFetch() {
	globalManager.snapshotFetches.Inc()
}

// RecordSnapshotFetchError records a failed remote fetch.
func RecordSnapshotFetchError() {
	globalManager.snapshotFetchErrors.Inc()
}

// RecordSnapshotCacheHit records a snapshot request served from cache.
func RecordSnapshotCacheHit() {
	globalManager.snapshotCacheHits.Inc()
}

// UpdateSnapshotAge sets the age of the snapshot behind the latest run.
func UpdateSnapshotAge(seconds float64) {
	globalManager.snapshotAgeSeconds.Set(seconds)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
