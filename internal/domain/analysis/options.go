package analysis

import (
	"github.com/hexpel/copycatch/pkg/logger"
)

// MetricWeights are the fixed combination weights applied to each
// metric's score when building the composite. The values are hand-tuned
// against reference competitions; override them only with domain input.
type MetricWeights struct {
	Jaccard         float64
	WeightedJaccard float64
	Sequence        float64
	TimeProximity   float64
	TimeDiffDist    float64
}

// DefaultMetricWeights returns the tuned combination weights.
func DefaultMetricWeights() MetricWeights {
	return MetricWeights{
		Jaccard:         1.0,
		WeightedJaccard: 1.5,
		Sequence:        1.2,
		TimeProximity:   1.8,
		TimeDiffDist:    1.3,
	}
}

// Default tuned constants for the orchestrator heuristics.
const (
	// defaultSignificanceZ marks a pair's z-score as suspicious when it
	// falls below this value: the pair solved the challenge markedly
	// closer together than that challenge's typical pairwise spread.
	defaultSignificanceZ = -1.5

	// defaultProximityFallback is the flat factor assigned when close
	// submissions exist despite an empty common-solve set. That input
	// is inconsistent, but it should still register rather than skip.
	defaultProximityFallback = 0.5
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithMetricWeights overrides the fixed combination weights.
func WithMetricWeights(w MetricWeights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithSignificanceThreshold overrides the z-score significance cutoff.
func WithSignificanceThreshold(z float64) Option {
	return func(a *Analyzer) {
		a.significanceZ = z
	}
}

// WithProximityFallbackScore overrides the flat factor used for the
// inconsistent-input branch of the time-proximity heuristic.
func WithProximityFallbackScore(score float64) Option {
	return func(a *Analyzer) {
		a.proximityFallback = score
	}
}

// WithMaxPairResults caps how many ranked pairs a run reports in the
// similar-pairs table. Zero means unlimited. The graph keeps every
// edge that clears the threshold.
func WithMaxPairResults(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxPairResults = n
		}
	}
}

// WithWorkers shards the pair comparison loop across n goroutines.
// The merge is deterministic, so the output is identical to a
// sequential run. n < 1 is ignored.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets a custom logger. Tests pass logger.Nop() to run silently.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}
