package similarity

import (
	"math"

	"github.com/hexpel/copycatch/internal/domain/model"
)

// minSolversForBaseline is the smallest solver count that yields at
// least two pairwise differences; a spread cannot be estimated from one.
const minSolversForBaseline = 3

// ComputeBaselines computes, for every known challenge, the mean and
// population standard deviation of the solve-time difference (seconds)
// across all unordered pairs of its solvers. Challenges with fewer than
// three solvers, or with an effectively zero spread, get no baseline.
func ComputeBaselines(contestants map[int64]*model.Contestant, challenges map[int64]*model.Challenge) map[int64]model.Baseline {
	baselines := make(map[int64]model.Baseline)

	for challID := range challenges {
		times := make([]int64, 0)
		for _, c := range contestants {
			if t, ok := c.SolvedTimed[challID]; ok {
				times = append(times, t)
			}
		}
		if len(times) < minSolversForBaseline {
			continue
		}

		diffs := make([]float64, 0, len(times)*(len(times)-1)/2)
		for i := 0; i < len(times); i++ {
			for j := i + 1; j < len(times); j++ {
				diffs = append(diffs, math.Abs(float64(times[i]-times[j]))/msPerSecond)
			}
		}

		mean, std := meanStd(diffs)
		if std < Epsilon {
			// Near-zero spread makes z-scores numerically meaningless.
			continue
		}
		baselines[challID] = model.Baseline{Mean: mean, Std: std}
	}

	return baselines
}

// meanStd returns the arithmetic mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
