// Package analysis orchestrates the pairwise similarity computation:
// candidate pair selection, per-pair metric evaluation, composite
// scoring, and graph assembly.
package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hexpel/copycatch/internal/domain/model"
	"github.com/hexpel/copycatch/internal/domain/similarity"
	"github.com/hexpel/copycatch/pkg/logger"
	"github.com/hexpel/copycatch/pkg/metrics"
)

// Method names accepted in Params.Methods.
const (
	MethodJaccard         = "jaccard"
	MethodWeightedJaccard = "weighted_jaccard"
	MethodSequence        = "sequence"
	MethodTimeProximity   = "time_proximity"
	MethodTimeDiffDist    = "time_diff_dist"
)

// Params controls one analysis run.
type Params struct {
	Methods                []string `json:"methods"`
	TimeProximitySeconds   float64  `json:"time_proximity_seconds"`
	MinSimilarityThreshold float64  `json:"min_similarity_threshold"`

	// MinUserScore is applied during normalization, before the
	// orchestrator runs; it is carried here so the persisted envelope
	// records the complete parameter set.
	MinUserScore float64 `json:"min_user_score"`

	TargetUsername string `json:"target_username,omitempty"`
}

// DefaultMethods returns every supported metric name, in the order
// they are reported.
func DefaultMethods() []string {
	return []string{
		MethodJaccard,
		MethodWeightedJaccard,
		MethodSequence,
		MethodTimeProximity,
		MethodTimeDiffDist,
	}
}

// HasMethod reports whether a metric was requested.
func (p Params) HasMethod(name string) bool {
	for _, m := range p.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Analyzer runs the pairwise similarity computation. It is safe for
// concurrent use: every run reads only its own immutable inputs.
type Analyzer struct {
	weights           MetricWeights
	significanceZ     float64
	proximityFallback float64
	workers           int
	maxPairResults    int
	log               logger.Logger
}

// New creates an Analyzer with configuration options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		weights:           DefaultMetricWeights(),
		significanceZ:     defaultSignificanceZ,
		proximityFallback: defaultProximityFallback,
		workers:           1,
		log:               logger.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// pair is a canonically ordered candidate pair (A < B by contestant id).
type pair struct {
	a, b int64
}

// Run executes one analysis over the normalized model. It either
// completes with a full result or fails outright (unknown target)
// before any pair computation.
func (a *Analyzer) Run(ctx context.Context, contestants map[int64]*model.Contestant, rarityWeights map[int64]float64, challenges map[int64]*model.Challenge, params Params) *Result {
	start := time.Now()
	runID := uuid.NewString()

	res := &Result{
		SimilarPairs: []PairResult{},
		NetworkNodes: []Node{},
		NetworkEdges: []Edge{},
		RunID:        runID,
	}

	if len(contestants) == 0 {
		a.log.Warn(ctx, "no contestant data; nothing to analyze", logger.String("run_id", runID))
		return res
	}

	a.log.Info(ctx, "analysis run starting",
		logger.String("run_id", runID),
		logger.Int("contestants", len(contestants)),
		logger.Any("methods", params.Methods),
	)

	ids := sortedContestantIDs(contestants)

	for _, id := range ids {
		c := contestants[id]
		res.NetworkNodes = append(res.NetworkNodes, Node{
			ID:             c.Name,
			UserIDInternal: c.ID,
			Score:          c.TotalScore,
			SolvedCount:    len(c.SolvedSet),
		})
	}

	var baselines map[int64]model.Baseline
	if params.HasMethod(MethodTimeDiffDist) {
		baselines = similarity.ComputeBaselines(contestants, challenges)
		metrics.UpdateBaselinesComputed(len(baselines))
		a.log.Info(ctx, "temporal baselines precomputed",
			logger.String("run_id", runID),
			logger.Int("baselines", len(baselines)),
		)
	}

	pairs, err := a.selectPairs(contestants, ids, params)
	if err != nil {
		res.Error = err.Error()
		metrics.RecordAnalysisError()
		a.log.Warn(ctx, "analysis run failed", logger.String("run_id", runID), logger.Error(err))
		return res
	}
	if len(pairs) == 0 {
		a.log.Info(ctx, "no candidate pairs to compare", logger.String("run_id", runID))
		return res
	}

	outcomes := a.comparePairs(ctx, pairs, contestants, rarityWeights, challenges, baselines, params)

	for _, out := range outcomes {
		res.SimilarPairs = append(res.SimilarPairs, out.pair)
		if out.composite >= params.MinSimilarityThreshold {
			res.NetworkEdges = append(res.NetworkEdges, out.edge())
		}
	}

	sort.SliceStable(res.SimilarPairs, func(i, j int) bool {
		return res.SimilarPairs[i].OverallSimilarityHeuristic > res.SimilarPairs[j].OverallSimilarityHeuristic
	})
	if a.maxPairResults > 0 && len(res.SimilarPairs) > a.maxPairResults {
		res.SimilarPairs = res.SimilarPairs[:a.maxPairResults]
	}

	metrics.RecordPairsCompared(len(pairs))
	metrics.UpdateEdgesEmitted(len(res.NetworkEdges))
	metrics.RecordAnalysisRun(float64(time.Since(start).Milliseconds()))

	a.log.Info(ctx, "analysis run complete",
		logger.String("run_id", runID),
		logger.Int("pairs", len(pairs)),
		logger.Int("edges", len(res.NetworkEdges)),
		logger.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return res
}

// selectPairs builds the canonical candidate pair list: target × rest
// when a target is named, otherwise all unordered pairs.
func (a *Analyzer) selectPairs(contestants map[int64]*model.Contestant, ids []int64, params Params) ([]pair, error) {
	if params.TargetUsername != "" {
		var targetID int64
		found := false
		for _, id := range ids {
			if contestants[id].Name == params.TargetUsername {
				targetID = id
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, params.TargetUsername)
		}

		pairs := make([]pair, 0, len(ids)-1)
		for _, other := range ids {
			if other == targetID {
				continue
			}
			pairs = append(pairs, canonical(targetID, other))
		}
		return pairs, nil
	}

	pairs := make([]pair, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, pair{a: ids[i], b: ids[j]})
		}
	}
	return pairs, nil
}

// outcome couples a pair result with its unrounded composite, which the
// edge threshold is checked against.
type outcome struct {
	pair      PairResult
	composite float64
	tpCount   Score
}

func (o outcome) edge() Edge {
	toScore := func(v *float64) Score {
		if v == nil {
			return UndefinedScore()
		}
		return DefinedScore(*v)
	}
	return Edge{
		Source: o.pair.PairNames[0],
		Target: o.pair.PairNames[1],
		Weight: similarity.Round3(o.composite),
		MetricsSummary: MetricsSummary{
			Jaccard:            toScore(o.pair.Jaccard),
			WeightedJaccard:    toScore(o.pair.WeightedJaccard),
			SequenceSimilarity: toScore(o.pair.SequenceSimilarity),
			TimeProximityCount: o.tpCount,
		},
	}
}

// comparePairs evaluates every candidate pair, sharded across the
// configured worker count. Outcomes land at their pair's index, so the
// merged result is identical to a sequential run.
func (a *Analyzer) comparePairs(ctx context.Context, pairs []pair, contestants map[int64]*model.Contestant, rarityWeights map[int64]float64, challenges map[int64]*model.Challenge, baselines map[int64]model.Baseline, params Params) []outcome {
	outcomes := make([]outcome, len(pairs))

	workers := a.workers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	metrics.UpdateAnalysisWorkerCount(workers)

	if workers <= 1 {
		for i, p := range pairs {
			outcomes[i] = a.comparePair(contestants[p.a], contestants[p.b], rarityWeights, challenges, baselines, params)
		}
		return outcomes
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				p := pairs[i]
				outcomes[i] = a.comparePair(contestants[p.a], contestants[p.b], rarityWeights, challenges, baselines, params)
			}
		}()
	}
	for i := range pairs {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return outcomes
}

// factor is one (score, weight) contribution to the composite.
type factor struct {
	score  float64
	weight float64
}

// comparePair evaluates all requested metrics for one pair.
func (a *Analyzer) comparePair(c1, c2 *model.Contestant, rarityWeights map[int64]float64, challenges map[int64]*model.Challenge, baselines map[int64]model.Baseline, params Params) outcome {
	out := outcome{
		pair: PairResult{
			PairNames: [2]string{c1.Name, c2.Name},
			PairIDs:   [2]int64{c1.ID, c2.ID},
		},
		tpCount: UndefinedScore(),
	}

	factors := make([]factor, 0, 5)
	common := similarity.CommonChallenges(c1, c2)

	if params.HasMethod(MethodJaccard) {
		score := similarity.Jaccard(c1.SolvedSet, c2.SolvedSet)
		rounded := similarity.Round3(score)
		out.pair.Jaccard = &rounded
		factors = append(factors, factor{score: score, weight: a.weights.Jaccard})
	}

	if params.HasMethod(MethodWeightedJaccard) {
		score := similarity.WeightedJaccard(c1.SolvedSet, c2.SolvedSet, rarityWeights)
		rounded := similarity.Round3(score)
		out.pair.WeightedJaccard = &rounded
		factors = append(factors, factor{score: score, weight: a.weights.WeightedJaccard})
	}

	if params.HasMethod(MethodSequence) {
		score := similarity.SequenceRatio(c1.SolvedSequence, c2.SolvedSequence)
		rounded := similarity.Round3(score)
		out.pair.SequenceSimilarity = &rounded
		factors = append(factors, factor{score: score, weight: a.weights.Sequence})
	}

	if params.HasMethod(MethodTimeProximity) {
		details := similarity.TimeProximity(c1, c2, params.TimeProximitySeconds)
		out.pair.TimeProximity = &ProximityReport{
			Count:            len(details),
			ThresholdSeconds: params.TimeProximitySeconds,
			Details:          details,
		}
		out.tpCount = DefinedScore(float64(len(details)))

		if len(common) > 0 {
			score := heuristicRatio(len(details), len(common))
			factors = append(factors, factor{score: score, weight: a.weights.TimeProximity})
		} else if len(details) > 0 {
			factors = append(factors, factor{score: a.proximityFallback, weight: a.weights.TimeProximity})
		}
	}

	var anomalies []AnomalyEntry
	if params.HasMethod(MethodTimeDiffDist) {
		significant := 0
		anomalies = make([]AnomalyEntry, 0, len(common))

		for _, id := range common {
			base, ok := baselines[id]
			if !ok {
				// No usable baseline: the challenge contributes neither
				// a detail entry nor a significance count.
				continue
			}
			pairDiff := math.Abs(float64(c1.SolvedTimed[id]-c2.SolvedTimed[id])) / 1000.0

			entry := AnomalyEntry{
				ChallengeID:     id,
				Title:           challengeTitle(challenges, id),
				PairDiffSeconds: similarity.Round2(pairDiff),
				MeanDiffSeconds: similarity.Round2(base.Mean),
				StdDiffSeconds:  similarity.Round2(base.Std),
			}
			if z, defined := similarity.ZScore(pairDiff, base); defined {
				rounded := similarity.Round3(z)
				entry.ZScore = DefinedScore(rounded)
				if rounded < a.significanceZ {
					significant++
				}
			} else {
				entry.ZScore = UndefinedScore()
			}
			anomalies = append(anomalies, entry)
		}

		out.pair.TimeDistribution = anomalies

		if len(common) > 0 {
			score := heuristicRatio(significant, len(common))
			factors = append(factors, factor{score: score, weight: a.weights.TimeDiffDist})
		}
	}

	out.pair.CommonChallengeTimeline = buildTimeline(c1, c2, common, challenges, anomalies)

	var weightedSum, weightTotal float64
	for _, f := range factors {
		weightedSum += f.score * f.weight
		weightTotal += f.weight
	}
	if weightTotal > 0 {
		out.composite = weightedSum / weightTotal
	}
	out.pair.OverallSimilarityHeuristic = similarity.Round3(out.composite)

	return out
}

// heuristicRatio maps a hit count to [0,1] against half the common
// solve count (floored at one). Both per-pair heuristics use it.
func heuristicRatio(hits, commonCount int) float64 {
	denom := math.Max(1, float64(commonCount)/2.0)
	return math.Min(1.0, float64(hits)/denom)
}

// buildTimeline assembles the shared solve timeline, sorted ascending
// by the first contestant's solve time.
func buildTimeline(c1, c2 *model.Contestant, common []int64, challenges map[int64]*model.Challenge, anomalies []AnomalyEntry) []TimelineEntry {
	timeline := make([]TimelineEntry, 0, len(common))
	for _, id := range common {
		t1, ok1 := c1.SolvedTimed[id]
		t2, ok2 := c2.SolvedTimed[id]
		if !ok1 || !ok2 {
			continue
		}
		entry := TimelineEntry{
			ID:          id,
			Title:       challengeTitle(challenges, id),
			User1Name:   c1.Name,
			User1TimeMS: t1,
			User2Name:   c2.Name,
			User2TimeMS: t2,
		}
		for i := range anomalies {
			if anomalies[i].ChallengeID == id {
				entry.ZScoreDetails = &anomalies[i]
				break
			}
		}
		timeline = append(timeline, entry)
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		if timeline[i].User1TimeMS != timeline[j].User1TimeMS {
			return timeline[i].User1TimeMS < timeline[j].User1TimeMS
		}
		return timeline[i].ID < timeline[j].ID
	})
	return timeline
}

func challengeTitle(challenges map[int64]*model.Challenge, id int64) string {
	if c, ok := challenges[id]; ok {
		return c.Title
	}
	return fmt.Sprintf("challenge_%d", id)
}

func canonical(a, b int64) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

func sortedContestantIDs(contestants map[int64]*model.Contestant) []int64 {
	ids := make([]int64, 0, len(contestants))
	for id := range contestants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
