// Package normalize turns raw scoreboard snapshots into the clean
// per-contestant model the analysis engine consumes.
package normalize

import (
	"context"
	"fmt"
	"sort"

	"github.com/hexpel/copycatch/internal/domain/model"
	"github.com/hexpel/copycatch/pkg/logger"
)

// unsolvedRarityDivisor stands in for the solver count of a challenge
// nobody solved: it is treated as if exactly half a contestant solved
// it, which keeps the weight finite while still ranking it as
// effectively unique. Hand-tuned in the reference data set.
const unsolvedRarityDivisor = 0.5

// Result bundles the four outputs of a normalization pass.
type Result struct {
	Contestants   map[int64]*model.Contestant
	RarityWeights map[int64]float64
	Challenges    map[int64]*model.Challenge
	SolveCounts   map[int64]int
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithLogger sets a custom logger. Tests pass logger.Nop() to run silently.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

// Normalizer validates and reshapes raw snapshots. It holds no state
// between calls; the logger is its only dependency.
type Normalizer struct {
	log logger.Logger
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		log: logger.Nop(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize filters and reshapes a raw snapshot. Participants below
// minUserScore, without an id, or without any valid solve are dropped.
// A snapshot without the top-level participant list yields four empty
// maps rather than an error; the snapshot is allowed to be internally
// inconsistent and is repaired where possible.
func (n *Normalizer) Normalize(ctx context.Context, snap *model.Snapshot, minUserScore float64) Result {
	res := Result{
		Contestants:   make(map[int64]*model.Contestant),
		RarityWeights: make(map[int64]float64),
		Challenges:    make(map[int64]*model.Challenge),
		SolveCounts:   make(map[int64]int),
	}

	if snap == nil || snap.Items == nil {
		n.log.Warn(ctx, "snapshot empty or missing participant list")
		return res
	}

	n.collectChallenges(ctx, snap, &res)

	activeCount := 0
	for i := range snap.Items {
		c := n.normalizeParticipant(ctx, &snap.Items[i], minUserScore, &res)
		if c == nil {
			continue
		}
		res.Contestants[c.ID] = c
		activeCount++
	}

	n.log.Info(ctx, "normalization complete", logger.Int("contestants", activeCount))

	n.computeRarityWeights(ctx, activeCount, &res)

	return res
}

// collectChallenges fills challenge metadata and authoritative solve
// counts from the categorized challenge listing, when present.
func (n *Normalizer) collectChallenges(ctx context.Context, snap *model.Snapshot, res *Result) {
	if snap.Challenges == nil {
		n.log.Warn(ctx, "snapshot has no challenge listing; metadata will be inferred from solves")
		return
	}

	for category, challenges := range snap.Challenges {
		for i := range challenges {
			raw := &challenges[i]
			if raw.ID == nil {
				n.log.Warn(ctx, "challenge entry without id skipped", logger.String("category", category))
				continue
			}
			id := *raw.ID
			title := raw.Title
			if title == "" {
				title = fmt.Sprintf("challenge_%d", id)
			}
			cat := raw.Category
			if cat == "" {
				cat = category
			}
			res.Challenges[id] = &model.Challenge{
				ID:         id,
				Title:      title,
				BaseScore:  raw.Score,
				Category:   cat,
				SolveCount: raw.Solved,
			}
			res.SolveCounts[id] = raw.Solved
		}
	}
}

// normalizeParticipant validates one raw scoreboard row. Returns nil if
// the row is dropped.
func (n *Normalizer) normalizeParticipant(ctx context.Context, raw *model.RawParticipant, minUserScore float64, res *Result) *model.Contestant {
	if raw.ID == nil {
		n.log.Warn(ctx, "participant without id skipped", logger.String("name", raw.Name))
		return nil
	}
	if raw.Score < minUserScore {
		return nil
	}

	id := *raw.ID
	name := raw.Name
	if name == "" {
		name = fmt.Sprintf("user_%d", id)
	}

	solves := make([]model.Solve, 0, len(raw.SolvedChallenges))
	for _, rs := range raw.SolvedChallenges {
		// A solve is valid iff it has a challenge id and a strictly
		// positive timestamp; feeds contain sentinel values like
		// -62135596800000 for unset times.
		if rs.ID == nil || rs.Time == nil || *rs.Time <= 0 {
			n.log.Warn(ctx, "invalid solve record skipped",
				logger.String("user", name),
				logger.Any("challenge", rs.ID),
				logger.Any("time", rs.Time),
			)
			continue
		}
		challID := *rs.ID

		// Repair snapshots whose participant rows reference challenges
		// absent from the listing.
		if _, known := res.Challenges[challID]; !known {
			base := 0.0
			if rs.Score != nil {
				base = *rs.Score
			}
			res.Challenges[challID] = &model.Challenge{
				ID:        challID,
				Title:     fmt.Sprintf("challenge_%d", challID),
				BaseScore: base,
				Category:  "inferred",
			}
			n.log.Warn(ctx, "challenge missing from listing; synthesized from solve", logger.Int("challenge", int(challID)))
		}

		obtained := res.Challenges[challID].BaseScore
		if rs.Score != nil {
			obtained = *rs.Score
		}

		solves = append(solves, model.Solve{
			ID:            challID,
			TimeMS:        *rs.Time,
			ScoreObtained: obtained,
		})
	}

	if len(solves) == 0 {
		return nil
	}

	// Ascending by solve time; ties keep original submission order.
	sort.SliceStable(solves, func(i, j int) bool { return solves[i].TimeMS < solves[j].TimeMS })

	c := &model.Contestant{
		ID:             id,
		Name:           name,
		TotalScore:     raw.Score,
		SolvedSet:      make(map[int64]struct{}, len(solves)),
		SolvedSequence: make([]int64, 0, len(solves)),
		SolvedTimed:    make(map[int64]int64, len(solves)),
		Solves:         solves,
	}
	for _, s := range solves {
		c.SolvedSet[s.ID] = struct{}{}
		c.SolvedSequence = append(c.SolvedSequence, s.ID)
		c.SolvedTimed[s.ID] = s.TimeMS
	}
	return c
}

// computeRarityWeights assigns one strictly positive weight per known
// challenge, inversely proportional to how many contestants solved it.
func (n *Normalizer) computeRarityWeights(ctx context.Context, activeCount int, res *Result) {
	// When the listing carried no solve counts at all, recount from the
	// retained contestants' solve sets.
	if len(res.SolveCounts) == 0 && activeCount > 0 {
		n.log.Info(ctx, "no authoritative solve counts; recounting from contestant solves")
		for _, c := range res.Contestants {
			for id := range c.SolvedSet {
				res.SolveCounts[id]++
			}
		}
	}

	if len(res.SolveCounts) == 0 {
		n.log.Warn(ctx, "cannot compute rarity weights: no solve counts")
		return
	}

	totalActive := activeCount
	if totalActive < 1 {
		totalActive = 1
	}

	for id := range res.Challenges {
		count := res.SolveCounts[id]
		if count > 0 {
			res.RarityWeights[id] = float64(totalActive) / float64(count)
		} else {
			res.RarityWeights[id] = float64(totalActive) / unsolvedRarityDivisor
		}
	}
}
