// Package synth produces synthetic scoreboard snapshots for tests and
// local development. Generated data is deterministic for a given seed.
package synth

import (
	"fmt"
	"math/rand"

	"github.com/hexpel/copycatch/internal/domain/model"
)

// Contest timing constants, in milliseconds.
const (
	contestStartMS  = int64(1_700_000_000_000)
	contestSpanMS   = int64(8 * 60 * 60 * 1000)
	colludeJitterMS = int64(45 * 1000)
)

// Generator builds synthetic snapshots.
type Generator struct {
	contestants   int
	challenges    int
	colludingPair bool
	solveRate     float64
	seed          int64
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithContestants sets the number of generated contestants.
func WithContestants(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.contestants = n
		}
	}
}

// WithChallenges sets the number of generated challenges.
func WithChallenges(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.challenges = n
		}
	}
}

// WithColludingPair injects two contestants whose solve sets, order and
// timing are nearly identical.
func WithColludingPair(enabled bool) Option {
	return func(g *Generator) {
		g.colludingPair = enabled
	}
}

// WithSolveRate sets the probability that a contestant solved any given
// challenge.
func WithSolveRate(rate float64) Option {
	return func(g *Generator) {
		if rate > 0 && rate <= 1 {
			g.solveRate = rate
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// New creates a Generator with default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{
		contestants: 20,
		challenges:  15,
		solveRate:   0.4,
		seed:        1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Snapshot generates a raw scoreboard snapshot.
func (g *Generator) Snapshot() *model.Snapshot {
	rng := rand.New(rand.NewSource(g.seed))

	categories := []string{"web", "pwn", "crypto", "reversing", "misc"}
	challenges := make([]model.RawChallenge, g.challenges)
	listing := make(map[string][]model.RawChallenge)
	for i := range challenges {
		id := int64(i + 1)
		score := float64(100 + 50*(i%6))
		ch := model.RawChallenge{
			ID:       &id,
			Title:    fmt.Sprintf("chal-%02d", i+1),
			Score:    score,
			Category: categories[i%len(categories)],
		}
		challenges[i] = ch
		listing[ch.Category] = append(listing[ch.Category], ch)
	}

	items := make([]model.RawParticipant, 0, g.contestants)
	for i := 0; i < g.contestants; i++ {
		id := int64(100 + i)
		items = append(items, g.participant(rng, id, fmt.Sprintf("player-%02d", i+1), challenges, nil))
	}

	if g.colludingPair && g.contestants >= 2 {
		// Regenerate the last two contestants as a near-identical pair.
		leader := g.participant(rng, int64(100+g.contestants-2), "shadow-a", challenges, nil)
		follower := g.participant(rng, int64(100+g.contestants-1), "shadow-b", challenges, leader.SolvedChallenges)
		items[g.contestants-2] = leader
		items[g.contestants-1] = follower
	}

	return &model.Snapshot{
		Items:      items,
		Challenges: listing,
	}
}

// participant generates one raw participant. When mirror is non-nil the
// participant solves the same challenges shortly after the mirrored
// solves.
func (g *Generator) participant(rng *rand.Rand, id int64, name string, challenges []model.RawChallenge, mirror []model.RawSolve) model.RawParticipant {
	var solves []model.RawSolve
	var total float64

	if mirror != nil {
		for _, src := range mirror {
			cid := *src.ID
			t := *src.Time + rng.Int63n(colludeJitterMS)
			score := *src.Score
			solves = append(solves, model.RawSolve{ID: &cid, Time: &t, Score: &score})
			total += score
		}
	} else {
		for _, ch := range challenges {
			if rng.Float64() > g.solveRate {
				continue
			}
			cid := *ch.ID
			t := contestStartMS + rng.Int63n(contestSpanMS)
			score := ch.Score
			solves = append(solves, model.RawSolve{ID: &cid, Time: &t, Score: &score})
			total += score
		}
		// Contestants without any solve would be dropped by the
		// normalizer; give everyone at least one.
		if len(solves) == 0 && len(challenges) > 0 {
			cid := *challenges[0].ID
			t := contestStartMS + rng.Int63n(contestSpanMS)
			score := challenges[0].Score
			solves = append(solves, model.RawSolve{ID: &cid, Time: &t, Score: &score})
			total += score
		}
	}

	return model.RawParticipant{
		ID:               &id,
		Name:             name,
		Score:            total,
		SolvedChallenges: solves,
	}
}
