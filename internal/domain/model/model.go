// Package model contains domain models passed between layers.
package model

// RawSolve is one solve record inside a raw participant entry.
// Pointer fields distinguish absent values from zero values; all
// "missing field => default" decisions happen in the normalizer.
type RawSolve struct {
	ID    *int64   `json:"id"`
	Time  *int64   `json:"time"` // milliseconds since epoch
	Score *float64 `json:"score"`
}

// RawParticipant is one scoreboard row as delivered by the game server.
type RawParticipant struct {
	ID               *int64     `json:"id"`
	Name             string     `json:"name"`
	Score            float64    `json:"score"`
	SolvedChallenges []RawSolve `json:"solvedChallenges"`
}

// RawChallenge is one entry of the categorized challenge listing.
type RawChallenge struct {
	ID       *int64  `json:"id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Solved   int     `json:"solved"` // authoritative solve count
}

// Snapshot is the raw scoreboard payload, optionally stamped with the
// capture time by the fetcher.
type Snapshot struct {
	Items      []RawParticipant          `json:"items"`
	Challenges map[string][]RawChallenge `json:"challenges,omitempty"`
	BloodBonus int64                     `json:"bloodBonus,omitempty"`

	// FetchedAtUnix is set by the fetch-with-cache layer, not the game server.
	FetchedAtUnix float64 `json:"fetch_timestamp_utc,omitempty"`
}

// Solve is a validated solve record.
type Solve struct {
	ID            int64
	TimeMS        int64
	ScoreObtained float64
}

// Contestant is the normalized per-participant model. The three solved
// views are kept consistent by construction: SolvedSet, the keys of
// SolvedTimed, and the elements of SolvedSequence are the same ids.
type Contestant struct {
	ID         int64
	Name       string
	TotalScore float64

	SolvedSet      map[int64]struct{}
	SolvedSequence []int64         // ascending by solve time
	SolvedTimed    map[int64]int64 // challenge id -> solve time (ms)
	Solves         []Solve         // full records, same order as SolvedSequence
}

// Challenge holds per-challenge metadata.
type Challenge struct {
	ID         int64
	Title      string
	BaseScore  float64
	Category   string
	SolveCount int
}

// Baseline is the solve-time-difference distribution for one challenge,
// in seconds, across all pairs of its solvers.
type Baseline struct {
	Mean float64
	Std  float64
}
