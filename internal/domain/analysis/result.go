package analysis

import (
	"encoding/json"

	"github.com/hexpel/copycatch/internal/domain/similarity"
)

// Score is a metric value that may be undefined. It marshals as a plain
// number, or as the string "N/A" when no value could be computed.
type Score struct {
	value   float64
	defined bool
}

// DefinedScore wraps a computed value.
func DefinedScore(v float64) Score { return Score{value: v, defined: true} }

// UndefinedScore marks a metric that was not computed or has no
// meaningful value.
func UndefinedScore() Score { return Score{} }

// Defined reports whether the score carries a value.
func (s Score) Defined() bool { return s.defined }

// Value returns the wrapped value; only meaningful when Defined.
func (s Score) Value() float64 { return s.value }

// MarshalJSON emits the number, or "N/A" when undefined.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.defined {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON accepts either a number or the "N/A" marker.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == `"N/A"` {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Score{value: v, defined: true}
	return nil
}

// ProximityReport is the time-proximity section of a pair result.
type ProximityReport struct {
	Count            int                         `json:"count"`
	ThresholdSeconds float64                     `json:"threshold_seconds"`
	Details          []similarity.ProximityEntry `json:"details"`
}

// AnomalyEntry is one challenge's z-score record for a pair.
type AnomalyEntry struct {
	ChallengeID     int64   `json:"challenge_id"`
	Title           string  `json:"title"`
	PairDiffSeconds float64 `json:"pair_diff_seconds"`
	MeanDiffSeconds float64 `json:"mean_diff_seconds_all_pairs"`
	StdDiffSeconds  float64 `json:"std_diff_seconds_all_pairs"`
	ZScore          Score   `json:"z_score"`
}

// TimelineEntry is one commonly solved challenge on the pair's shared
// timeline, annotated with its anomaly record when one exists.
type TimelineEntry struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	User1Name     string        `json:"user1_name"`
	User1TimeMS   int64         `json:"user1_time_ms"`
	User2Name     string        `json:"user2_name"`
	User2TimeMS   int64         `json:"user2_time_ms"`
	ZScoreDetails *AnomalyEntry `json:"z_score_details"`
}

// PairResult is the full similarity assessment for one contestant pair.
// Metric fields are present only when the corresponding method was
// requested.
type PairResult struct {
	PairNames [2]string `json:"pair_names"`
	PairIDs   [2]int64  `json:"pair_ids"`

	Jaccard            *float64         `json:"jaccard,omitempty"`
	WeightedJaccard    *float64         `json:"weighted_jaccard,omitempty"`
	SequenceSimilarity *float64         `json:"sequence_similarity,omitempty"`
	TimeProximity      *ProximityReport `json:"time_proximity,omitempty"`
	TimeDistribution   []AnomalyEntry   `json:"time_distribution_analysis,omitempty"`

	CommonChallengeTimeline []TimelineEntry `json:"common_challenge_timeline_data"`

	OverallSimilarityHeuristic float64 `json:"overall_similarity_heuristic"`
}

// Node is one participant in the similarity graph. The graph frontend
// keys nodes by display name, so ID carries the name and the internal
// contestant id rides along.
type Node struct {
	ID             string  `json:"id"`
	UserIDInternal int64   `json:"user_id_internal"`
	Score          float64 `json:"score"`
	SolvedCount    int     `json:"solved_count"`
}

// MetricsSummary is the condensed per-edge metric annotation.
type MetricsSummary struct {
	Jaccard            Score `json:"j"`
	WeightedJaccard    Score `json:"wj"`
	SequenceSimilarity Score `json:"s"`
	TimeProximityCount Score `json:"tp_c"`
}

// Edge links two participants whose composite similarity met the
// configured threshold.
type Edge struct {
	Source         string         `json:"source"`
	Target         string         `json:"target"`
	Weight         float64        `json:"weight"`
	MetricsSummary MetricsSummary `json:"metrics_summary"`
}

// Result is the full output of one analysis run.
type Result struct {
	SimilarPairs []PairResult `json:"similar_pairs"`
	NetworkNodes []Node       `json:"network_nodes"`
	NetworkEdges []Edge       `json:"network_edges"`
	Error        string       `json:"error,omitempty"`

	// RunID identifies this run in logs and the persisted envelope.
	RunID string `json:"-"`
}
