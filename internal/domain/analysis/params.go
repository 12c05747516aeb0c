package analysis

// ParamsPatch is a partial parameter set, as submitted by on-demand
// analysis requests. Nil fields fall back to the configured defaults.
type ParamsPatch struct {
	Methods                []string `json:"methods"`
	TimeProximitySeconds   *float64 `json:"time_proximity_seconds"`
	MinSimilarityThreshold *float64 `json:"min_similarity_threshold"`
	MinUserScore           *float64 `json:"min_user_score"`
	TargetUsername         *string  `json:"target_username"`
}

// Merge overlays a patch on top of p and returns the effective
// parameter set.
func (p Params) Merge(patch ParamsPatch) Params {
	out := p
	if patch.Methods != nil {
		out.Methods = patch.Methods
	}
	if patch.TimeProximitySeconds != nil {
		out.TimeProximitySeconds = *patch.TimeProximitySeconds
	}
	if patch.MinSimilarityThreshold != nil {
		out.MinSimilarityThreshold = *patch.MinSimilarityThreshold
	}
	if patch.MinUserScore != nil {
		out.MinUserScore = *patch.MinUserScore
	}
	if patch.TargetUsername != nil {
		out.TargetUsername = *patch.TargetUsername
	}
	return out
}
