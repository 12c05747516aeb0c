// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hexpel/copycatch/internal/domain/analysis"
)

// AnalyzeHandler runs on-demand analyses.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new on-demand analysis handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

type analyzeResponse struct {
	Message            string           `json:"message"`
	DataFetchTimeISO   string           `json:"data_fetch_time_iso"`
	AnalysisParameters analysis.Params  `json:"analysis_parameters"`
	CalculationTimeISO string           `json:"calculation_time_iso"`
	Results            *analysis.Result `json:"results"`
}

func validatePatch(patch analysis.ParamsPatch) error {
	for _, m := range patch.Methods {
		if !knownMethod(m) {
			return fmt.Errorf("%w: unknown method %q", ErrBadRequest, m)
		}
	}
	if patch.TimeProximitySeconds != nil && *patch.TimeProximitySeconds <= 0 {
		return fmt.Errorf("%w: time_proximity_seconds must be positive", ErrBadRequest)
	}
	if patch.MinSimilarityThreshold != nil &&
		(*patch.MinSimilarityThreshold < 0 || *patch.MinSimilarityThreshold > 1) {
		return fmt.Errorf("%w: min_similarity_threshold must be within [0, 1]", ErrBadRequest)
	}
	return nil
}

func knownMethod(name string) bool {
	for _, m := range analysis.DefaultMethods() {
		if m == name {
			return true
		}
	}
	return false
}

// HandleAnalyze handles POST /api/analyze requests. Omitted body fields
// fall back to the configured defaults; an empty body runs the default
// analysis against the current (possibly cached) snapshot.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var patch analysis.ParamsPatch
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
	}
	if err := validatePatch(patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameters", err)
		return
	}

	env, fetchedAt, err := h.deps.Analyze(r.Context(), patch)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err)
		return
	}

	msg := "analysis complete"
	if env.Results != nil && env.Results.Error != "" {
		msg = env.Results.Error
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Message:            msg,
		DataFetchTimeISO:   fetchedAt.UTC().Format(time.RFC3339),
		AnalysisParameters: env.ParamsUsed,
		CalculationTimeISO: env.CalculationTimeISO,
		Results:            env.Results,
	})
}
