// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/hexpel/copycatch/internal/adapters/results"
)

// CachedHandler serves the persisted default analysis.
type CachedHandler struct {
	deps Dependencies
}

// NewCachedHandler creates a new cached-analysis handler.
func NewCachedHandler(deps Dependencies) *CachedHandler {
	return &CachedHandler{deps: deps}
}

type cachedMissingResponse struct {
	Error              string      `json:"error"`
	Results            interface{} `json:"results"`
	ParamsUsed         interface{} `json:"params_used"`
	CalculationTimeISO interface{} `json:"calculation_time_iso"`
}

// HandleGetCached handles GET /api/get_cached_analysis requests. When no
// precomputed result file exists yet the endpoint responds 404 with an
// explanatory body so the frontend can prompt for a refresh.
func (h *CachedHandler) HandleGetCached(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	env, err := h.deps.CachedResult(r.Context())
	if err != nil {
		if errors.Is(err, results.ErrNoResults) {
			writeJSON(w, http.StatusNotFound, cachedMissingResponse{
				Error: "no precomputed analysis available yet; trigger a data refresh first",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}
