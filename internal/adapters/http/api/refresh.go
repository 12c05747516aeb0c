// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// RefreshHandler handles forced scoreboard refresh requests.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Message      string  `json:"message"`
	FetchTimeISO *string `json:"fetch_time_iso"`
}

// HandleFetchData handles POST /api/fetch_data requests. A successful
// refresh also recomputes the persisted default analysis before the
// response is written.
func (h *RefreshHandler) HandleFetchData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	fetchedAt, analysisStored, err := h.deps.RefreshAndAnalyze(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, refreshResponse{
			Message: "failed to fetch scoreboard data: " + err.Error(),
		})
		return
	}

	iso := fetchedAt.UTC().Format(time.RFC3339)
	msg := "scoreboard data refreshed and default analysis precomputed"
	if !analysisStored {
		msg = "scoreboard data refreshed; default analysis could not be stored"
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Message:      msg,
		FetchTimeISO: &iso,
	})
}
