// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hexpel/copycatch/internal/adapters/results"
	"github.com/hexpel/copycatch/internal/domain/analysis"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// RefreshAndAnalyze forces a scoreboard fetch and recomputes the
	// persisted default analysis. It returns the snapshot capture time
	// and whether the precomputation was stored.
	RefreshAndAnalyze(ctx context.Context) (time.Time, bool, error)

	// Status reports data and analysis freshness.
	Status(ctx context.Context) map[string]interface{}

	// CachedResult loads the persisted default analysis.
	CachedResult(ctx context.Context) (*results.Envelope, error)

	// Analyze runs an on-demand analysis with overrides applied on top
	// of the configured defaults.
	Analyze(ctx context.Context, patch analysis.ParamsPatch) (*results.Envelope, time.Time, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	refreshHandler *RefreshHandler
	statusHandler  *StatusHandler
	cachedHandler  *CachedHandler
	analyzeHandler *AnalyzeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		refreshHandler: NewRefreshHandler(deps),
		statusHandler:  NewStatusHandler(deps),
		cachedHandler:  NewCachedHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/fetch_data", MetricsMiddleware(s.refreshHandler.HandleFetchData, "fetch_data"))
	mux.HandleFunc("/api/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/api/get_cached_analysis", MetricsMiddleware(s.cachedHandler.HandleGetCached, "get_cached_analysis"))
	mux.HandleFunc("/api/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
