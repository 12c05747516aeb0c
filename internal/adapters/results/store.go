// Package results persists the precomputed analysis envelope to disk so
// the request surface can serve it without recomputing.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hexpel/copycatch/internal/domain/analysis"
)

// Envelope wraps one precomputed analysis result with the parameters
// and timing of the run that produced it.
type Envelope struct {
	RunID               string           `json:"run_id"`
	ParamsUsed          analysis.Params  `json:"params_used"`
	CalculationTimeUnix float64          `json:"calculation_time_unix"`
	CalculationTimeISO  string           `json:"calculation_time_iso"`
	Results             *analysis.Result `json:"results"`
}

// NewEnvelope stamps a result with its parameters and the current time.
func NewEnvelope(res *analysis.Result, params analysis.Params) *Envelope {
	now := time.Now().UTC()
	return &Envelope{
		RunID:               res.RunID,
		ParamsUsed:          params,
		CalculationTimeUnix: float64(now.UnixNano()) / float64(time.Second),
		CalculationTimeISO:  now.Format(time.RFC3339),
		Results:             res,
	}
}

// Store reads and writes the envelope file.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a Store persisting to the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Save writes the envelope atomically (temp file + rename).
func (s *Store) Save(_ context.Context, env *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

// Load returns the persisted envelope, or ErrNoResults when none has
// been written yet.
func (s *Store) Load(_ context.Context) (*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoResults
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return &env, nil
}
