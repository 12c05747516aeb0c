package results

import "errors"

// Sentinel kinds for result persistence errors.
var (
	ErrNoResults = errors.New("no precomputed analysis results")
	ErrSave      = errors.New("save analysis results failed")
	ErrLoad      = errors.New("load analysis results failed")
)
