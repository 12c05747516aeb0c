package analysis

import "errors"

// Sentinel kinds for analysis errors.
var (
	ErrTargetNotFound = errors.New("target user not found among active contestants")
)
