package scoreboard

import "errors"

// Sentinel kinds for scoreboard acquisition errors.
var (
	ErrNoEndpoint = errors.New("no scoreboard endpoint configured")
	ErrFetch      = errors.New("scoreboard fetch failed")
	ErrDecode     = errors.New("scoreboard decode failed")
	ErrCache      = errors.New("snapshot cache write failed")
)
