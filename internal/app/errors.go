package service

import "errors"

var (
	// ErrRefresh indicates the upstream scoreboard could not be reached
	// or its payload could not be decoded.
	ErrRefresh = errors.New("failed to refresh scoreboard data")
)
