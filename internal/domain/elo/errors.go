package elo

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingConfig = errors.New("missing rating config")
	ErrInvalidConfig = errors.New("invalid rating config")
	ErrOutOfOrder    = errors.New("game out of chronological order")
)
