package sqlite

import "errors"

// Sentinel error kinds for this package.
var (
	ErrPathRequired  = errors.New("storage path is required")
	ErrNotConfigured = errors.New("storage is not configured")
)
