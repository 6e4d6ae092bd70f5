package source

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMissingColumn   = errors.New("missing column")
	ErrMalformedRecord = errors.New("malformed record")
)
