package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrPushFailed   = errors.New("metrics push failed")
	ErrExportFailed = errors.New("metrics export failed")
)
