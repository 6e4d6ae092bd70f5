// Package window turns the HFA observation log into rolling team-stadium and
// league tables over the league calendar.
package window

import (
	"runtime"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
)

// Aggregator computes rolling tables. Group computations may run in
// parallel; output order and values do not depend on scheduling.
type Aggregator struct {
	windows []model.Window
	workers int
	logger  logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWorkers bounds the number of team-stadium groups computed at once.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithWindows replaces the default l16/l80/all_time window set.
func WithWindows(windows ...model.Window) Option {
	return func(a *Aggregator) {
		if len(windows) > 0 {
			a.windows = windows
		}
	}
}

// WithLogger sets the aggregator's logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		windows: model.Windows,
		workers: runtime.NumCPU(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Windows returns the window definitions, in the order of every row's
// Windows slice.
func (a *Aggregator) Windows() []model.Window {
	out := make([]model.Window, len(a.windows))
	copy(out, a.windows)
	return out
}
