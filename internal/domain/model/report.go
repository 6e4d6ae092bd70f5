package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is the full output of one batch run, handed to sinks.
type Report struct {
	RunID        uuid.UUID
	StartedAt    time.Time
	FinishedAt   time.Time
	Games        int
	Reversions   int
	// Windows are the definitions behind every Windows slice in the tables.
	Windows      []Window
	Observations []HfaObservation
	Teams        []RollingRow
	League       []LeagueRow
	Stadiums     []TeamStadiumSummary
	Ratings      []TeamRating
}

// WindowSet returns the report's windows, or the default set when unset.
func (r *Report) WindowSet() []Window {
	if len(r.Windows) > 0 {
		return r.Windows
	}
	return Windows
}
