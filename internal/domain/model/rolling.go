package model

// Window is a rolling aggregate definition. A Size of zero or less means the
// window expands from the first row of the series.
type Window struct {
	Name string
	Size int
}

// Expanding reports whether the window has no trailing bound.
func (w Window) Expanding() bool { return w.Size <= 0 }

// Windows are the trailing 16, trailing 80 and all-time definitions.
var Windows = []Window{ //nolint:gochecknoglobals // fixed window set shared by aggregators and sinks
	{Name: "l16", Size: 16},
	{Name: "l80", Size: 80},
	{Name: "all_time", Size: 0},
}

// WindowStats holds one window's aggregates. Nil means the window produced no
// value for the row.
type WindowStats struct {
	Wins   *int
	Losses *int
	Ties   *int
	MOV    *float64
	HFA    *float64
}

// RollingRow is one league week for a team at a stadium. Gap weeks carry nil
// per-game fields while the window aggregates keep rolling.
type RollingRow struct {
	Team        string
	Stadium     string
	Season      int
	Week        int
	GamesPlayed *int
	MOV         *float64
	ExpectedMOV *float64
	Error       *float64
	Win         *int
	Loss        *int
	Tie         *int
	Windows     []WindowStats
}

// Played reports whether the row carries an observed game.
func (r RollingRow) Played() bool { return r.MOV != nil }

// LeagueRow is one league week collapsed across all teams and stadiums.
type LeagueRow struct {
	Season  int
	Week    int
	Win     int
	Loss    int
	Tie     int
	MOV     float64
	Error   float64
	Windows []WindowStats
}

// TeamStadiumSummary is the latest rolling snapshot for a team at a stadium.
type TeamStadiumSummary struct {
	Team string
	// TeamFastr is the nflfastR abbreviation for Team in the pair's latest
	// season.
	TeamFastr string
	Stadium   string
	IsCurrent bool
	// Windows is nil when the pair never hosted a regular season home game.
	Windows []WindowStats
}
