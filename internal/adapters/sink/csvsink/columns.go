package csvsink

import (
	"strconv"

	"github.com/okian/stadiums/internal/domain/model"
)

// Output file names.
const (
	FileTeamHFA      = "rolling_team_hfa.csv"
	FileLeagueHFA    = "rolling_league_hfa.csv"
	FileTeamStadiums = "team_stadiums.csv"
	FileRatings      = "elo_ratings.csv"
)

var windowMetrics = []string{"wins", "losses", "ties", "mov", "hfa"} //nolint:gochecknoglobals // column prefix order

// windowColumns returns wins_l16, losses_l16, ... for every window in order.
func windowColumns(windows []model.Window) []string {
	out := make([]string, 0, len(windows)*len(windowMetrics))
	for _, w := range windows {
		for _, m := range windowMetrics {
			out = append(out, m+"_"+w.Name)
		}
	}
	return out
}

// windowCells renders stats for the configured windows. Missing windows
// render as empty cells so every row keeps the header width.
func windowCells(windows []model.Window, stats []model.WindowStats) []string {
	out := make([]string, 0, len(windows)*len(windowMetrics))
	for i := range windows {
		var s model.WindowStats
		if i < len(stats) {
			s = stats[i]
		}
		out = append(out, optInt(s.Wins), optInt(s.Losses), optInt(s.Ties), optFloat(s.MOV), optFloat(s.HFA))
	}
	return out
}

func teamHeader(windows []model.Window) []string {
	h := []string{"team", "stadium", "season", "week", "games_played", "mov", "expected_mov", "error", "win", "loss", "tie"}
	return append(h, windowColumns(windows)...)
}

func teamRecord(windows []model.Window, r model.RollingRow) []string {
	rec := []string{
		r.Team, r.Stadium, itoa(r.Season), itoa(r.Week),
		optInt(r.GamesPlayed), optFloat(r.MOV), optFloat(r.ExpectedMOV), optFloat(r.Error),
		optInt(r.Win), optInt(r.Loss), optInt(r.Tie),
	}
	return append(rec, windowCells(windows, r.Windows)...)
}

func leagueHeader(windows []model.Window) []string {
	h := []string{"season", "week", "win", "loss", "tie", "mov", "error"}
	return append(h, windowColumns(windows)...)
}

func leagueRecord(windows []model.Window, r model.LeagueRow) []string {
	rec := []string{
		itoa(r.Season), itoa(r.Week), itoa(r.Win), itoa(r.Loss), itoa(r.Tie),
		ftoa(r.MOV), ftoa(r.Error),
	}
	return append(rec, windowCells(windows, r.Windows)...)
}

func stadiumHeader(windows []model.Window) []string {
	h := []string{"team", "team_fastr", "stadium", "is_current"}
	return append(h, windowColumns(windows)...)
}

func stadiumRecord(windows []model.Window, s model.TeamStadiumSummary) []string {
	rec := []string{s.Team, s.TeamFastr, s.Stadium, strconv.FormatBool(s.IsCurrent)}
	return append(rec, windowCells(windows, s.Windows)...)
}

func ratingHeader() []string {
	return []string{"team", "elo", "last_game_season", "last_game_week"}
}

func ratingRecord(r model.TeamRating) []string {
	return []string{r.Team, ftoa(r.Elo), itoa(r.LastGameSeason), itoa(r.LastGameWeek)}
}

func itoa(v int) string     { return strconv.Itoa(v) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}
