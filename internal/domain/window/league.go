package window

import (
	"context"
	"sort"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
)

// leagueMinPeriods requires a full trailing window before emitting a value.
// The team table relaxes this to one row; the league table does not.
func leagueMinPeriods(w model.Window) int {
	if w.Expanding() {
		return 1
	}
	return w.Size
}

// League collapses observations to one row per league week and rolls the
// weekly values.
func (a *Aggregator) League(ctx context.Context, obs []model.HfaObservation) []model.LeagueRow {
	sorted := make([]model.HfaObservation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Season != sorted[j].Season {
			return sorted[i].Season < sorted[j].Season
		}
		return sorted[i].Week < sorted[j].Week
	})

	windows := newWindowSet(a.windows, leagueMinPeriods)
	var rows []model.LeagueRow
	for i := 0; i < len(sorted); {
		slot := weekOf(sorted[i])
		row := model.LeagueRow{Season: slot.season, Week: slot.week}
		var movSum, errSum int64
		n := 0
		for ; i < len(sorted) && weekOf(sorted[i]) == slot; i++ {
			win, loss, tie := sorted[i].Outcome()
			row.Win += win
			row.Loss += loss
			row.Tie += tie
			movSum += model.Milli(sorted[i].MOV)
			errSum += model.Milli(sorted[i].Error)
			n++
		}
		row.MOV = model.MeanMilli(movSum, n)
		row.Error = model.MeanMilli(errSum, n)
		row.Windows = windows.push(observed(row.Win, row.Loss, row.Tie, row.MOV, row.Error))
		rows = append(rows, row)
	}
	a.logger.Debug(ctx, "league rows built", logger.Int("observations", len(obs)), logger.Int("rows", len(rows)))
	return rows
}
