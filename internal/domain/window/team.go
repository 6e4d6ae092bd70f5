package window

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// week is a (season, week) calendar slot.
type week struct {
	season int
	week   int
}

func weekOf(o model.HfaObservation) week { return week{season: o.Season, week: o.Week} }

// calendar is the sorted set of league weeks with at least one observation.
type calendar struct {
	weeks []week
	index map[week]int
}

func newCalendar(obs []model.HfaObservation) calendar {
	seen := make(map[week]struct{}, len(obs))
	for _, o := range obs {
		seen[weekOf(o)] = struct{}{}
	}
	c := calendar{weeks: make([]week, 0, len(seen)), index: make(map[week]int, len(seen))}
	for w := range seen {
		c.weeks = append(c.weeks, w)
	}
	sort.Slice(c.weeks, func(i, j int) bool {
		if c.weeks[i].season != c.weeks[j].season {
			return c.weeks[i].season < c.weeks[j].season
		}
		return c.weeks[i].week < c.weeks[j].week
	})
	for i, w := range c.weeks {
		c.index[w] = i
	}
	return c
}

// group is one team at one stadium with its observations in calendar order.
type group struct {
	team    string
	stadium string
	obs     []model.HfaObservation
}

func sortObservations(obs []model.HfaObservation) []model.HfaObservation {
	sorted := make([]model.HfaObservation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Stadium != b.Stadium {
			return a.Stadium < b.Stadium
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Week < b.Week
	})
	return sorted
}

func splitGroups(sorted []model.HfaObservation) []group {
	var groups []group
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Team == sorted[i].Team && sorted[j].Stadium == sorted[i].Stadium {
			j++
		}
		groups = append(groups, group{team: sorted[i].Team, stadium: sorted[i].Stadium, obs: sorted[i:j]})
		i = j
	}
	return groups
}

// Teams builds the team-stadium table. Each group gets one row per league
// week from its first to its last played week; trailing windows emit a value
// once any played row is inside the window.
func (a *Aggregator) Teams(ctx context.Context, obs []model.HfaObservation) ([]model.RollingRow, error) {
	sorted := sortObservations(obs)
	cal := newCalendar(sorted)
	groups := splitGroups(sorted)

	results := make([][]model.RollingRow, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("team rows %s/%s: %w", groups[i].team, groups[i].stadium, err)
			}
			results[i] = a.groupRows(groups[i], cal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, rows := range results {
		total += len(rows)
	}
	out := make([]model.RollingRow, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}
	a.logger.Debug(ctx, "team rows built", logger.Int("groups", len(groups)), logger.Int("rows", len(out)))
	return out, nil
}

func teamMinPeriods(model.Window) int { return 1 }

func (a *Aggregator) groupRows(grp group, cal calendar) []model.RollingRow {
	first := cal.index[weekOf(grp.obs[0])]
	last := cal.index[weekOf(grp.obs[len(grp.obs)-1])]
	windows := newWindowSet(a.windows, teamMinPeriods)

	rows := make([]model.RollingRow, 0, last-first+1)
	j := 0
	for c := first; c <= last; c++ {
		slot := cal.weeks[c]
		played := false
		for j < len(grp.obs) && weekOf(grp.obs[j]) == slot {
			o := grp.obs[j]
			win, loss, tie := o.Outcome()
			row := model.RollingRow{
				Team:        grp.team,
				Stadium:     grp.stadium,
				Season:      o.Season,
				Week:        o.Week,
				GamesPlayed: intPtr(j + 1),
				MOV:         floatPtr(o.MOV),
				ExpectedMOV: floatPtr(o.ExpectedMOV),
				Error:       floatPtr(o.Error),
				Win:         intPtr(win),
				Loss:        intPtr(loss),
				Tie:         intPtr(tie),
			}
			row.Windows = windows.push(observed(win, loss, tie, o.MOV, o.Error))
			rows = append(rows, row)
			played = true
			j++
		}
		if played {
			continue
		}
		rows = append(rows, model.RollingRow{
			Team:    grp.team,
			Stadium: grp.stadium,
			Season:  slot.season,
			Week:    slot.week,
			Windows: windows.push(sample{}),
		})
	}
	return rows
}
