package window

import (
	"sort"

	"github.com/okian/stadiums/internal/domain/model"
)

type pairKey struct {
	team    string
	stadium string
}

// Summarize lists every team-stadium pair seen in home-location games with
// its latest rolling snapshot. games may include scheduled games without a
// result. A team's current stadium is the one where it played, or is
// scheduled to play, the most home games in its most recent season; ties go
// to the lexically smaller stadium id.
func Summarize(games []model.GameRecord, rows []model.RollingRow) []model.TeamStadiumSummary {
	type seasonCount struct {
		season int
		games  map[string]int
	}
	// pairs holds the latest season each pair appears in.
	pairs := make(map[pairKey]int)
	latest := make(map[string]*seasonCount)
	for _, g := range games {
		if g.Location != model.LocationHome {
			continue
		}
		key := pairKey{team: g.HomeTeam, stadium: g.StadiumID}
		if season, ok := pairs[key]; !ok || g.Season > season {
			pairs[key] = g.Season
		}

		sc := latest[g.HomeTeam]
		if sc == nil || g.Season > sc.season {
			sc = &seasonCount{season: g.Season, games: make(map[string]int)}
			latest[g.HomeTeam] = sc
		}
		if g.Season == sc.season {
			sc.games[g.StadiumID]++
		}
	}

	current := make(map[string]string, len(latest))
	for team, sc := range latest {
		best, bestN := "", -1
		for stadium, n := range sc.games {
			if n > bestN || (n == bestN && stadium < best) {
				best, bestN = stadium, n
			}
		}
		current[team] = best
	}

	snapshot := make(map[pairKey][]model.WindowStats)
	for _, r := range rows {
		snapshot[pairKey{team: r.Team, stadium: r.Stadium}] = r.Windows
	}

	out := make([]model.TeamStadiumSummary, 0, len(pairs))
	for p, season := range pairs {
		out = append(out, model.TeamStadiumSummary{
			Team:      p.team,
			TeamFastr: model.FastrTeam(p.team, season),
			Stadium:   p.stadium,
			IsCurrent: current[p.team] == p.stadium,
			Windows:   snapshot[p],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCurrent != out[j].IsCurrent {
			return out[i].IsCurrent
		}
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Stadium < out[j].Stadium
	})
	return out
}
