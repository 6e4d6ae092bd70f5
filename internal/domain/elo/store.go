package elo

import (
	"sort"

	"github.com/okian/stadiums/internal/domain/model"
)

// TeamState is a team's mutable rating state within one run.
type TeamState struct {
	Elo            float64
	LastGameSeason int
	LastGameWeek   int
	// Played is false until the team's first game is committed; the
	// LastGame fields are meaningless before that.
	Played bool
}

// Ratings maps team identifier to its rating state.
type Ratings map[string]TeamState

// Clone returns an independent copy.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for team, st := range r {
		out[team] = st
	}
	return out
}

// PriorKey identifies a preseason win total prior.
type PriorKey struct {
	Team   string
	Season int
}

// Priors maps (team, season) to a preseason rating derived from win totals.
type Priors map[PriorKey]float64

// Store owns per-team rating state and the reversion policy.
type Store struct {
	cfg     Config
	priors  Priors
	ratings Ratings
}

// NewStore creates a store seeded with teams at the configured initial rating.
func NewStore(cfg Config, priors Priors, teams ...string) *Store {
	s := &Store{
		cfg:     cfg,
		priors:  priors,
		ratings: make(Ratings, len(teams)),
	}
	s.Seed(teams...)
	return s
}

// Seed registers teams that are not yet tracked.
func (s *Store) Seed(teams ...string) {
	for _, team := range teams {
		if _, ok := s.ratings[team]; !ok {
			s.ratings[team] = TeamState{Elo: s.cfg.EloInit}
		}
	}
}

// State returns the team's state, or a fresh one for an unknown team.
func (s *Store) State(team string) TeamState {
	if st, ok := s.ratings[team]; ok {
		return st
	}
	return TeamState{Elo: s.cfg.EloInit}
}

// Prior returns the win total prior for team in season, falling back to the
// initial rating when none is known.
func (s *Store) Prior(team string, season int) float64 {
	if v, ok := s.priors[PriorKey{Team: team, Season: season}]; ok {
		return v
	}
	return s.cfg.EloInit
}

// NeedsReversion reports whether the team's next game in season starts a
// new season for it, including its first game ever.
func (s *Store) NeedsReversion(team string, season int) bool {
	st := s.State(team)
	return !st.Played || st.LastGameSeason != season
}

// Revert blends elo with the league baseline and the team's prior for
// newSeason using normalized weights.
func (s *Store) Revert(team string, elo float64, newSeason int) float64 {
	current, league, prior := s.cfg.weights()
	return prior*s.Prior(team, newSeason) +
		league*s.cfg.EloInit +
		current*elo
}

// Ratings returns a copy of the current state map.
func (s *Store) Ratings() Ratings {
	return s.ratings.Clone()
}

// Apply writes the two entries of an update step.
func (s *Store) Apply(u Update) {
	s.ratings[u.HomeTeam] = u.Home
	s.ratings[u.AwayTeam] = u.Away
}

// Snapshot returns ratings ordered by elo desc, then team asc.
func (s *Store) Snapshot() []model.TeamRating {
	out := make([]model.TeamRating, 0, len(s.ratings))
	for team, st := range s.ratings {
		out = append(out, model.TeamRating{
			Team:           team,
			Elo:            st.Elo,
			LastGameSeason: st.LastGameSeason,
			LastGameWeek:   st.LastGameWeek,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Elo != out[j].Elo {
			return out[i].Elo > out[j].Elo
		}
		return out[i].Team < out[j].Team
	})
	return out
}
