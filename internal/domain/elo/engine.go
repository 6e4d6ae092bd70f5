package elo

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
)

const (
	// marginScale converts rating points to expected points of margin.
	marginScale = 25.0
	// autocorrelation scales elo_dif inside the margin multiplier denominator.
	autocorrelation = 0.001
)

// Projection is a game augmented with pre-game ratings. HomeElo and AwayElo
// already include any pending season reversion; that is the baseline the
// post-game shift is applied to.
type Projection struct {
	Game               model.GameRecord
	HomeElo            float64
	AwayElo            float64
	HomeReverted       bool
	AwayReverted       bool
	EloDif             float64
	HomeWP             float64
	HomeExpectedMargin float64
}

// Outcome is the result of processing a projected game.
type Outcome struct {
	Projection Projection
	Error      float64
	Multiplier float64
	HomeShift  float64
	AwayShift  float64
	// Observation is nil unless the game was a regular season home game.
	Observation *model.HfaObservation
}

// RunResult summarizes one pass over a game log.
type RunResult struct {
	Games        int
	Reversions   int
	Outcomes     []Outcome
	Observations []model.HfaObservation
}

// Engine applies the rating update rule to games one at a time. It is not
// safe for concurrent use; results depend on game order.
type Engine struct {
	cfg          Config
	store        *Store
	observations []model.HfaObservation
	logger       logger.Logger
}

// New constructs an Engine over a fresh store.
func New(cfg Config, priors Priors, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		store:  NewStore(cfg, priors),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WinProbability is the logistic home win probability for a rating gap.
func WinProbability(eloDif, z float64) float64 {
	return 1 / (1 + math.Pow(10, -eloDif/z))
}

// ExpectedMargin converts a rating gap to expected home margin.
func ExpectedMargin(eloDif float64) float64 {
	return eloDif / marginScale
}

// Multiplier is the margin of victory multiplier. Favorites that win get a
// smaller multiplier than underdogs that win by the same margin; ties use a
// denominator of one.
func Multiplier(result, eloDif, b float64) float64 {
	pd := math.Abs(result)
	base := math.Log(math.Max(pd, 1) + 1)
	switch {
	case result > 0:
		return base * (b / (eloDif*autocorrelation + b))
	case result < 0:
		return base * (b / (-eloDif*autocorrelation + b))
	default:
		return base * b
	}
}

// Project computes the pre-game view of g without changing any state.
func (e *Engine) Project(g model.GameRecord) Projection {
	p := Projection{Game: g}

	p.HomeElo = e.store.State(g.HomeTeam).Elo
	if e.store.NeedsReversion(g.HomeTeam, g.Season) {
		p.HomeElo = e.store.Revert(g.HomeTeam, p.HomeElo, g.Season)
		p.HomeReverted = true
	}
	p.AwayElo = e.store.State(g.AwayTeam).Elo
	if e.store.NeedsReversion(g.AwayTeam, g.Season) {
		p.AwayElo = e.store.Revert(g.AwayTeam, p.AwayElo, g.Season)
		p.AwayReverted = true
	}

	p.EloDif = (p.HomeElo + g.HomeQBAdj) - (p.AwayElo + g.AwayQBAdj)
	p.HomeWP = WinProbability(p.EloDif, e.cfg.Z)
	p.HomeExpectedMargin = ExpectedMargin(p.EloDif)
	return p
}

// Process records the observation for p and commits both teams' new ratings.
func (e *Engine) Process(p Projection) Outcome {
	g := p.Game
	out := Outcome{
		Projection: p,
		Error:      g.Result - p.HomeExpectedMargin,
	}

	if g.Location == model.LocationHome && g.GameType == model.GameTypeRegular {
		obs := model.HfaObservation{
			Season:      g.Season,
			Week:        g.Week,
			Team:        g.HomeTeam,
			Stadium:     g.StadiumID,
			MOV:         g.Result,
			ExpectedMOV: model.Round3(p.HomeExpectedMargin),
			Error:       model.Round3(out.Error),
		}
		e.observations = append(e.observations, obs)
		out.Observation = &obs
	}

	out.Multiplier = Multiplier(g.Result, p.EloDif, e.cfg.B)
	out.HomeShift = e.cfg.K * out.Multiplier * (homeResult(g.Result) - p.HomeWP)
	out.AwayShift = -out.HomeShift

	e.store.Apply(Commit(p, out.HomeShift))
	return out
}

// Update is the committed state of both teams after one game.
type Update struct {
	HomeTeam string
	AwayTeam string
	Home     TeamState
	Away     TeamState
}

// Commit moves both teams to their projected baseline plus shift, stamped
// with the game's season and week. The projected baseline is used for both
// teams even when only one reverted.
func Commit(p Projection, homeShift float64) Update {
	g := p.Game
	return Update{
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		Home: TeamState{
			Elo:            p.HomeElo + homeShift,
			LastGameSeason: g.Season,
			LastGameWeek:   g.Week,
			Played:         true,
		},
		Away: TeamState{
			Elo:            p.AwayElo - homeShift,
			LastGameSeason: g.Season,
			LastGameWeek:   g.Week,
			Played:         true,
		},
	}
}

// Run projects and processes games in order. Games must be non-decreasing by
// (season, week); a game scheduled before its predecessor aborts the run
// with ErrOutOfOrder.
func (e *Engine) Run(ctx context.Context, games []model.GameRecord) (RunResult, error) {
	teams := make([]string, 0, len(games))
	for _, g := range games {
		teams = append(teams, g.HomeTeam, g.AwayTeam)
	}
	e.store.Seed(teams...)

	res := RunResult{Outcomes: make([]Outcome, 0, len(games))}
	for i, g := range games {
		if i > 0 && g.Before(games[i-1]) {
			return res, fmt.Errorf("%w: game %q (%d week %d) follows %d week %d",
				ErrOutOfOrder, g.GameID, g.Season, g.Week, games[i-1].Season, games[i-1].Week)
		}

		p := e.Project(g)
		if p.HomeReverted {
			res.Reversions++
			e.logger.Debug(ctx, "season reversion", logger.String("team", g.HomeTeam), logger.Int("season", g.Season), logger.Float64("elo", p.HomeElo))
		}
		if p.AwayReverted {
			res.Reversions++
			e.logger.Debug(ctx, "season reversion", logger.String("team", g.AwayTeam), logger.Int("season", g.Season), logger.Float64("elo", p.AwayElo))
		}
		res.Outcomes = append(res.Outcomes, e.Process(p))
		res.Games++
	}
	res.Observations = e.Observations()

	e.logger.Info(ctx, "rating run complete",
		logger.Int("games", res.Games),
		logger.Int("observations", len(res.Observations)),
		logger.Int("reversions", res.Reversions),
		logger.Int("teams", len(e.store.ratings)),
	)
	return res, nil
}

// Observations returns a copy of the observation log in processing order.
func (e *Engine) Observations() []model.HfaObservation {
	out := make([]model.HfaObservation, len(e.observations))
	copy(out, e.observations)
	return out
}

// Ratings returns the current ratings ordered by elo desc, then team asc.
func (e *Engine) Ratings() []model.TeamRating {
	return e.store.Snapshot()
}

// Store exposes the engine's rating store for inspection.
func (e *Engine) Store() *Store {
	return e.store
}

func homeResult(result float64) float64 {
	switch {
	case result > 0:
		return 1
	case result < 0:
		return 0
	default:
		return 0.5
	}
}
