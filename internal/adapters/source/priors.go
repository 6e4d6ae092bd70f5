package source

import (
	"context"
	"errors"
	"io"

	"github.com/okian/stadiums/internal/domain/elo"
)

// Prior CSV columns.
const (
	colTeam    = "team"
	colPrior   = "wt_rating_elo"
	colPSeason = "season"
)

// LoadPriors reads team, season and wt_rating_elo columns. Later rows win
// when a (team, season) pair repeats.
func LoadPriors(_ context.Context, r io.Reader) (elo.Priors, error) {
	t, err := newTable(r, colTeam, colPSeason, colPrior)
	if err != nil {
		return nil, err
	}

	priors := make(elo.Priors)
	for {
		rw, err := t.next()
		if errors.Is(err, io.EOF) {
			return priors, nil
		}
		if err != nil {
			return nil, err
		}
		season, err := rw.int(colPSeason)
		if err != nil {
			return nil, err
		}
		v, err := rw.float(colPrior)
		if err != nil {
			return nil, err
		}
		priors[elo.PriorKey{Team: rw.str(colTeam), Season: season}] = v
	}
}
