package source

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
)

// Game CSV columns.
const (
	colGameID    = "game_id"
	colSeason    = "season"
	colWeek      = "week"
	colGameType  = "game_type"
	colLocation  = "location"
	colHomeTeam  = "home_team"
	colAwayTeam  = "away_team"
	colResult    = "result"
	colStadiumID = "stadium_id"
	colHomeQBAdj = "home_qb_adj"
	colAwayQBAdj = "away_qb_adj"
)

// Skip reasons reported in Games.
const (
	SkipIncomplete = "incomplete"
	SkipDuplicate  = "duplicate"
)

// Games is a chronologically ordered game log plus what was dropped on load.
type Games struct {
	Records []model.GameRecord
	// Schedule holds every game with a stadium, played or not, in the same
	// order as Records. Unplayed games carry a zero Result.
	Schedule []model.GameRecord
	Skipped  map[string]int
}

// LoadGames reads a games CSV. Unplayed games and games without a stadium
// are skipped, as are repeated game ids after the first. Records come back
// stably sorted by (season, week), so file order breaks ties. Unplayed games
// with a stadium still land in Schedule.
func LoadGames(ctx context.Context, r io.Reader, log logger.Logger) (Games, error) {
	if log == nil {
		log = logger.Nop()
	}
	t, err := newTable(r, colGameID, colSeason, colWeek, colGameType, colLocation,
		colHomeTeam, colAwayTeam, colResult, colStadiumID)
	if err != nil {
		return Games{}, err
	}

	out := Games{Skipped: map[string]int{SkipIncomplete: 0, SkipDuplicate: 0}}
	played := make(map[string]struct{})
	scheduled := make(map[string]struct{})
	for {
		rw, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Games{}, err
		}

		if rw.str(colStadiumID) == "" {
			out.Skipped[SkipIncomplete]++
			continue
		}
		g, err := parseGame(rw)
		if err != nil {
			return Games{}, err
		}
		id := g.GameID
		if _, dup := scheduled[id]; !dup || id == "" {
			scheduled[id] = struct{}{}
			out.Schedule = append(out.Schedule, g)
		}

		if rw.str(colResult) == "" {
			out.Skipped[SkipIncomplete]++
			continue
		}
		if _, dup := played[id]; dup && id != "" {
			out.Skipped[SkipDuplicate]++
			log.Debug(ctx, "duplicate game id", logger.String("game_id", id))
			continue
		}
		played[id] = struct{}{}
		out.Records = append(out.Records, g)
	}

	for _, games := range [][]model.GameRecord{out.Records, out.Schedule} {
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].Before(games[j])
		})
	}

	log.Info(ctx, "games loaded",
		logger.Int("games", len(out.Records)),
		logger.Int("scheduled", len(out.Schedule)),
		logger.Int("skipped_incomplete", out.Skipped[SkipIncomplete]),
		logger.Int("skipped_duplicate", out.Skipped[SkipDuplicate]),
	)
	return out, nil
}

func parseGame(rw row) (model.GameRecord, error) {
	g := model.GameRecord{
		GameID:    rw.str(colGameID),
		HomeTeam:  rw.str(colHomeTeam),
		AwayTeam:  rw.str(colAwayTeam),
		StadiumID: rw.str(colStadiumID),
		Location:  model.Location(rw.str(colLocation)),
		GameType:  model.GameType(rw.str(colGameType)),
	}
	var err error
	if g.Season, err = rw.int(colSeason); err != nil {
		return g, err
	}
	if g.Week, err = rw.int(colWeek); err != nil {
		return g, err
	}
	if g.Result, err = rw.floatOr(colResult, 0); err != nil {
		return g, err
	}
	if g.HomeQBAdj, err = rw.floatOr(colHomeQBAdj, 0); err != nil {
		return g, err
	}
	if g.AwayQBAdj, err = rw.floatOr(colAwayQBAdj, 0); err != nil {
		return g, err
	}
	return g, nil
}
