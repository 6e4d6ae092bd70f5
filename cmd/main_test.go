package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/stadiums/internal/adapters/sink/csvsink"
	"github.com/okian/stadiums/internal/adapters/sink/sqlite"
	"github.com/okian/stadiums/internal/domain/elo"
	"github.com/okian/stadiums/pkg/logger"
	"github.com/okian/stadiums/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

const testGames = `game_id,season,week,game_type,location,home_team,away_team,result,stadium_id
2020_01_KC_HOU,2020,1,REG,Home,KC,HOU,14,KAN00
2020_01_LV_CAR,2020,1,REG,Away,CAR,LV,-4,CHA00
2020_02_HOU_KC,2020,2,REG,Home,HOU,KC,-3,HOU00
2021_01_KC_CLE,2021,1,REG,Home,KC,CLE,4,KAN00
2021_20_KC_CLE,2021,20,DIV,Home,KC,CLE,,KAN00
`

const testPriors = `team,season,wt_rating_elo
KC,2021,1600
CLE,2021,1520
HOU,2021,1450
`

const testConfig = `log_level: debug
elo:
  elo_init: 1500
  z: 400
  k: 20
  b: 0.6
  wt_weight: 0.2
  reversion: 0.2
`

func writeFile(dir, name, body string) string {
	path := filepath.Join(dir, name)
	convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
	return path
}

func TestRun(t *testing.T) {
	convey.Convey("Given inputs and a config on disk", t, func() {
		dir := t.TempDir()
		out := filepath.Join(dir, "out")
		dbPath := filepath.Join(dir, "hfa.db")
		textfile := filepath.Join(dir, "stadiums.prom")

		t.Setenv("STADIUMS_CONFIG", writeFile(dir, "stadiums.yaml", testConfig))
		t.Setenv("STADIUMS_GAMES_PATH", writeFile(dir, "games.csv", testGames))
		t.Setenv("STADIUMS_PRIORS_PATH", writeFile(dir, "priors.csv", testPriors))
		t.Setenv("STADIUMS_OUTPUT_DIR", out)
		t.Setenv("STADIUMS_SQLITE_PATH", dbPath)
		t.Setenv("STADIUMS_METRICS_TEXTFILE", textfile)
		t.Setenv("STADIUMS_AGGREGATE_WORKERS", "2")
		defer func() { _ = logger.SetLevelString("info") }()

		m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))

		convey.Convey("When the batch runs", func() {
			err := run(context.Background(), logger.Nop(), m)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every CSV output exists", func() {
				for _, name := range []string{csvsink.FileTeamHFA, csvsink.FileLeagueHFA, csvsink.FileTeamStadiums, csvsink.FileRatings} {
					info, err := os.Stat(filepath.Join(out, name))
					convey.So(err, convey.ShouldBeNil)
					convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
				}
			})

			convey.Convey("Then the run is logged in sqlite", func() {
				store, err := sqlite.Open(dbPath)
				convey.So(err, convey.ShouldBeNil)
				defer store.Close()
				runs, err := store.Runs(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 1)
				convey.So(runs[0].Games, convey.ShouldEqual, 4)
				convey.So(runs[0].Observations, convey.ShouldEqual, 3)
			})

			convey.Convey("Then metrics are exported to the textfile", func() {
				body, err := os.ReadFile(textfile)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, "stadiums_hfa_games_processed_total 4")
			})
		})

		convey.Convey("When a rating key is missing", func() {
			t.Setenv("STADIUMS_CONFIG", writeFile(dir, "partial.yaml", "elo:\n  elo_init: 1500\n"))
			err := run(context.Background(), logger.Nop(), m)

			convey.Convey("Then the run fails naming the config problem", func() {
				convey.So(errors.Is(err, elo.ErrMissingConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the games file does not exist", func() {
			t.Setenv("STADIUMS_GAMES_PATH", filepath.Join(dir, "missing.csv"))
			err := run(context.Background(), logger.Nop(), m)

			convey.Convey("Then the run fails opening it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "open games")
			})
		})
	})
}
