package config_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/okian/stadiums/internal/config"
	"github.com/okian/stadiums/internal/domain/elo"
	"github.com/smartystreets/goconvey/convey"
)

const fullYAML = `
log_level: debug
games_path: /data/games.csv
priors_path: /data/wt_ratings.csv
output_dir: /tmp/out
aggregate_workers: 3
elo:
  elo_init: 1500
  z: 400
  k: 20
  b: 0.6
  wt_weight: 0.2
  reversion: 0.2
`

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with a complete YAML file", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(fullYAML)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load every field", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.GamesPath, convey.ShouldEqual, "/data/games.csv")
				convey.So(cfg.PriorsPath, convey.ShouldEqual, "/data/wt_ratings.csv")
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/out")
				convey.So(cfg.AggregateWorkers, convey.ShouldEqual, 3)

				eloCfg, err := cfg.EloConfig()
				convey.So(err, convey.ShouldBeNil)
				convey.So(eloCfg, convey.ShouldResemble, elo.Config{EloInit: 1500, Z: 400, K: 20, B: 0.6, WTWeight: 0.2, Reversion: 0.2})
			})
		})

		convey.Convey("When loading the JSON rating conf", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(`{"elo": {"elo_init": 1505, "z": 401, "k": 9.5, "b": 10, "wt_weight": 0.5, "reversion": 0.1}, "games_path": "g.csv"}`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then JSON parses as YAML", func() {
				convey.So(err, convey.ShouldBeNil)
				eloCfg, err := cfg.EloConfig()
				convey.So(err, convey.ShouldBeNil)
				convey.So(eloCfg.EloInit, convey.ShouldEqual, 1505)
				convey.So(eloCfg.K, convey.ShouldEqual, 9.5)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "data")
			})
		})

		convey.Convey("When environment variables override the file", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(fullYAML)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			_ = os.Setenv("STADIUMS_OUTPUT_DIR", "/var/out")
			_ = os.Setenv("STADIUMS_ELO__K", "32")
			_ = os.Setenv("STADIUMS_ELO__WT_WEIGHT", "0.35")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins and nested keys resolve", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/var/out")
				convey.So(cfg.Elo["k"], convey.ShouldEqual, 32)
				convey.So(cfg.Elo["wt_weight"], convey.ShouldEqual, 0.35)
				convey.So(cfg.Elo["z"], convey.ShouldEqual, 400)
			})
		})

		convey.Convey("When rating keys are missing", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(`
games_path: g.csv
elo:
  elo_init: 1500
  k: 20
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fails naming the missing keys", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, elo.ErrMissingConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "b, reversion, wt_weight, z")
			})
		})

		convey.Convey("When games_path is empty", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(fullYAML)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			_ = os.Setenv("STADIUMS_GAMES_PATH", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "games_path must not be empty")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			clearConfigEnvVars()
			_ = os.Setenv("STADIUMS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric environment variable is invalid", func() {
			clearConfigEnvVars()
			tmpFile := createTempConfigFile(fullYAML)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("STADIUMS_CONFIG", tmpFile)
			_ = os.Setenv("STADIUMS_AGGREGATE_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "STADIUMS_") {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "stadiums-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
