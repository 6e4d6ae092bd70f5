// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and env vars on top.
// - Rating model parameters have no defaults and must be supplied.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/stadiums/internal/domain/elo"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GamesPath is the games CSV to rate.
	GamesPath string `koanf:"games_path"`

	// PriorsPath is the optional win total priors CSV.
	PriorsPath string `koanf:"priors_path"`

	// OutputDir receives the CSV tables.
	OutputDir string `koanf:"output_dir"`

	// SQLitePath, when set, also writes the tables to a SQLite database.
	SQLitePath string `koanf:"sqlite_path"`

	// MetricsTextfile, when set, receives run metrics in Prometheus text format.
	MetricsTextfile string `koanf:"metrics_textfile"`

	// PushgatewayURL, when set, receives run metrics via push.
	PushgatewayURL string `koanf:"pushgateway_url"`

	// AggregateWorkers bounds parallel team-stadium window computation.
	AggregateWorkers int `koanf:"aggregate_workers"`

	// Elo holds the rating model keys: elo_init, z, k, b, wt_weight, reversion.
	Elo map[string]float64 `koanf:"elo"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		OutputDir:        "data",
		AggregateWorkers: runtime.NumCPU(),
	}
}

// EloConfig validates the rating keys and returns the model config.
func (c *Config) EloConfig() (elo.Config, error) {
	cfg, err := elo.NewConfig(c.Elo)
	if err != nil {
		return elo.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks fields needed before a run starts.
func (c *Config) Validate() error {
	if c.GamesPath == "" {
		return fmt.Errorf("%w: games_path must not be empty", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if _, err := c.EloConfig(); err != nil {
		return err
	}
	return nil
}
