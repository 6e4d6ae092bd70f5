package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/stadiums/internal/adapters/sink/csvsink"
	"github.com/okian/stadiums/internal/adapters/sink/sqlite"
	app "github.com/okian/stadiums/internal/app"
	"github.com/okian/stadiums/internal/config"
	"github.com/okian/stadiums/pkg/logger"
	"github.com/okian/stadiums/pkg/metrics"
)

// pushTimeout bounds the final pushgateway flush.
const pushTimeout = 10 * time.Second

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger.Get(), metrics.Default()); err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run executes one batch: load config and inputs, rate, aggregate, publish
// and flush metrics.
func run(ctx context.Context, log logger.Logger, m *metrics.Manager) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	eloCfg, err := cfg.EloConfig()
	if err != nil {
		return err
	}

	sinks := []app.Sink{csvsink.New(cfg.OutputDir, csvsink.WithLogger(log.Named("csv")))}
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(cfg.SQLitePath, sqlite.WithLogger(log.Named("sqlite")))
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn(ctx, "close sqlite", logger.Error(err))
			}
		}()
		sinks = append(sinks, store)
	}

	svc := app.New(eloCfg,
		app.WithLogger(log),
		app.WithAggregateWorkers(cfg.AggregateWorkers),
		app.WithSinks(sinks...),
		app.WithMetrics(m),
	)

	gamesFile, err := os.Open(cfg.GamesPath)
	if err != nil {
		return fmt.Errorf("open games: %w", err)
	}
	defer gamesFile.Close()

	var priors io.Reader
	if cfg.PriorsPath != "" {
		priorsFile, err := os.Open(cfg.PriorsPath)
		if err != nil {
			return fmt.Errorf("open priors: %w", err)
		}
		defer priorsFile.Close()
		priors = priorsFile
	}

	games, winTotals, err := svc.Load(ctx, gamesFile, priors)
	if err != nil {
		return err
	}
	report, err := svc.Run(ctx, games, winTotals)
	if err != nil {
		return err
	}
	publishErr := svc.Publish(ctx, report)

	// Metrics are flushed even when a sink failed.
	var flushErr error
	if cfg.MetricsTextfile != "" {
		flushErr = m.WriteTextfile(cfg.MetricsTextfile)
	}
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		flushErr = errors.Join(flushErr, m.Push(pushCtx, cfg.PushgatewayURL, report.RunID.String()))
	}
	return errors.Join(publishErr, flushErr)
}
