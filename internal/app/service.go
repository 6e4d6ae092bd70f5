// Package service wires the rating engine, the rolling aggregator and the
// output sinks into one batch pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/stadiums/internal/adapters/source"
	"github.com/okian/stadiums/internal/domain/elo"
	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/internal/domain/window"
	"github.com/okian/stadiums/pkg/logger"
	"github.com/okian/stadiums/pkg/metrics"
)

// Pipeline stage names used for timing.
const (
	StageLoad    = "load"
	StageRatings = "ratings"
	StageTeams   = "team_windows"
	StageLeague  = "league_windows"
	StageSummary = "summary"
	StagePublish = "publish"
)

// Sink receives a finished run report.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *model.Report) error
}

// Service runs the HFA pipeline.
type Service struct {
	mu sync.RWMutex

	cfg     elo.Config
	workers int
	windows []model.Window
	sinks   []Sink
	metrics *metrics.Manager
	logger  logger.Logger
	now     func() time.Time

	// State of the last completed run.
	last *model.Report
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAggregateWorkers bounds the goroutines used for team rolling windows.
func WithAggregateWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithWindows overrides the rolling window definitions.
func WithWindows(windows ...model.Window) Option {
	return func(s *Service) {
		if len(windows) > 0 {
			s.windows = windows
		}
	}
}

// WithSinks adds output sinks, written in the given order.
func WithSinks(sinks ...Sink) Option {
	return func(s *Service) {
		for _, sink := range sinks {
			if sink != nil {
				s.sinks = append(s.sinks, sink)
			}
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to the process-wide one.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service for a validated rating configuration.
func New(cfg elo.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		workers: runtime.NumCPU(),
		windows: model.Windows,
		metrics: metrics.Default(),
		logger:  logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the games log and the win total priors. A nil priors reader
// yields no priors, so reversion falls back to the initial rating.
func (s *Service) Load(ctx context.Context, games, priors io.Reader) (source.Games, elo.Priors, error) {
	start := time.Now()
	g, err := source.LoadGames(ctx, games, s.logger.Named("source"))
	if err != nil {
		return source.Games{}, nil, fmt.Errorf("load games: %w", err)
	}
	for reason, n := range g.Skipped {
		s.metrics.RecordGamesSkipped(reason, n)
	}

	p := elo.Priors{}
	if priors != nil {
		if p, err = source.LoadPriors(ctx, priors); err != nil {
			return source.Games{}, nil, fmt.Errorf("load priors: %w", err)
		}
	}
	s.stage(ctx, StageLoad, start)
	return g, p, nil
}

// Run rates every played game in order and derives the rolling tables, the
// team-stadium summary and the final ratings. The summary reads
// games.Schedule when present so scheduled relocations count.
func (s *Service) Run(ctx context.Context, games source.Games, priors elo.Priors) (*model.Report, error) {
	report := &model.Report{RunID: uuid.New(), StartedAt: s.now()}
	log := s.logger.Named("run")
	log.Info(ctx, "run started",
		logger.String("run_id", report.RunID.String()),
		logger.Int("games", len(games.Records)),
		logger.Int("priors", len(priors)),
	)

	start := time.Now()
	engine := elo.New(s.cfg, priors, elo.WithLogger(s.logger.Named("elo")))
	res, err := engine.Run(ctx, games.Records)
	if err != nil {
		return nil, fmt.Errorf("rate games: %w", err)
	}
	for _, out := range res.Outcomes {
		s.metrics.ObserveRatingShift(out.HomeShift)
	}
	report.Games = res.Games
	report.Reversions = res.Reversions
	report.Observations = res.Observations
	report.Ratings = engine.Ratings()
	s.metrics.RecordGamesProcessed(res.Games)
	s.metrics.RecordReversions(res.Reversions)
	s.metrics.RecordObservations(len(res.Observations))
	s.metrics.UpdateTeamsTracked(len(report.Ratings))
	s.stage(ctx, StageRatings, start)

	agg := window.New(
		window.WithWorkers(s.workers),
		window.WithWindows(s.windows...),
		window.WithLogger(s.logger.Named("window")),
	)
	report.Windows = agg.Windows()

	start = time.Now()
	if report.Teams, err = agg.Teams(ctx, report.Observations); err != nil {
		return nil, fmt.Errorf("team windows: %w", err)
	}
	s.stage(ctx, StageTeams, start)

	start = time.Now()
	report.League = agg.League(ctx, report.Observations)
	s.stage(ctx, StageLeague, start)
	s.metrics.UpdateTableRows(len(report.Teams), len(report.League))

	start = time.Now()
	schedule := games.Schedule
	if schedule == nil {
		schedule = games.Records
	}
	report.Stadiums = window.Summarize(schedule, report.Teams)
	s.stage(ctx, StageSummary, start)

	report.FinishedAt = s.now()
	s.metrics.MarkRunFinished(report.FinishedAt)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	log.Info(ctx, "run finished",
		logger.String("run_id", report.RunID.String()),
		logger.Int("observations", len(report.Observations)),
		logger.Int("team_rows", len(report.Teams)),
		logger.Int("league_rows", len(report.League)),
		logger.Int("stadiums", len(report.Stadiums)),
		logger.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// Publish writes the report to every sink. A failing sink does not stop the
// others; all failures are returned joined.
func (s *Service) Publish(ctx context.Context, r *model.Report) error {
	if r == nil {
		return nil
	}
	start := time.Now()
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, r); err != nil {
			s.metrics.RecordSinkError(sink.Name())
			s.logger.Error(ctx, "sink write failed", logger.String("sink", sink.Name()), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
			continue
		}
		for _, table := range []string{"team_hfa", "league_hfa", "team_stadiums", "elo_ratings"} {
			s.metrics.RecordSinkWrite(sink.Name(), table)
		}
	}
	s.stage(ctx, StagePublish, start)
	return errors.Join(errs...)
}

// Last returns the report of the most recent successful run, or nil.
func (s *Service) Last() *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// GetStats returns a summary of the most recent run.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"sinks":   len(s.sinks),
		"workers": s.workers,
		"ran":     s.last != nil,
	}
	if s.last != nil {
		stats["run_id"] = s.last.RunID.String()
		stats["games"] = s.last.Games
		stats["reversions"] = s.last.Reversions
		stats["observations"] = len(s.last.Observations)
		stats["team_rows"] = len(s.last.Teams)
		stats["league_rows"] = len(s.last.League)
		stats["teams"] = len(s.last.Ratings)
	}
	return stats
}

func (s *Service) stage(ctx context.Context, name string, start time.Time) {
	took := time.Since(start)
	s.metrics.RecordStageDuration(name, took)
	s.logger.Debug(ctx, "stage finished", logger.String("stage", name), logger.Duration("took", took))
}
