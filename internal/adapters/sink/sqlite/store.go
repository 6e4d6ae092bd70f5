// Package sqlite persists run reports in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store writes the rolling tables, team-stadium summary and ratings of each
// run, and keeps a log of past runs.
type Store struct {
	sqlDB  *sql.DB
	logger logger.Logger
}

// Run is one entry of the run log.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Games        int
	Reversions   int
	Observations int
	TeamRows     int
	LeagueRows   int
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens (creating if needed) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(createRuns); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	s := &Store{sqlDB: sqlDB, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Write replaces every derived table with the report's contents and appends
// a run log entry, all in one transaction.
func (s *Store) Write(ctx context.Context, r *model.Report) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	windows := r.WindowSet()
	team := teamTable(windows)
	if err = replace(ctx, tx, team, len(r.Teams), func(i int) []any {
		row := r.Teams[i]
		args := []any{
			row.Team, row.Stadium, row.Season, row.Week,
			nullInt(row.GamesPlayed), nullFloat(row.MOV), nullFloat(row.ExpectedMOV), nullFloat(row.Error),
			nullInt(row.Win), nullInt(row.Loss), nullInt(row.Tie),
		}
		return append(args, windowArgs(windows, row.Windows)...)
	}); err != nil {
		return err
	}

	league := leagueTable(windows)
	if err = replace(ctx, tx, league, len(r.League), func(i int) []any {
		row := r.League[i]
		args := []any{row.Season, row.Week, row.Win, row.Loss, row.Tie, row.MOV, row.Error}
		return append(args, windowArgs(windows, row.Windows)...)
	}); err != nil {
		return err
	}

	stadiums := stadiumTable(windows)
	if err = replace(ctx, tx, stadiums, len(r.Stadiums), func(i int) []any {
		row := r.Stadiums[i]
		args := []any{row.Team, row.TeamFastr, row.Stadium, row.IsCurrent}
		return append(args, windowArgs(windows, row.Windows)...)
	}); err != nil {
		return err
	}

	if err = replace(ctx, tx, ratingTable(), len(r.Ratings), func(i int) []any {
		row := r.Ratings[i]
		return []any{row.Team, row.Elo, row.LastGameSeason, row.LastGameWeek}
	}); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, games, reversions, observations, team_rows, league_rows)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID.String(), toMillis(r.StartedAt), toMillis(r.FinishedAt),
		r.Games, r.Reversions, len(r.Observations), len(r.Teams), len(r.League),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info(ctx, "sqlite outputs written",
		logger.String("run_id", r.RunID.String()),
		logger.Int("team_rows", len(r.Teams)),
		logger.Int("league_rows", len(r.League)),
	)
	return nil
}

// Runs returns the run log, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, games, reversions, observations, team_rows, league_rows
		 FROM runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Games, &r.Reversions, &r.Observations, &r.TeamRows, &r.LeagueRows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = fromMillis(started)
		r.FinishedAt = fromMillis(finished)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// replace drops, recreates and fills one table.
func replace(ctx context.Context, tx *sql.Tx, t tableDef, n int, args func(int) []any) error {
	if _, err := tx.ExecContext(ctx, t.drop()); err != nil {
		return fmt.Errorf("drop %s: %w", t.name, err)
	}
	if _, err := tx.ExecContext(ctx, t.create()); err != nil {
		return fmt.Errorf("create %s: %w", t.name, err)
	}
	if idx := t.index(); idx != "" {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("index %s: %w", t.name, err)
		}
	}
	stmt, err := tx.PrepareContext(ctx, t.insert())
	if err != nil {
		return fmt.Errorf("prepare %s: %w", t.name, err)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return nil
}

// windowArgs flattens stats for the configured windows.
func windowArgs(windows []model.Window, stats []model.WindowStats) []any {
	out := make([]any, 0, len(windows)*len(windowMetrics))
	for i := range windows {
		var w model.WindowStats
		if i < len(stats) {
			w = stats[i]
		}
		out = append(out, nullInt(w.Wins), nullInt(w.Losses), nullInt(w.Ties), nullFloat(w.MOV), nullFloat(w.HFA))
	}
	return out
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
