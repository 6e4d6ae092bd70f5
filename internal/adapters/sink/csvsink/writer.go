// Package csvsink writes run reports as CSV files.
package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/pkg/logger"
)

// Writer writes the rolling tables, team-stadium summary and ratings into a
// directory, replacing files from earlier runs.
type Writer struct {
	dir    string
	logger logger.Logger
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Writer rooted at dir.
func New(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, logger: logger.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Write renders every table of the report.
func (w *Writer) Write(ctx context.Context, r *model.Report) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	windows := r.WindowSet()

	tables := []struct {
		file string
		rows int
		fill func(*csv.Writer) error
	}{
		{FileTeamHFA, len(r.Teams), func(cw *csv.Writer) error {
			if err := cw.Write(teamHeader(windows)); err != nil {
				return err
			}
			for _, row := range r.Teams {
				if err := cw.Write(teamRecord(windows, row)); err != nil {
					return err
				}
			}
			return nil
		}},
		{FileLeagueHFA, len(r.League), func(cw *csv.Writer) error {
			if err := cw.Write(leagueHeader(windows)); err != nil {
				return err
			}
			for _, row := range r.League {
				if err := cw.Write(leagueRecord(windows, row)); err != nil {
					return err
				}
			}
			return nil
		}},
		{FileTeamStadiums, len(r.Stadiums), func(cw *csv.Writer) error {
			if err := cw.Write(stadiumHeader(windows)); err != nil {
				return err
			}
			for _, s := range r.Stadiums {
				if err := cw.Write(stadiumRecord(windows, s)); err != nil {
					return err
				}
			}
			return nil
		}},
		{FileRatings, len(r.Ratings), func(cw *csv.Writer) error {
			if err := cw.Write(ratingHeader()); err != nil {
				return err
			}
			for _, t := range r.Ratings {
				if err := cw.Write(ratingRecord(t)); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.dir, t.file)
		if err := writeFile(path, t.fill); err != nil {
			return fmt.Errorf("write %s: %w", t.file, err)
		}
		w.logger.Debug(ctx, "csv table written", logger.String("path", path), logger.Int("rows", t.rows))
	}
	w.logger.Info(ctx, "csv outputs written", logger.String("dir", w.dir), logger.String("run_id", r.RunID.String()))
	return nil
}

// writeFile writes to a temp file in the same directory and renames it into
// place so readers never see a partial table.
func writeFile(path string, fill func(*csv.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	cw := csv.NewWriter(f)
	if err = fill(cw); err != nil {
		return err
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
