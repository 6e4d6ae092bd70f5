// Package source reads games and win total priors from CSV exports.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// table is a header-indexed CSV reader.
type table struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{r: cr, columns: make(map[string]int, len(header)), line: 1}
	for i, name := range header {
		t.columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return t, nil
}

// next returns the next record, or io.EOF.
func (t *table) next() (row, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return row{}, io.EOF
	}
	t.line++
	if err != nil {
		return row{}, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, t.line, err)
	}
	return row{t: t, rec: rec}, nil
}

type row struct {
	t   *table
	rec []string
}

// str returns the trimmed value of column, or "" when absent.
func (r row) str(column string) string {
	i, ok := r.t.columns[column]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r row) int(column string) (int, error) {
	v, err := strconv.Atoi(r.str(column))
	if err != nil {
		return 0, r.errorf(column, err)
	}
	return v, nil
}

func (r row) float(column string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(column), 64)
	if err != nil {
		return 0, r.errorf(column, err)
	}
	return v, nil
}

// floatOr returns def for a blank value.
func (r row) floatOr(column string, def float64) (float64, error) {
	if r.str(column) == "" {
		return def, nil
	}
	return r.float(column)
}

func (r row) errorf(column string, err error) error {
	return fmt.Errorf("%w: line %d column %s: %w", ErrMalformedRecord, r.t.line, column, err)
}
