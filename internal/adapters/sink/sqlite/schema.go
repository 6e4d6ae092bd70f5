package sqlite

import (
	"strings"

	"github.com/okian/stadiums/internal/domain/model"
)

const createRuns = `CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL,
	games        INTEGER NOT NULL,
	reversions   INTEGER NOT NULL,
	observations INTEGER NOT NULL,
	team_rows    INTEGER NOT NULL,
	league_rows  INTEGER NOT NULL
)`

// Derived tables are dropped and recreated on every write, so their window
// columns always follow the configured windows.
const (
	tableTeamHFA      = "team_hfa"
	tableLeagueHFA    = "league_hfa"
	tableTeamStadiums = "team_stadiums"
	tableRatings      = "elo_ratings"
)

type column struct {
	name string
	typ  string
}

var windowMetrics = []column{ //nolint:gochecknoglobals // column order per window
	{"wins", "INTEGER"},
	{"losses", "INTEGER"},
	{"ties", "INTEGER"},
	{"mov", "REAL"},
	{"hfa", "REAL"},
}

// tableDef describes a derived table. When unique is false the key columns
// get a plain index instead of a primary key.
type tableDef struct {
	name    string
	columns []column
	key     []string
	unique  bool
}

func windowColumns(windows []model.Window) []column {
	out := make([]column, 0, len(windows)*len(windowMetrics))
	for _, w := range windows {
		for _, m := range windowMetrics {
			out = append(out, column{name: m.name + "_" + w.Name, typ: m.typ})
		}
	}
	return out
}

func teamTable(windows []model.Window) tableDef {
	cols := []column{
		{"team", "TEXT NOT NULL"},
		{"stadium", "TEXT NOT NULL"},
		{"season", "INTEGER NOT NULL"},
		{"week", "INTEGER NOT NULL"},
		{"games_played", "INTEGER"},
		{"mov", "REAL"},
		{"expected_mov", "REAL"},
		{"error", "REAL"},
		{"win", "INTEGER"},
		{"loss", "INTEGER"},
		{"tie", "INTEGER"},
	}
	// A pair hosting two games in one league week yields two rows for that
	// slot, so the key is indexed but not unique.
	return tableDef{name: tableTeamHFA, columns: append(cols, windowColumns(windows)...), key: []string{"team", "stadium", "season", "week"}}
}

func leagueTable(windows []model.Window) tableDef {
	cols := []column{
		{"season", "INTEGER NOT NULL"},
		{"week", "INTEGER NOT NULL"},
		{"win", "INTEGER NOT NULL"},
		{"loss", "INTEGER NOT NULL"},
		{"tie", "INTEGER NOT NULL"},
		{"mov", "REAL NOT NULL"},
		{"error", "REAL NOT NULL"},
	}
	return tableDef{name: tableLeagueHFA, columns: append(cols, windowColumns(windows)...), key: []string{"season", "week"}, unique: true}
}

func stadiumTable(windows []model.Window) tableDef {
	cols := []column{
		{"team", "TEXT NOT NULL"},
		{"team_fastr", "TEXT NOT NULL"},
		{"stadium", "TEXT NOT NULL"},
		{"is_current", "INTEGER NOT NULL"},
	}
	return tableDef{name: tableTeamStadiums, columns: append(cols, windowColumns(windows)...), key: []string{"team", "stadium"}, unique: true}
}

func ratingTable() tableDef {
	return tableDef{
		name: tableRatings,
		columns: []column{
			{"team", "TEXT NOT NULL"},
			{"elo", "REAL NOT NULL"},
			{"last_game_season", "INTEGER NOT NULL"},
			{"last_game_week", "INTEGER NOT NULL"},
		},
		key:    []string{"team"},
		unique: true,
	}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (t tableDef) drop() string {
	return "DROP TABLE IF EXISTS " + quote(t.name)
}

func (t tableDef) create() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quote(t.name))
	b.WriteString(" (\n")
	defs := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		defs = append(defs, "\t"+quote(c.name)+" "+c.typ)
	}
	if t.unique && len(t.key) > 0 {
		defs = append(defs, "\tPRIMARY KEY ("+t.keyList()+")")
	}
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

// index returns the statement indexing a non-unique key, or "".
func (t tableDef) index() string {
	if t.unique || len(t.key) == 0 {
		return ""
	}
	return "CREATE INDEX " + quote(t.name+"_key") + " ON " + quote(t.name) + " (" + t.keyList() + ")"
}

func (t tableDef) keyList() string {
	keys := make([]string, len(t.key))
	for i, k := range t.key {
		keys[i] = quote(k)
	}
	return strings.Join(keys, ", ")
}

func (t tableDef) insert() string {
	names := make([]string, len(t.columns))
	marks := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = quote(c.name)
		marks[i] = "?"
	}
	return "INSERT INTO " + quote(t.name) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}
