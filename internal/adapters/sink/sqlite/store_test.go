package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/stadiums/internal/domain/model"
	"github.com/okian/stadiums/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stadiums.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func testReport(started time.Time) *model.Report {
	full := model.WindowStats{Wins: intp(1), Losses: intp(0), Ties: intp(0), MOV: floatp(7), HFA: floatp(7)}
	return &model.Report{
		RunID:        uuid.New(),
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
		Games:        2,
		Reversions:   4,
		Observations: []model.HfaObservation{{Season: 2020, Week: 1, Team: "A", Stadium: "S1", MOV: 7, Error: 7}},
		Teams: []model.RollingRow{
			{
				Team: "A", Stadium: "S1", Season: 2020, Week: 1,
				GamesPlayed: intp(1), MOV: floatp(7), ExpectedMOV: floatp(0), Error: floatp(7),
				Win: intp(1), Loss: intp(0), Tie: intp(0),
				Windows: []model.WindowStats{full, full, full},
			},
			{
				Team: "A", Stadium: "S1", Season: 2020, Week: 2, GamesPlayed: intp(1),
				Windows: []model.WindowStats{full, full, full},
			},
		},
		League: []model.LeagueRow{
			{Season: 2020, Week: 1, Win: 1, MOV: 7, Error: 7, Windows: []model.WindowStats{{}, {}, full}},
		},
		Stadiums: []model.TeamStadiumSummary{
			{Team: "A", TeamFastr: "A", Stadium: "S1", IsCurrent: true, Windows: []model.WindowStats{full, full, full}},
		},
		Ratings: []model.TeamRating{
			{Team: "A", Elo: 1520.794, LastGameSeason: 2020, LastGameWeek: 1},
			{Team: "B", Elo: 1479.206, LastGameSeason: 2020, LastGameWeek: 1},
		},
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+quote(table)).Scan(&n))
	return n
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.ErrorIs(t, err, ErrPathRequired)
}

func TestWriteReplacesTables(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	assert.Equal(t, "sqlite", s.Name())

	first := testReport(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Write(ctx, first))

	second := testReport(time.Date(2024, 9, 8, 12, 0, 0, 0, time.UTC))
	second.Teams = second.Teams[:1]
	require.NoError(t, s.Write(ctx, second))

	assert.Equal(t, 1, countRows(t, s.sqlDB, tableTeamHFA))
	assert.Equal(t, 1, countRows(t, s.sqlDB, tableLeagueHFA))
	assert.Equal(t, 1, countRows(t, s.sqlDB, tableTeamStadiums))
	assert.Equal(t, 2, countRows(t, s.sqlDB, tableRatings))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID.String(), runs[0].ID)
	assert.Equal(t, first.RunID.String(), runs[1].ID)
	assert.True(t, second.StartedAt.Equal(runs[0].StartedAt))
	assert.Equal(t, 2, runs[0].Games)
	assert.Equal(t, 4, runs[0].Reversions)
	assert.Equal(t, 1, runs[0].Observations)
	assert.Equal(t, 1, runs[0].TeamRows)
	assert.Equal(t, 2, runs[1].TeamRows)
}

func TestWriteStoresNulls(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	require.NoError(t, s.Write(ctx, testReport(time.Now())))

	var (
		mov    sql.NullFloat64
		played sql.NullInt64
		hfa16  sql.NullFloat64
	)
	require.NoError(t, s.sqlDB.QueryRow(
		`SELECT mov, games_played, hfa_l16 FROM team_hfa WHERE week = 2`).Scan(&mov, &played, &hfa16))
	assert.False(t, mov.Valid)
	assert.Equal(t, int64(1), played.Int64)
	assert.Equal(t, 7.0, hfa16.Float64)

	var l16, all sql.NullFloat64
	require.NoError(t, s.sqlDB.QueryRow(
		`SELECT hfa_l16, hfa_all_time FROM league_hfa WHERE season = 2020 AND week = 1`).Scan(&l16, &all))
	assert.False(t, l16.Valid)
	assert.True(t, all.Valid)

	var current bool
	var fastr string
	require.NoError(t, s.sqlDB.QueryRow(`SELECT is_current, team_fastr FROM team_stadiums WHERE team = 'A'`).Scan(&current, &fastr))
	assert.True(t, current)
	assert.Equal(t, "A", fastr)

	var elo float64
	require.NoError(t, s.sqlDB.QueryRow(`SELECT elo FROM elo_ratings WHERE team = 'B'`).Scan(&elo))
	assert.InDelta(t, 1479.206, elo, 1e-9)
}

func TestWriteFollowsWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	r := testReport(time.Now())
	r.Windows = []model.Window{{Name: "l4", Size: 4}}
	r.Teams = nil
	r.League = []model.LeagueRow{{Season: 2021, Week: 3, Windows: []model.WindowStats{{Wins: intp(2)}}}}
	require.NoError(t, s.Write(context.Background(), r))

	var wins int
	require.NoError(t, s.sqlDB.QueryRow(`SELECT wins_l4 FROM league_hfa`).Scan(&wins))
	assert.Equal(t, 2, wins)
}

func TestWriteDuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	r := testReport(time.Now())
	require.NoError(t, s.Write(ctx, r))

	r.Teams = r.Teams[:1]
	err := s.Write(ctx, r)
	require.Error(t, err)

	assert.Equal(t, 2, countRows(t, s.sqlDB, tableTeamHFA))
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteCancelled(t *testing.T) {
	s, _ := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Write(ctx, testReport(time.Now())), context.Canceled)
}

func TestNilStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Write(context.Background(), &model.Report{}), ErrNotConfigured)
}

func TestWriteSharedSlotRows(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	// Two home games for one pair in the same league week.
	rows, err := window.New().Teams(ctx, []model.HfaObservation{
		{Season: 2020, Week: 1, Team: "A", Stadium: "S", MOV: 7, Error: 7},
		{Season: 2020, Week: 1, Team: "A", Stadium: "S", MOV: -3, Error: -3},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	r := testReport(time.Now())
	r.Teams = rows
	require.NoError(t, s.Write(ctx, r))
	assert.Equal(t, 2, countRows(t, s.sqlDB, tableTeamHFA))

	var played []int
	q, err := s.sqlDB.Query(`SELECT games_played FROM team_hfa WHERE team = 'A' AND stadium = 'S' ORDER BY games_played`)
	require.NoError(t, err)
	defer q.Close()
	for q.Next() {
		var n int
		require.NoError(t, q.Scan(&n))
		played = append(played, n)
	}
	require.NoError(t, q.Err())
	assert.Equal(t, []int{1, 2}, played)

	var indexes int
	require.NoError(t, s.sqlDB.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'team_hfa_key'`).Scan(&indexes))
	assert.Equal(t, 1, indexes)
}
