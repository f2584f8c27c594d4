package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-bball-metrics/internal/model"
)

const keyLastUpdated = "last_updated"

// SetLastUpdated overwrites the refresh marker.
func (db *DB) SetLastUpdated(t time.Time) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO metadata(key, value) VALUES (?, ?)`,
		keyLastUpdated, t.Format(model.TimestampLayout))
	return err
}

// LastUpdated returns the refresh marker; ok is false if the store has never
// been refreshed.
func (db *DB) LastUpdated() (ts string, ok bool, err error) {
	err = db.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, keyLastUpdated).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ts, true, nil
}

// InsertScrapeRun records (or updates) one refresh. Uses INSERT OR REPLACE so
// a run can be written at start and again on completion.
func (db *DB) InsertScrapeRun(r model.ScrapeRun) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO scrape_runs(run_id, started_at, finished_at, competitions, skipped, players, teams, schedule)
		VALUES (?,?,?,?,?,?,?,?)`,
		r.RunID, r.StartedAt, r.FinishedAt, r.Competitions, r.Skipped, r.Players, r.Teams, r.Schedule)
	return err
}

// ListScrapeRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListScrapeRuns(limit int) ([]model.ScrapeRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT run_id, started_at, finished_at, competitions, skipped, players, teams, schedule
		FROM scrape_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		var r model.ScrapeRun
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Competitions, &r.Skipped,
			&r.Players, &r.Teams, &r.Schedule); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Overview is a high-level summary of the store.
type Overview struct {
	Players        int
	LegacyPlayers  int
	UniquePlayers  int
	Teams          int
	ScheduleRows   int
	PlayedMatches  int
	Seasons        []SeasonCount
	LastUpdated    string
	ScrapeRunCount int
}

// SeasonCount is the number of player records for one season and league.
type SeasonCount struct {
	Season  int
	League  string
	Players int
	Teams   int
}

// GetOverview summarises what the store holds.
func (db *DB) GetOverview() (*Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN raw_stats IS NOT NULL THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT player_id)
		FROM players`).Scan(&ov.Players, &ov.LegacyPlayers, &ov.UniquePlayers)
	if err != nil {
		return nil, fmt.Errorf("count players: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM teams`).Scan(&ov.Teams); err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}
	err = db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN result NOT IN ('', ?) THEN 1 ELSE 0 END), 0) / 2
		FROM schedule`, model.ResultScheduled).Scan(&ov.ScheduleRows, &ov.PlayedMatches)
	if err != nil {
		return nil, fmt.Errorf("count schedule: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM scrape_runs`).Scan(&ov.ScrapeRunCount); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	ts, ok, err := db.LastUpdated()
	if err != nil {
		return nil, err
	}
	if ok {
		ov.LastUpdated = ts
	}

	rows, err := db.conn.Query(`
		SELECT season, CASE WHEN league = '' THEN ? ELSE league END AS lg,
		       COUNT(*), COUNT(DISTINCT team_id)
		FROM players
		GROUP BY season, lg
		ORDER BY season DESC, lg`, string(model.DefaultLeague))
	if err != nil {
		return nil, fmt.Errorf("season breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SeasonCount
		if err := rows.Scan(&sc.Season, &sc.League, &sc.Players, &sc.Teams); err != nil {
			return nil, err
		}
		ov.Seasons = append(ov.Seasons, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ov, nil
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
