package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/normalize"
)

// ---- Players ----

// SavePlayers merges a batch of player records into the store. A record
// replaces any stored record with the same identity; within the batch the
// later of two duplicates wins.
func (db *DB) SavePlayers(players []model.PlayerSeason) error {
	return db.withTx(func(tx *sql.Tx) error { return savePlayers(tx, players) })
}

func savePlayers(tx *sql.Tx, players []model.PlayerSeason) error {
	if len(players) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO players(
			player_id, team_id, season, league, name, team_name, link, genius_id,
			raw_stats, ppg, rpg, apg, gp, min, fg_pct, three_pct, ft_pct, tov, eff, spg, bpg,
			extra
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		var raw sql.NullString
		var s model.Stats
		switch row := p.Row.(type) {
		case model.LegacyRow:
			b, err := json.Marshal(row.Fields)
			if err != nil {
				return fmt.Errorf("encode raw stats for %s: %w", p.PlayerID, err)
			}
			raw = sql.NullString{String: string(b), Valid: true}
		case model.NamedRow:
			s = row.Stats
		}
		extra, err := encodeExtra(p.Extra)
		if err != nil {
			return fmt.Errorf("encode extra for %s: %w", p.PlayerID, err)
		}

		_, err = stmt.Exec(
			p.PlayerID, p.TeamID, p.Season, string(p.League), p.Name, p.TeamName, p.Link, p.GeniusID,
			raw, s.PPG, s.RPG, s.APG, s.GP, s.MIN, s.FGPct, s.ThreePct, s.FTPct, s.TO, s.EFF, s.SPG, s.BPG,
			extra,
		)
		if err != nil {
			return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
	}
	return nil
}

func encodeExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(extra)
	return string(b), err
}

// LoadPlayers returns every stored player record with legacy rows converted
// to typed stats and missing leagues backfilled to model.DefaultLeague.
// Records that only become duplicates through the backfill keep the newest
// write. The stored rows are not modified.
func (db *DB) LoadPlayers() ([]model.PlayerSeason, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, team_id, season, league, name, team_name, link, genius_id,
		       raw_stats, ppg, rpg, apg, gp, min, fg_pct, three_pct, ft_pct, tov, eff, spg, bpg,
		       extra
		FROM players
		ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerSeason
	index := make(map[model.PlayerKey]int)
	for rows.Next() {
		var (
			p      model.PlayerSeason
			league string
			raw    sql.NullString
			s      model.Stats
			extra  string
		)
		if err := rows.Scan(
			&p.PlayerID, &p.TeamID, &p.Season, &league, &p.Name, &p.TeamName, &p.Link, &p.GeniusID,
			&raw, &s.PPG, &s.RPG, &s.APG, &s.GP, &s.MIN, &s.FGPct, &s.ThreePct, &s.FTPct, &s.TO, &s.EFF, &s.SPG, &s.BPG,
			&extra,
		); err != nil {
			return nil, err
		}

		p.Name = strings.TrimSpace(p.Name)
		p.League = model.League(league)
		if p.League == "" {
			p.League = model.DefaultLeague
		}
		p.Row = model.NamedRow{Stats: s}
		if raw.Valid {
			var fields []string
			if err := json.Unmarshal([]byte(raw.String), &fields); err != nil {
				return nil, fmt.Errorf("decode raw_stats of player %s: %w", p.PlayerID, err)
			}
			p.Row = model.LegacyRow{Fields: fields}
		}
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &p.Extra); err != nil {
				return nil, fmt.Errorf("decode extra of player %s: %w", p.PlayerID, err)
			}
		}
		p = normalize.Apply(p)

		if i, dup := index[p.Key()]; dup {
			out[i] = p
			continue
		}
		index[p.Key()] = len(out)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlayerFilter narrows LoadPlayersWhere. Zero fields match everything.
type PlayerFilter struct {
	Season int
	League model.League
	TeamID string
}

// Match reports whether p passes the filter.
func (f PlayerFilter) Match(p model.PlayerSeason) bool {
	if f.Season != 0 && p.Season != f.Season {
		return false
	}
	if f.League != "" && p.League != f.League {
		return false
	}
	if f.TeamID != "" && p.TeamID != f.TeamID {
		return false
	}
	return true
}

// LoadPlayersWhere is LoadPlayers restricted by f. Filtering happens after
// the league backfill so pre-league records match model.DefaultLeague.
func (db *DB) LoadPlayersWhere(f PlayerFilter) ([]model.PlayerSeason, error) {
	all, err := db.LoadPlayers()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- Teams ----

// SaveTeams merges a batch of team records; newer records win.
func (db *DB) SaveTeams(teams []model.Team) error {
	return db.withTx(func(tx *sql.Tx) error { return saveTeams(tx, teams) })
}

func saveTeams(tx *sql.Tx, teams []model.Team) error {
	if len(teams) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO teams(team_id, season, league, name, url) VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range teams {
		if _, err := stmt.Exec(t.TeamID, t.Season, string(t.League), t.Name, t.URL); err != nil {
			return fmt.Errorf("insert team %s: %w", t.TeamID, err)
		}
	}
	return nil
}

// LoadTeams returns all stored teams ordered by season (newest first) and name.
func (db *DB) LoadTeams() ([]model.Team, error) {
	rows, err := db.conn.Query(`
		SELECT team_id, season, league, name, url
		FROM teams
		ORDER BY season DESC, league, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		var league string
		if err := rows.Scan(&t.TeamID, &t.Season, &league, &t.Name, &t.URL); err != nil {
			return nil, err
		}
		t.League = model.League(league)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// ---- Schedule ----

// SaveSchedule merges a batch of schedule entries keyed by team, date and
// opponent; newer entries win.
func (db *DB) SaveSchedule(entries []model.ScheduleEntry) error {
	return db.withTx(func(tx *sql.Tx) error { return saveSchedule(tx, entries) })
}

func saveSchedule(tx *sql.Tx, entries []model.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO schedule(team_id, date, opponent, team_name, season, league, opponent_id, result, home_away)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		_, err := stmt.Exec(e.TeamID, e.Date, e.Opponent, e.TeamName, e.Season, string(e.League),
			e.OpponentID, e.Result, e.HomeAway)
		if err != nil {
			return fmt.Errorf("insert schedule entry %s %s: %w", e.TeamID, e.Date, err)
		}
	}
	return nil
}

// LoadSchedule returns every stored schedule entry in insertion order.
func (db *DB) LoadSchedule() ([]model.ScheduleEntry, error) {
	return db.querySchedule(`
		SELECT team_id, date, opponent, team_name, season, league, opponent_id, result, home_away
		FROM schedule
		ORDER BY rowid`)
}

// LoadTeamSchedule returns one team's entries, optionally for one season.
func (db *DB) LoadTeamSchedule(teamID string, season int) ([]model.ScheduleEntry, error) {
	return db.querySchedule(`
		SELECT team_id, date, opponent, team_name, season, league, opponent_id, result, home_away
		FROM schedule
		WHERE team_id = ? AND (? = 0 OR season = ?)
		ORDER BY rowid`, teamID, season, season)
}

func (db *DB) querySchedule(query string, args ...any) ([]model.ScheduleEntry, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		var league string
		if err := rows.Scan(&e.TeamID, &e.Date, &e.Opponent, &e.TeamName, &e.Season, &league,
			&e.OpponentID, &e.Result, &e.HomeAway); err != nil {
			return nil, err
		}
		e.League = model.League(league)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ---- Batches ----

// SaveBatch stores one competition's players, teams and schedule atomically.
func (db *DB) SaveBatch(players []model.PlayerSeason, teams []model.Team, schedule []model.ScheduleEntry) error {
	return db.withTx(func(tx *sql.Tx) error {
		if err := savePlayers(tx, players); err != nil {
			return fmt.Errorf("save players: %w", err)
		}
		if err := saveTeams(tx, teams); err != nil {
			return fmt.Errorf("save teams: %w", err)
		}
		if err := saveSchedule(tx, schedule); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		return nil
	})
}
