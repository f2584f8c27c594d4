package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pable/go-bball-metrics/internal/model"
)

var teamURLID = regexp.MustCompile(`/team/([^/?#]+)`)

// legacyRecord is one player as written by older exports: stats are the raw
// table cells in column order.
type legacyRecord struct {
	ID       string          `json:"id"`
	PlayerID string          `json:"player_id"`
	TeamID   string          `json:"team_id"`
	TeamURL  string          `json:"team_url"`
	TeamName string          `json:"team_name"`
	Season   json.RawMessage `json:"season"`
	League   string          `json:"league"`
	Name     string          `json:"name"`
	Link     string          `json:"link"`
	RawStats []any           `json:"raw_stats"`
}

// DecodeLegacy reads a JSON array of legacy player records. Records keep
// their raw cells; normalization happens when they are loaded. Records
// without a player id, team or season are skipped and counted.
func DecodeLegacy(r io.Reader) (players []model.PlayerSeason, skipped int, err error) {
	var recs []legacyRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, 0, fmt.Errorf("decode legacy records: %w", err)
	}
	for _, rec := range recs {
		p, ok := rec.toPlayer()
		if !ok {
			skipped++
			continue
		}
		players = append(players, p)
	}
	return players, skipped, nil
}

func (rec legacyRecord) toPlayer() (model.PlayerSeason, bool) {
	id := rec.PlayerID
	if id == "" {
		id = rec.ID
	}
	team := rec.TeamID
	if team == "" {
		if m := teamURLID.FindStringSubmatch(rec.TeamURL); m != nil {
			team = m[1]
		}
	}
	season := parseSeason(rec.Season)
	if id == "" || team == "" || season == 0 {
		return model.PlayerSeason{}, false
	}

	var league model.League
	if rec.League != "" {
		league, _ = model.ParseLeague(rec.League)
	}
	fields := make([]string, len(rec.RawStats))
	for i, v := range rec.RawStats {
		fields[i] = cellText(v)
	}
	return model.PlayerSeason{
		PlayerID: id,
		TeamID:   team,
		Season:   season,
		League:   league,
		Name:     strings.TrimSpace(rec.Name),
		TeamName: rec.TeamName,
		Link:     rec.Link,
		Row:      model.LegacyRow{Fields: fields},
	}, true
}

// parseSeason accepts 2024 or "2024".
func parseSeason(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, _ = strconv.Atoi(s)
	}
	return n
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
