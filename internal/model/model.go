package model

import "strings"

// TimestampLayout is the fixed format of the store's last-updated marker.
const TimestampLayout = "2006-01-02 15:04:05"

// League identifies the gender division of a competition.
type League string

const (
	LeagueMen   League = "Men"
	LeagueWomen League = "Women"
)

// DefaultLeague is assigned to stored records that predate league tagging.
const DefaultLeague = LeagueMen

// ParseLeague accepts "men"/"women" in any case, plus the Swedish
// "herr"/"dam" labels used by the source site.
func ParseLeague(s string) (League, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "men", "m", "herr":
		return LeagueMen, true
	case "women", "w", "dam":
		return LeagueWomen, true
	default:
		return "", false
	}
}

// ---- Player statistics ----

// Stats holds the per-game rates of one player-season. All fields default to 0.
type Stats struct {
	PPG      float64 `json:"ppg"`
	RPG      float64 `json:"rpg"`
	APG      float64 `json:"apg"`
	GP       float64 `json:"gp"`
	MIN      float64 `json:"min"`
	FGPct    float64 `json:"fg_pct"`
	ThreePct float64 `json:"three_pct"`
	FTPct    float64 `json:"ft_pct"`
	TO       float64 `json:"to"`
	EFF      float64 `json:"eff"`
	SPG      float64 `json:"spg"`
	BPG      float64 `json:"bpg"`
}

// Row is the performance payload of a player-season: either a LegacyRow of
// untyped text cells or a NamedRow of typed fields.
type Row interface {
	isRow()
}

// LegacyRow is the positional array form written by older scrapes. It must be
// converted to a NamedRow before any numeric use.
type LegacyRow struct {
	Fields []string
}

// NamedRow carries typed stats that are trusted as-is.
type NamedRow struct {
	Stats Stats
}

func (LegacyRow) isRow() {}
func (NamedRow) isRow()  {}

// PlayerSeason is one player's performance for one team, season and league.
type PlayerSeason struct {
	PlayerID string
	TeamID   string
	Season   int
	League   League

	Name     string
	TeamName string
	Link     string // profile URL on the source site
	GeniusID string

	Row   Row
	Extra map[string]string // non-canonical scraped columns
}

// PlayerKey is the identity under which a newer record replaces an older one.
type PlayerKey struct {
	PlayerID string
	Season   int
	TeamID   string
	League   League
}

// Key returns the record's identity.
func (p PlayerSeason) Key() PlayerKey {
	return PlayerKey{PlayerID: p.PlayerID, Season: p.Season, TeamID: p.TeamID, League: p.League}
}

// Stats returns the typed stats. ok is false while the row is still legacy
// (or absent), in which case the zero Stats is returned.
func (p PlayerSeason) Stats() (s Stats, ok bool) {
	if nr, isNamed := p.Row.(NamedRow); isNamed {
		return nr.Stats, true
	}
	return Stats{}, false
}

// IsLegacy reports whether the record still carries an unconverted raw row.
func (p PlayerSeason) IsLegacy() bool {
	_, ok := p.Row.(LegacyRow)
	return ok
}

// ---- Teams and schedule ----

// Team is one club's entry in one competition.
type Team struct {
	TeamID string `json:"team_id"`
	Season int    `json:"season"`
	League League `json:"league"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

const (
	ResultScheduled = "Scheduled"
	Home            = "Home"
	Away            = "Away"
)

// ScheduleEntry is one team's participation in one match. Every match yields
// two entries, one per side.
type ScheduleEntry struct {
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	Season     int    `json:"season"`
	League     League `json:"league"`
	Date       string `json:"date"` // free text from the source page
	Opponent   string `json:"opponent"`
	OpponentID string `json:"opponent_id"`
	Result     string `json:"result"` // "home-away" score or ResultScheduled
	HomeAway   string `json:"home_away"`
}

// IsPlayed reports whether the entry carries a final score.
func (e ScheduleEntry) IsPlayed() bool {
	return e.Result != "" && e.Result != ResultScheduled
}

// ---- Competitions and runs ----

// Competition is one league/season combination tracked by the source site.
// An empty ID marks a season whose competition id is not yet known.
type Competition struct {
	ID     string
	Season int
	League League
	Label  string
}

// Available reports whether the competition can be scraped.
func (c Competition) Available() bool {
	return c.ID != ""
}

// ScrapeRun is the audit record of one refresh.
type ScrapeRun struct {
	RunID        string `json:"run_id"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
	Competitions int    `json:"competitions"`
	Skipped      int    `json:"skipped"`
	Players      int    `json:"players"`
	Teams        int    `json:"teams"`
	Schedule     int    `json:"schedule"`
}
