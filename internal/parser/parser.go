// Package parser extracts player statistics, team listings, rosters and
// schedules from competition pages. Every function is pure: it consumes
// already-fetched markup and never fails. Markup that does not match the
// expected layout yields an empty or partial result.
package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pable/go-bball-metrics/internal/model"
)

// RosterContainerID is the element that wraps a team page's player list.
const RosterContainerID = "BLOCK_TEAM_HOME_PLAYERS"

var (
	personIDRe = regexp.MustCompile(`/person/(\d+)`)
	teamIDRe   = regexp.MustCompile(`/team/(\d+)`)
)

// synonyms maps alternative header spellings to canonical field names. A
// synonym is only folded in when the canonical key is absent.
var synonyms = []struct{ from, to string }{
	{"G", "GP"},
	{"MPG", "MIN"},
	{"STPG", "SPG"},
	{"BLKPG", "BPG"},
	{"TOPG", "TO"},
}

func newDocument(html string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// ---- Player statistics ----

// Value is one parsed stat cell.
type Value struct {
	Num   float64
	Text  string
	IsNum bool
}

// String renders numeric values without trailing zeros.
func (v Value) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

func (v Value) blank() bool {
	return !v.IsNum && v.Text == ""
}

// parseValue reads a cell as a number, then as a number with its percent
// sign stripped, and otherwise keeps the text.
func parseValue(text string) Value {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Value{Num: n, Text: text, IsNum: true}
	}
	if strings.Contains(text, "%") {
		stripped := strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
		if n, err := strconv.ParseFloat(stripped, 64); err == nil {
			return Value{Num: n, Text: text, IsNum: true}
		}
	}
	return Value{Text: text}
}

// PlayerFields is one player's row merged across every stats table on a page.
type PlayerFields struct {
	ID     string
	Name   string
	Link   string
	Fields map[string]Value
}

// canonical maps header names to the typed stat they populate.
var canonical = map[string]func(*model.Stats) *float64{
	"PPG": func(s *model.Stats) *float64 { return &s.PPG },
	"RPG": func(s *model.Stats) *float64 { return &s.RPG },
	"APG": func(s *model.Stats) *float64 { return &s.APG },
	"GP":  func(s *model.Stats) *float64 { return &s.GP },
	"MIN": func(s *model.Stats) *float64 { return &s.MIN },
	"FG%": func(s *model.Stats) *float64 { return &s.FGPct },
	"3P%": func(s *model.Stats) *float64 { return &s.ThreePct },
	"FT%": func(s *model.Stats) *float64 { return &s.FTPct },
	"TO":  func(s *model.Stats) *float64 { return &s.TO },
	"EFF": func(s *model.Stats) *float64 { return &s.EFF },
	"SPG": func(s *model.Stats) *float64 { return &s.SPG },
	"BPG": func(s *model.Stats) *float64 { return &s.BPG },
}

// Stats splits the merged fields into typed stats and the remaining columns.
// Canonical fields that are absent or non-numeric stay 0.
func (p *PlayerFields) Stats() (model.Stats, map[string]string) {
	var s model.Stats
	extra := make(map[string]string)
	for k, v := range p.Fields {
		if field, ok := canonical[k]; ok && v.IsNum {
			*field(&s) = v.Num
			continue
		}
		extra[k] = v.String()
	}
	return s, extra
}

// ParsePlayerStats reads every table on a statistics page and returns the
// merged fields keyed by player id. Rows whose first cell has no profile link
// are skipped.
func ParsePlayerStats(html string) map[string]*PlayerFields {
	players := make(map[string]*PlayerFields)
	doc, ok := newDocument(html)
	if !ok {
		return players
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(th.Text()))
		})

		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			link := cells.First().Find("a").First()
			href, _ := link.Attr("href")
			m := personIDRe.FindStringSubmatch(href)
			if m == nil {
				return
			}
			id := m[1]

			p, seen := players[id]
			if !seen {
				p = &PlayerFields{
					ID:     id,
					Name:   strings.TrimSpace(link.Text()),
					Link:   href,
					Fields: make(map[string]Value),
				}
				players[id] = p
			}

			cells.Each(func(i int, td *goquery.Selection) {
				if i == 0 || i >= len(headers) || headers[i] == "" {
					return
				}
				v := parseValue(td.Text())
				if _, set := p.Fields[headers[i]]; set && v.blank() {
					return
				}
				p.Fields[headers[i]] = v
			})
		})
	})

	for _, p := range players {
		normalizeSynonyms(p.Fields)
	}
	return players
}

func normalizeSynonyms(fields map[string]Value) {
	for _, syn := range synonyms {
		v, ok := fields[syn.from]
		if !ok {
			continue
		}
		if _, has := fields[syn.to]; has {
			continue
		}
		fields[syn.to] = v
		delete(fields, syn.from)
	}
}

// ---- Teams and rosters ----

// ParseTeams returns the teams linked from a competition's team listing,
// deduplicated by id in page order. Relative links are resolved against
// pageURL. Season and league are left for the caller to fill.
func ParseTeams(html, pageURL, competitionID string) []model.Team {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	base, _ := url.Parse(pageURL)
	marker := "/competition/" + competitionID + "/team/"

	var teams []model.Team
	index := make(map[string]int)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, marker) {
			return
		}
		m := teamIDRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		name := strings.TrimSpace(a.Text())
		if i, seen := index[m[1]]; seen {
			// Logo links come first and carry no text.
			if teams[i].Name == "" {
				teams[i].Name = name
			}
			return
		}
		index[m[1]] = len(teams)
		teams = append(teams, model.Team{
			TeamID: m[1],
			Name:   name,
			URL:    resolve(base, href),
		})
	})
	return teams
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ParseRoster returns the unique player ids linked inside a team page's
// roster container, in page order.
func ParseRoster(html string) []string {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	var ids []string
	seen := make(map[string]bool)
	doc.Find("div#" + RosterContainerID + " a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := personIDRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	})
	return ids
}

// ---- Schedule ----

type side struct {
	id, name, score string
}

func parseSide(s *goquery.Selection) side {
	a := s.Find("div.team-name a").First()
	href, _ := a.Attr("href")
	var id string
	if m := teamIDRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	}
	score := strings.TrimSpace(s.Find("div.team-score").First().Text())
	if score == "" {
		score = "0"
	}
	return side{id: id, name: strings.TrimSpace(a.Text()), score: score}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseSchedule returns two entries per match block, one from each side's
// point of view. Blocks where either side lacks a team id are skipped. Season
// and league are left for the caller to fill.
func ParseSchedule(html string) []model.ScheduleEntry {
	doc, ok := newDocument(html)
	if !ok {
		return nil
	}
	var entries []model.ScheduleEntry
	doc.Find("div.match-wrap").Each(func(_ int, block *goquery.Selection) {
		date := strings.TrimSpace(block.Find("div.match-time span").First().Text())
		if date == "" {
			date = "Unknown"
		}

		scope := block.Find("div.sched-teams").First()
		if scope.Length() == 0 {
			scope = block
		}
		homeSel := scope.Find("div.home-team").First()
		awaySel := scope.Find("div.visiting-team").First()
		if awaySel.Length() == 0 {
			awaySel = scope.Find("div.away-team").First()
		}
		home, away := parseSide(homeSel), parseSide(awaySel)
		if home.name == "" || away.name == "" || home.id == "" || away.id == "" {
			return
		}

		result := model.ResultScheduled
		if block.HasClass("STATUS_COMPLETE") && isDigits(home.score) && isDigits(away.score) {
			result = home.score + "-" + away.score
		}

		entries = append(entries,
			model.ScheduleEntry{
				TeamID: home.id, TeamName: home.name, Date: date,
				Opponent: away.name, OpponentID: away.id,
				Result: result, HomeAway: model.Home,
			},
			model.ScheduleEntry{
				TeamID: away.id, TeamName: away.name, Date: date,
				Opponent: home.name, OpponentID: home.id,
				Result: result, HomeAway: model.Away,
			},
		)
	})
	return entries
}
