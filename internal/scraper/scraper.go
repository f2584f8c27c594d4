// Package scraper drives page fetching and parsing across one competition
// and across the list of tracked competitions. Every step degrades to an
// empty result on failure; nothing short of cancellation aborts a run.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pable/go-bball-metrics/internal/logging"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/parser"
)

// Page kinds under a competition root.
const (
	endpointPlayerStats = "statistics/player"
	endpointTeamList    = "statistics/team"
	endpointSchedule    = "schedule"
)

// Getter retrieves one page. ok is false when the page is unavailable.
type Getter interface {
	Fetch(ctx context.Context, url string) (body string, ok bool)
}

// Result is everything scraped for one or more competitions.
type Result struct {
	Players  []model.PlayerSeason
	Teams    []model.Team
	Schedule []model.ScheduleEntry
}

// Empty reports whether nothing was scraped.
func (r Result) Empty() bool {
	return len(r.Players) == 0 && len(r.Teams) == 0 && len(r.Schedule) == 0
}

// Scraper orchestrates a Getter and the parser. Requests to the upstream are
// paced by the Getter; the worker count only bounds how many team pages may
// be waiting at once.
type Scraper struct {
	getter  Getter
	baseURL string
	workers int
	logger  *slog.Logger
}

// New returns a Scraper. workers < 1 is treated as 1 (sequential).
func New(getter Getter, baseURL string, workers int, logger *slog.Logger) *Scraper {
	if workers < 1 {
		workers = 1
	}
	return &Scraper{getter: getter, baseURL: baseURL, workers: workers, logger: logger}
}

func (s *Scraper) pageURL(competitionID, endpoint string) string {
	return fmt.Sprintf("%s/%s/%s?", s.baseURL, competitionID, endpoint)
}

// ScrapeCompetition collects joined player records, teams and schedule
// entries for one competition, all tagged with its season and league.
func (s *Scraper) ScrapeCompetition(ctx context.Context, comp model.Competition) Result {
	log := s.logger
	if log != nil {
		log = log.With(logging.FieldCompetition, comp.ID, logging.FieldSeason, comp.Season, logging.FieldLeague, comp.League)
	}
	start := time.Now()
	var res Result

	var stats map[string]*parser.PlayerFields
	if html, ok := s.getter.Fetch(ctx, s.pageURL(comp.ID, endpointPlayerStats)); ok {
		stats = parser.ParsePlayerStats(html)
	}
	if len(stats) == 0 {
		logging.Warn(log, "no player statistics found")
	}

	teamsURL := s.pageURL(comp.ID, endpointTeamList)
	if html, ok := s.getter.Fetch(ctx, teamsURL); ok {
		res.Teams = parser.ParseTeams(html, teamsURL, comp.ID)
	}
	for i := range res.Teams {
		res.Teams[i].Season = comp.Season
		res.Teams[i].League = comp.League
	}
	if len(res.Teams) == 0 {
		logging.Warn(log, "no teams found")
	}

	if len(stats) > 0 {
		res.Players = s.scrapeRosters(ctx, log, comp, res.Teams, stats)
	}

	if html, ok := s.getter.Fetch(ctx, s.pageURL(comp.ID, endpointSchedule)); ok {
		res.Schedule = parser.ParseSchedule(html)
	}
	for i := range res.Schedule {
		res.Schedule[i].Season = comp.Season
		res.Schedule[i].League = comp.League
	}

	logging.Info(log, "competition scraped",
		"players", len(res.Players),
		"teams", len(res.Teams),
		"schedule", len(res.Schedule),
		logging.FieldDurationMS, time.Since(start).Milliseconds())
	return res
}

// scrapeRosters fetches every team page through a bounded pool and joins the
// roster ids against the global stats. Output follows team listing order.
func (s *Scraper) scrapeRosters(ctx context.Context, log *slog.Logger, comp model.Competition, teams []model.Team, stats map[string]*parser.PlayerFields) []model.PlayerSeason {
	perTeam := make([][]model.PlayerSeason, len(teams))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, team := range teams {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			perTeam[i] = s.scrapeTeam(ctx, log, comp, team, stats)
			return nil
		})
	}
	g.Wait()

	var players []model.PlayerSeason
	for _, ps := range perTeam {
		players = append(players, ps...)
	}
	return players
}

func (s *Scraper) scrapeTeam(ctx context.Context, log *slog.Logger, comp model.Competition, team model.Team, stats map[string]*parser.PlayerFields) []model.PlayerSeason {
	html, ok := s.getter.Fetch(ctx, team.URL)
	if !ok {
		logging.Warn(log, "team page unavailable", logging.FieldTeamID, team.TeamID)
		return nil
	}

	roster := parser.ParseRoster(html)
	players := make([]model.PlayerSeason, 0, len(roster))
	dropped := 0
	for _, id := range roster {
		pf, found := stats[id]
		if !found {
			dropped++
			continue
		}
		st, extra := pf.Stats()
		players = append(players, model.PlayerSeason{
			PlayerID: id,
			TeamID:   team.TeamID,
			Season:   comp.Season,
			League:   comp.League,
			Name:     pf.Name,
			TeamName: team.Name,
			Link:     pf.Link,
			GeniusID: pf.ID,
			Row:      model.NamedRow{Stats: st},
			Extra:    extra,
		})
	}
	logging.Debug(log, "team roster joined",
		logging.FieldTeamID, team.TeamID, logging.FieldCount, len(players), "without_stats", dropped)
	return players
}

// Summary counts what a Run did.
type Summary struct {
	Competitions int
	Skipped      int
	Players      int
	Teams        int
	Schedule     int
}

// Sink receives each competition's result as soon as it is scraped.
type Sink func(comp model.Competition, res Result) error

// Run scrapes every available competition in order and hands each result to
// sink. Competitions without a known id are skipped. A sink error stops the
// run and is returned; results already delivered stay delivered.
func (s *Scraper) Run(ctx context.Context, comps []model.Competition, sink Sink) (Summary, error) {
	var sum Summary
	for _, comp := range comps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !comp.Available() {
			sum.Skipped++
			logging.Warn(s.logger, "competition id not available, skipping",
				logging.FieldSeason, comp.Season, logging.FieldLeague, comp.League)
			continue
		}

		res := s.ScrapeCompetition(ctx, comp)
		sum.Competitions++
		sum.Players += len(res.Players)
		sum.Teams += len(res.Teams)
		sum.Schedule += len(res.Schedule)

		if sink != nil {
			if err := sink(comp, res); err != nil {
				return sum, fmt.Errorf("store competition %s: %w", comp.ID, err)
			}
		}
	}
	return sum, nil
}
