// Package refresh runs a full scrape into the store and records it as a
// scrape run.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-bball-metrics/internal/logging"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/scraper"
)

// Store is the part of the persisted store a refresh writes to.
type Store interface {
	SaveBatch(players []model.PlayerSeason, teams []model.Team, schedule []model.ScheduleEntry) error
	InsertScrapeRun(r model.ScrapeRun) error
	SetLastUpdated(t time.Time) error
}

// Run scrapes comps and saves each competition as soon as it completes. The
// run is recorded when it starts and again when it ends, whether or not it
// succeeded. The last-updated marker only moves on success.
func Run(ctx context.Context, sc *scraper.Scraper, store Store, comps []model.Competition, logger *slog.Logger) (model.ScrapeRun, error) {
	start := time.Now()
	run := model.ScrapeRun{
		RunID:     uuid.NewString(),
		StartedAt: start.Format(model.TimestampLayout),
	}
	log := logger
	if log != nil {
		log = log.With(logging.FieldRunID, run.RunID)
	}
	if err := store.InsertScrapeRun(run); err != nil {
		return run, fmt.Errorf("record run start: %w", err)
	}
	logging.Info(log, "refresh started", logging.FieldCount, len(comps))

	sum, runErr := sc.Run(ctx, comps, func(comp model.Competition, res scraper.Result) error {
		if res.Empty() {
			logging.Warn(log, "competition returned no data", logging.FieldCompetition, comp.ID)
			return nil
		}
		return store.SaveBatch(res.Players, res.Teams, res.Schedule)
	})

	run.FinishedAt = time.Now().Format(model.TimestampLayout)
	run.Competitions = sum.Competitions
	run.Skipped = sum.Skipped
	run.Players = sum.Players
	run.Teams = sum.Teams
	run.Schedule = sum.Schedule
	if err := store.InsertScrapeRun(run); err != nil && runErr == nil {
		runErr = fmt.Errorf("record run end: %w", err)
	}
	if runErr != nil {
		logging.Error(log, "refresh failed", runErr)
		return run, runErr
	}

	if err := store.SetLastUpdated(time.Now()); err != nil {
		return run, fmt.Errorf("set last updated: %w", err)
	}
	logging.Info(log, "refresh finished",
		"players", run.Players, "teams", run.Teams, "schedule", run.Schedule,
		logging.FieldDurationMS, time.Since(start).Milliseconds())
	return run, nil
}
