package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/refresh"
	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/scraper"
	"github.com/pable/go-bball-metrics/internal/storage"
)

// scrape command flags.
var (
	// scrapeCompetition is an explicit upstream competition id; it bypasses
	// the built-in competition list.
	scrapeCompetition string
	scrapeSeason      int
	scrapeLeague      string
	scrapeWorkers     int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Refresh the store from the league statistics pages",
	Long: `Scrapes player statistics, teams, rosters and schedules for every known
competition (or a filtered subset) and merges them into the store. Each
competition is saved as soon as it completes; Ctrl-C stops the run and keeps
what finished.

Examples:
  bbmetrics scrape
  bbmetrics scrape --season 2025 --league women
  bbmetrics scrape --competition 41539 --season 2025 --league men --workers 4`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCompetition, "competition", "", "scrape this competition id instead of the built-in list")
	scrapeCmd.Flags().IntVar(&scrapeSeason, "season", 0, "only this season (required with --competition)")
	scrapeCmd.Flags().StringVar(&scrapeLeague, "league", "", "only this league: men or women")
	scrapeCmd.Flags().IntVar(&scrapeWorkers, "workers", 0, "team pages fetched in parallel (default $BBM_WORKERS)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	comps, err := scrapeTargets()
	if err != nil {
		return err
	}
	if len(comps) == 0 {
		return fmt.Errorf("no competitions match season=%d league=%q", scrapeSeason, scrapeLeague)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	run, err := refresh.Run(ctx, newScraper(scrapeWorkers), db, comps, logger)
	fmt.Fprintf(os.Stdout, "\n=== Scrape Run ===\n\n")
	report.PrintRunTable(os.Stdout, []model.ScrapeRun{run})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("interrupted: completed competitions were saved")
		}
		return err
	}
	return nil
}

func scrapeTargets() ([]model.Competition, error) {
	var league model.League
	if scrapeLeague != "" {
		l, ok := model.ParseLeague(scrapeLeague)
		if !ok {
			return nil, fmt.Errorf("unknown league %q (want men or women)", scrapeLeague)
		}
		league = l
	}

	if scrapeCompetition != "" {
		if scrapeSeason == 0 {
			return nil, fmt.Errorf("--season is required with --competition")
		}
		if league == "" {
			league = model.DefaultLeague
		}
		return []model.Competition{{
			ID:     scrapeCompetition,
			Season: scrapeSeason,
			League: league,
			Label:  fmt.Sprintf("competition %s", scrapeCompetition),
		}}, nil
	}
	return scraper.Filter(scraper.DefaultCompetitions(), scrapeSeason, league), nil
}
