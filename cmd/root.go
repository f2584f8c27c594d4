package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/config"
	"github.com/pable/go-bball-metrics/internal/fetch"
	"github.com/pable/go-bball-metrics/internal/logging"
	"github.com/pable/go-bball-metrics/internal/scraper"
)

var (
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bbmetrics",
	Short: "Basketball league metrics tool",
	Long: `Scrape player, team and schedule data from hosted league statistics pages,
keep it in a local SQLite store, and compute team strength and matchup projections.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to SQLite database (env BBM_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(matchupCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadRuntime reads .env and the environment, then applies flag overrides.
func loadRuntime(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	if !cmd.Root().PersistentFlags().Changed("db") {
		dbPath = cfg.DBPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger = logging.NewLogger(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
	return nil
}

// newScraper wires a rate-limited fetcher into a scraper. workers <= 0 uses
// the configured worker count.
func newScraper(workers int) *scraper.Scraper {
	if workers <= 0 {
		workers = cfg.Workers
	}
	f := fetch.New(fetch.Options{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
	return scraper.New(f, cfg.BaseURL, workers, logger)
}
