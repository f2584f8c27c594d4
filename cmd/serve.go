package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/api"
	"github.com/pable/go-bball-metrics/internal/logging"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/refresh"
	"github.com/pable/go-bball-metrics/internal/scraper"
	"github.com/pable/go-bball-metrics/internal/storage"
)

var (
	serveNoSchedule     bool
	serveRefreshOnStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the store over HTTP and refresh it on a schedule",
	Long: `Starts the JSON API on $API_HOST:$API_PORT and, unless --no-schedule is
given, refreshes every known competition on the $BBM_SCHEDULE cron expression
(default "0 6 * * *"). A refresh can also be triggered with
POST /api/v1/refresh; overlapping refreshes are rejected.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "disable the periodic refresh")
	serveCmd.Flags().BoolVar(&serveRefreshOnStart, "refresh-on-start", false, "run one refresh immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := newScraper(0)
	h := api.New(db, func(ctx context.Context) (model.ScrapeRun, error) {
		return refresh.Run(ctx, sc, db, scraper.DefaultCompetitions(), logger)
	}, logger)

	scheduledRefresh := func() {
		if _, err := h.Refresh(ctx); errors.Is(err, api.ErrRefreshRunning) {
			logging.Warn(logger, "scheduled refresh skipped, another refresh is running")
		}
	}

	var c *cron.Cron
	if !serveNoSchedule {
		c = cron.New()
		if _, err := c.AddFunc(cfg.Schedule, scheduledRefresh); err != nil {
			return fmt.Errorf("invalid BBM_SCHEDULE %q: %w", cfg.Schedule, err)
		}
		c.Start()
		logging.Info(logger, "refresh scheduler started", "schedule", cfg.Schedule)
	}
	if serveRefreshOnStart {
		go scheduledRefresh()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(h, cfg.CORSAllowOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // POST /refresh is synchronous
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(logger, "starting API", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	logging.Info(logger, "shutting down")

	if c != nil {
		<-c.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info(logger, "server stopped")
	return nil
}
