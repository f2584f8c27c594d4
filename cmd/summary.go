package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/normalize"
	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display what the store holds: player records (and how many are still in
legacy raw form), teams, schedule rows and played matches, a per-season
breakdown, and when the store was last refreshed.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent scrape runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check stored players against sanity bounds",
	Long: `Loads every player record (normalizing legacy rows) and reports records
that break the sanity bounds: RPG > 25, APG > 20, MIN > 49, or exactly 100 PPG
with more than one game played. Exits non-zero when violations are found.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "show at most N runs (0 = all)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Players == 0 && ov.Teams == 0 {
		fmt.Fprintln(os.Stdout, "Nothing stored yet. Run 'bbmetrics scrape' to add data.")
		return nil
	}

	lastUpdated := ov.LastUpdated
	if lastUpdated == "" {
		lastUpdated = "never"
	}
	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Player records : %d (%d legacy)\n", ov.Players, ov.LegacyPlayers)
	fmt.Fprintf(os.Stdout, "  Unique players : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Teams          : %d\n", ov.Teams)
	fmt.Fprintf(os.Stdout, "  Schedule rows  : %d (%d played matches)\n", ov.ScheduleRows, ov.PlayedMatches)
	fmt.Fprintf(os.Stdout, "  Scrape runs    : %d\n", ov.ScrapeRunCount)
	fmt.Fprintf(os.Stdout, "  Last updated   : %s\n", lastUpdated)

	if len(ov.Seasons) == 0 {
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n--- Seasons ---\n\n")
	st := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	st.Header("SEASON", "LEAGUE", "PLAYERS", "TEAMS")
	for _, s := range ov.Seasons {
		st.Append(strconv.Itoa(s.Season), s.League, strconv.Itoa(s.Players), strconv.Itoa(s.Teams))
	}
	st.Render()
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListScrapeRuns(runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No scrape runs recorded yet.")
		return nil
	}
	report.PrintRunTable(os.Stdout, runs)
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	players, err := loadAllPlayers()
	if err != nil {
		return err
	}
	violations := normalize.Audit(players)
	report.PrintAudit(os.Stdout, len(players), violations)
	if len(violations) > 0 {
		return fmt.Errorf("audit found %d violation(s)", len(violations))
	}
	return nil
}
