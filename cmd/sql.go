package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Tables:
  players(player_id, team_id, season, league, name, team_name, link, genius_id,
    raw_stats, ppg, rpg, apg, gp, min, fg_pct, three_pct, ft_pct, tov, eff,
    spg, bpg, extra)
  teams(team_id, season, league, name, url)
  schedule(team_id, date, opponent, team_name, season, league, opponent_id,
    result, home_away)
  metadata(key, value)
  scrape_runs(run_id, started_at, finished_at, competitions, skipped,
    players, teams, schedule)

Legacy imports keep their stats in raw_stats with zeros in the numeric columns
until loaded by the other commands, so filter them with "raw_stats IS NULL".

Examples:
  bbmetrics sql "SELECT name, team_name, ppg, gp FROM players
    WHERE season = 2025 AND league = 'Women' AND raw_stats IS NULL
    ORDER BY ppg DESC LIMIT 10"
  bbmetrics sql "SELECT team_name, COUNT(*) AS played FROM schedule
    WHERE season = 2025 AND result != 'Scheduled' GROUP BY team_id"
  bbmetrics sql "SELECT * FROM scrape_runs ORDER BY started_at DESC LIMIT 5"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
