package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/storage"
)

var (
	exportSeason int
	exportOut    string
)

// scoutingReport is the JSON document written by export. Downstream tools
// (dashboards, the analyze command, spreadsheets) read it as-is.
type scoutingReport struct {
	TeamID      string                          `json:"team_id"`
	TeamName    string                          `json:"team_name"`
	Season      int                             `json:"season"`
	GeneratedAt string                          `json:"generated_at"`
	LastUpdated string                          `json:"last_updated,omitempty"`
	Record      teamRecord                      `json:"record"`
	Strength    *aggregator.TeamStrength        `json:"strength"`
	MultiSeason *aggregator.MultiSeasonStrength `json:"multi_season,omitempty"`
	Schedule    []model.ScheduleEntry           `json:"schedule"`
}

// teamRecord is the win/loss record derived from played schedule entries.
type teamRecord struct {
	Played   int `json:"played"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Upcoming int `json:"upcoming"`
}

var exportCmd = &cobra.Command{
	Use:   "export <team-id>",
	Short: "Export a team scouting report as JSON",
	Long: `Writes one team's scouting report: rotation strength and leaders for the
season, multi-season averages, win/loss record and the full schedule.

Example:
  bbmetrics export 100 --season 2025 --out dolphins.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportSeason, "season", 0, "season to report (default: latest)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, args []string) error {
	teamID := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	rep, err := buildScoutingReport(db, teamID, exportSeason)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}

func buildScoutingReport(db *storage.DB, teamID string, season int) (*scoutingReport, error) {
	players, err := db.LoadPlayers()
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if season == 0 {
		season = latestSeason(players, teamID)
	}
	ts := aggregator.TeamAggregate(players, teamID, season)
	if ts == nil {
		return nil, fmt.Errorf("no data for team %s in season %d", teamID, season)
	}

	schedule, err := db.LoadTeamSchedule(teamID, season)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if schedule == nil {
		schedule = []model.ScheduleEntry{}
	}
	lastUpdated, _, err := db.LastUpdated()
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	return &scoutingReport{
		TeamID:      teamID,
		TeamName:    ts.TeamName,
		Season:      season,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		LastUpdated: lastUpdated,
		Record:      recordOf(schedule),
		Strength:    ts,
		MultiSeason: aggregator.MultiSeasonAggregate(players, teamID),
		Schedule:    schedule,
	}, nil
}

// recordOf counts wins and losses from the team's side of each played entry.
// Results are "home-away" scores.
func recordOf(entries []model.ScheduleEntry) teamRecord {
	var rec teamRecord
	for _, e := range entries {
		if !e.IsPlayed() {
			rec.Upcoming++
			continue
		}
		home, away, ok := parseScore(e.Result)
		if !ok {
			continue
		}
		rec.Played++
		own, opp := home, away
		if e.HomeAway == model.Away {
			own, opp = away, home
		}
		switch {
		case own > opp:
			rec.Wins++
		case own < opp:
			rec.Losses++
		}
	}
	return rec
}

func parseScore(result string) (home, away int, ok bool) {
	h, a, found := strings.Cut(result, "-")
	if !found {
		return 0, 0, false
	}
	home, errH := strconv.Atoi(strings.TrimSpace(h))
	away, errA := strconv.Atoi(strings.TrimSpace(a))
	return home, away, errH == nil && errA == nil
}
