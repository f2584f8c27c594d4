package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/storage"
)

// players command flags.
var (
	playersSeason int
	playersLeague string
	playersTeam   string
	playersLimit  int
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List stored players, highest scorers first",
	Args:  cobra.NoArgs,
	RunE:  runPlayers,
}

var teamsSeason int

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List stored teams",
	Args:  cobra.NoArgs,
	RunE:  runTeams,
}

var scheduleSeason int

var scheduleCmd = &cobra.Command{
	Use:   "schedule <team-id>",
	Short: "Show one team's schedule and results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

func init() {
	playersCmd.Flags().IntVar(&playersSeason, "season", 0, "only this season")
	playersCmd.Flags().StringVar(&playersLeague, "league", "", "only this league: men or women")
	playersCmd.Flags().StringVar(&playersTeam, "team", "", "only this team id")
	playersCmd.Flags().IntVar(&playersLimit, "limit", 0, "show at most N players (0 = all)")

	teamsCmd.Flags().IntVar(&teamsSeason, "season", 0, "only this season")

	scheduleCmd.Flags().IntVar(&scheduleSeason, "season", 0, "only this season")
}

func parseLeagueFlag(s string) (model.League, error) {
	if s == "" {
		return "", nil
	}
	l, ok := model.ParseLeague(s)
	if !ok {
		return "", fmt.Errorf("unknown league %q (want men or women)", s)
	}
	return l, nil
}

func runPlayers(cmd *cobra.Command, args []string) error {
	league, err := parseLeagueFlag(playersLeague)
	if err != nil {
		return err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	players, err := db.LoadPlayersWhere(storage.PlayerFilter{Season: playersSeason, League: league, TeamID: playersTeam})
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	if len(players) == 0 {
		fmt.Fprintln(os.Stdout, "No players stored yet. Run 'bbmetrics scrape' to add some.")
		return nil
	}

	sort.SliceStable(players, func(i, j int) bool {
		a, _ := players[i].Stats()
		b, _ := players[j].Stats()
		return a.PPG > b.PPG
	})
	if playersLimit > 0 && len(players) > playersLimit {
		players = players[:playersLimit]
	}
	report.PrintPlayerTable(os.Stdout, players)
	return nil
}

func runTeams(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	teams, err := db.LoadTeams()
	if err != nil {
		return fmt.Errorf("load teams: %w", err)
	}
	var out []model.Team
	for _, t := range teams {
		if teamsSeason == 0 || t.Season == teamsSeason {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		fmt.Fprintln(os.Stdout, "No teams stored yet. Run 'bbmetrics scrape' to add some.")
		return nil
	}
	report.PrintTeamTable(os.Stdout, out)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	entries, err := db.LoadTeamSchedule(args[0], scheduleSeason)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stdout, "No schedule stored for team %s.\n", args[0])
		return nil
	}

	played := 0
	for _, e := range entries {
		if e.IsPlayed() {
			played++
		}
	}
	fmt.Fprintf(os.Stdout, "\n=== Schedule: %s ===  (%d played, %d upcoming)\n\n",
		entries[0].TeamName, played, len(entries)-played)
	report.PrintScheduleTable(os.Stdout, entries)
	return nil
}
