package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/storage"
)

var (
	teamSeason int
	teamMulti  bool
	teamRoster bool
)

// teamCmd prints a team's rotation strength for one season or across all seasons.
var teamCmd = &cobra.Command{
	Use:   "team <team-id>",
	Short: "Team strength from its top rotation",
	Long: `Aggregates a team's top-8 rotation by scoring: totals, shooting averages,
leaders and the rotation itself. Without --season the team's most recent
season is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runTeam,
}

var (
	matchupSeason int
	matchupMulti  bool
)

// matchupCmd projects one team against another.
var matchupCmd = &cobra.Command{
	Use:   "matchup <team-a> <team-b>",
	Short: "Head-to-head projection of two teams",
	Long: `Compares two teams' rotations: differentials (A minus B), individual
matchup edges, tactical notes and projected lineups. Without --season the most
recent season both teams played is used.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatchup,
}

func init() {
	teamCmd.Flags().IntVar(&teamSeason, "season", 0, "season to aggregate (default: latest)")
	teamCmd.Flags().BoolVar(&teamMulti, "multi", false, "average over every stored season")
	teamCmd.Flags().BoolVar(&teamRoster, "roster", false, "also print the full roster")

	matchupCmd.Flags().IntVar(&matchupSeason, "season", 0, "season to compare (default: latest shared)")
	matchupCmd.Flags().BoolVar(&matchupMulti, "multi", false, "compare multi-season averages")
}

func loadAllPlayers() ([]model.PlayerSeason, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	players, err := db.LoadPlayers()
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	return players, nil
}

// latestSeason returns the newest season in which every given team has
// records, or 0 if there is none.
func latestSeason(players []model.PlayerSeason, teamIDs ...string) int {
	seasons := make(map[string]map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		seasons[id] = make(map[int]bool)
	}
	for _, p := range players {
		if s, ok := seasons[p.TeamID]; ok {
			s[p.Season] = true
		}
	}
	best := 0
	for season := range seasons[teamIDs[0]] {
		shared := true
		for _, id := range teamIDs[1:] {
			if !seasons[id][season] {
				shared = false
				break
			}
		}
		if shared && season > best {
			best = season
		}
	}
	return best
}

func runTeam(cmd *cobra.Command, args []string) error {
	teamID := args[0]
	players, err := loadAllPlayers()
	if err != nil {
		return err
	}

	if teamMulti {
		ms := aggregator.MultiSeasonAggregate(players, teamID)
		if ms == nil {
			fmt.Fprintf(os.Stdout, "No data for team %s.\n", teamID)
			return nil
		}
		report.PrintMultiSeason(os.Stdout, ms)
		return nil
	}

	season := teamSeason
	if season == 0 {
		season = latestSeason(players, teamID)
	}
	ts := aggregator.TeamAggregate(players, teamID, season)
	if ts == nil {
		fmt.Fprintf(os.Stdout, "No data for team %s in season %d.\n", teamID, season)
		return nil
	}
	report.PrintTeamStrength(os.Stdout, ts)
	if teamRoster {
		fmt.Fprintf(os.Stdout, "\n=== Full Roster (%d) ===\n\n", ts.RosterSize)
		report.PrintPlayerLines(os.Stdout, ts.Roster)
	}
	return nil
}

func runMatchup(cmd *cobra.Command, args []string) error {
	a, b := args[0], args[1]
	players, err := loadAllPlayers()
	if err != nil {
		return err
	}

	if matchupMulti {
		report.PrintMultiSeasonMatchup(os.Stdout, aggregator.MultiSeasonMatchup(players, a, b))
		return nil
	}

	season := matchupSeason
	if season == 0 {
		season = latestSeason(players, a, b)
	}
	report.PrintMatchup(os.Stdout, aggregator.Matchup(players, a, b, season))
	return nil
}
