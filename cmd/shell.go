package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/normalize"
	"github.com/pable/go-bball-metrics/internal/report"
	"github.com/pable/go-bball-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("bbmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("bbmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "summary":
			shellSummary(db)
		case "teams":
			shellTeams(db, optionalInt(args, 0))
		case "players":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: players <team-id> [season]")
				continue
			}
			shellPlayers(db, args[0], optionalInt(args, 1))
		case "schedule":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: schedule <team-id> [season]")
				continue
			}
			shellSchedule(db, args[0], optionalInt(args, 1))
		case "team":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: team <team-id> [season|all]")
				continue
			}
			shellTeam(db, args[0], args[1:])
		case "matchup":
			if len(args) < 2 {
				cError.Fprintln(os.Stderr, "usage: matchup <team-a> <team-b> [season|all]")
				continue
			}
			shellMatchup(db, args[0], args[1], args[2:])
		case "audit":
			shellAudit(db)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"summary", "store overview and last update"},
		{"teams [season]", "list stored teams"},
		{"players <team-id> [season]", "a team's players, top scorers first"},
		{"schedule <team-id> [season]", "a team's schedule and results"},
		{"team <team-id> [season|all]", "rotation strength (all = multi-season)"},
		{"matchup <a> <b> [season|all]", "head-to-head projection"},
		{"audit", "check stored players against sanity bounds"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// optionalInt returns args[i] as an int, or 0 if absent or not a number.
func optionalInt(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0
	}
	return n
}

func shellSummary(db *storage.DB) {
	ov, err := db.GetOverview()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	last := ov.LastUpdated
	if last == "" {
		last = "never"
	}
	cHeader.Println("\n=== Store ===")
	fmt.Printf("  %d player records (%d legacy), %d teams, %d played matches\n",
		ov.Players, ov.LegacyPlayers, ov.Teams, ov.PlayedMatches)
	fmt.Printf("  last updated: %s\n\n", last)
}

func shellTeams(db *storage.DB, season int) {
	teams, err := db.LoadTeams()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	var out []model.Team
	for _, t := range teams {
		if season == 0 || t.Season == season {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		cMuted.Println("No teams stored.")
		return
	}
	report.PrintTeamTable(os.Stdout, out)
}

func shellPlayers(db *storage.DB, teamID string, season int) {
	players, err := db.LoadPlayersWhere(storage.PlayerFilter{Season: season, TeamID: teamID})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(players) == 0 {
		cMuted.Printf("No players stored for team %s.\n", teamID)
		return
	}
	sort.SliceStable(players, func(i, j int) bool {
		a, _ := players[i].Stats()
		b, _ := players[j].Stats()
		return a.PPG > b.PPG
	})
	report.PrintPlayerTable(os.Stdout, players)
}

func shellSchedule(db *storage.DB, teamID string, season int) {
	entries, err := db.LoadTeamSchedule(teamID, season)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		cMuted.Printf("No schedule stored for team %s.\n", teamID)
		return
	}
	report.PrintScheduleTable(os.Stdout, entries)
}

func shellTeam(db *storage.DB, teamID string, rest []string) {
	players, err := db.LoadPlayers()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rest) > 0 && rest[0] == "all" {
		ms := aggregator.MultiSeasonAggregate(players, teamID)
		if ms == nil {
			cWarn.Printf("No data for team %s.\n", teamID)
			return
		}
		report.PrintMultiSeason(os.Stdout, ms)
		return
	}
	season := optionalInt(rest, 0)
	if season == 0 {
		season = latestSeason(players, teamID)
	}
	ts := aggregator.TeamAggregate(players, teamID, season)
	if ts == nil {
		cWarn.Printf("No data for team %s in season %d.\n", teamID, season)
		return
	}
	report.PrintTeamStrength(os.Stdout, ts)
}

func shellMatchup(db *storage.DB, a, b string, rest []string) {
	players, err := db.LoadPlayers()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rest) > 0 && rest[0] == "all" {
		report.PrintMultiSeasonMatchup(os.Stdout, aggregator.MultiSeasonMatchup(players, a, b))
		return
	}
	season := optionalInt(rest, 0)
	if season == 0 {
		season = latestSeason(players, a, b)
	}
	report.PrintMatchup(os.Stdout, aggregator.Matchup(players, a, b, season))
}

func shellAudit(db *storage.DB) {
	players, err := db.LoadPlayers()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintAudit(os.Stdout, len(players), normalize.Audit(players))
}
