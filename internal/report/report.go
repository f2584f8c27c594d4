package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/normalize"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func f1(v float64) string  { return fmt.Sprintf("%.1f", v) }
func pct(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func signed(v float64) string { return fmt.Sprintf("%+.1f", v) }

// PrintPlayerTable prints one row per player record. Records that still carry
// a legacy row are marked in the RAW column.
func PrintPlayerTable(w io.Writer, players []model.PlayerSeason) {
	table := newTable(w)
	table.Header("NAME", "TEAM", "SEASON", "LEAGUE", "GP", "MIN", "PPG", "RPG", "APG",
		"FG%", "3P%", "FT%", "TO", "EFF", "RAW")

	for _, p := range players {
		s, named := p.Stats()
		raw := ""
		if !named {
			raw = "yes"
		}
		team := p.TeamName
		if team == "" {
			team = p.TeamID
		}
		table.Append(
			p.Name,
			team,
			strconv.Itoa(p.Season),
			string(p.League),
			fmt.Sprintf("%.0f", s.GP),
			f1(s.MIN),
			f1(s.PPG),
			f1(s.RPG),
			f1(s.APG),
			pct(s.FGPct),
			pct(s.ThreePct),
			pct(s.FTPct),
			f1(s.TO),
			f1(s.EFF),
			raw,
		)
	}
	table.Render()
}

// PrintTeamTable prints the stored teams.
func PrintTeamTable(w io.Writer, teams []model.Team) {
	table := newTable(w)
	table.Header("ID", "NAME", "SEASON", "LEAGUE")
	for _, t := range teams {
		table.Append(t.TeamID, t.Name, strconv.Itoa(t.Season), string(t.League))
	}
	table.Render()
}

// PrintScheduleTable prints schedule entries from each listed team's side.
func PrintScheduleTable(w io.Writer, entries []model.ScheduleEntry) {
	table := newTable(w)
	table.Header("DATE", "TEAM", "H/A", "OPPONENT", "RESULT")
	for _, e := range entries {
		table.Append(e.Date, e.TeamName, e.HomeAway, e.Opponent, e.Result)
	}
	table.Render()
}

// PrintTeamStrength prints a team's rotation totals, leaders and rotation.
func PrintTeamStrength(w io.Writer, ts *aggregator.TeamStrength) {
	fmt.Fprintf(w, "\n%s (%s)  |  Season %d  |  Roster %d  |  Min games %d\n\n",
		ts.TeamName, ts.TeamID, ts.Season, ts.RosterSize, ts.MinGames)

	totals := newTable(w)
	totals.Header("PPG", "RPG", "APG", "FG%", "3P%", "TO", "MIN")
	totals.Append(f1(ts.TotalPPG), f1(ts.TotalRPG), f1(ts.TotalAPG),
		pct(ts.AvgFGPct), pct(ts.AvgThreePct), f1(ts.TotalTO), f1(ts.TotalMIN))
	totals.Render()

	fmt.Fprintf(w, "\nTop scorer:    %s (%.1f PPG)\n", ts.TopScorer.Name, ts.TopScorer.Value)
	fmt.Fprintf(w, "Top playmaker: %s (%.1f APG)\n", ts.TopPlaymaker.Name, ts.TopPlaymaker.Value)
	fmt.Fprintf(w, "Top rebounder: %s (%.1f RPG)\n\n", ts.TopRebounder.Name, ts.TopRebounder.Value)

	PrintPlayerLines(w, ts.Rotation)
}

// PrintPlayerLines prints aggregate player lines, one per row.
func PrintPlayerLines(w io.Writer, lines []aggregator.PlayerLine) {
	table := newTable(w)
	table.Header("PLAYER", "GP", "MIN", "PPG", "RPG", "APG", "FG%", "3P%", "TO")
	for _, pl := range lines {
		table.Append(pl.Name, fmt.Sprintf("%.0f", pl.GP), f1(pl.MIN), f1(pl.PPG), f1(pl.RPG), f1(pl.APG),
			pct(pl.FGPct), pct(pl.ThreePct), f1(pl.TO))
	}
	table.Render()
}

// PrintMatchup prints a head-to-head projection.
func PrintMatchup(w io.Writer, rep aggregator.MatchupReport) {
	if rep.Insufficient {
		fmt.Fprintf(w, "Insufficient data: %s\n", rep.Reason)
		return
	}
	a, b := rep.TeamA, rep.TeamB
	fmt.Fprintf(w, "\n%s vs %s  |  Season %d\n\n", a.TeamName, b.TeamName, rep.Season)

	table := newTable(w)
	table.Header("", a.TeamName, b.TeamName, "DIFF")
	table.Append("PPG", f1(a.TotalPPG), f1(b.TotalPPG), signed(rep.DiffPPG))
	table.Append("RPG", f1(a.TotalRPG), f1(b.TotalRPG), signed(rep.DiffRPG))
	table.Append("APG", f1(a.TotalAPG), f1(b.TotalAPG), signed(rep.DiffAPG))
	table.Append("3P%", pct(a.AvgThreePct), pct(b.AvgThreePct), signed(a.AvgThreePct-b.AvgThreePct))
	table.Append("TO", f1(a.TotalTO), f1(b.TotalTO), signed(a.TotalTO-b.TotalTO))
	table.Render()

	fmt.Fprintln(w, "\n=== Key Matchups ===")
	edges := newTable(w)
	edges.Header("STAT", a.TeamName, b.TeamName, "EDGE")
	for _, e := range rep.Edges {
		edge := "even"
		switch e.Winner {
		case a.TeamID:
			edge = a.TeamName
		case b.TeamID:
			edge = b.TeamName
		}
		edges.Append(e.Stat,
			fmt.Sprintf("%s (%.1f)", e.PlayerA.Name, e.PlayerA.Value),
			fmt.Sprintf("%s (%.1f)", e.PlayerB.Name, e.PlayerB.Value),
			edge)
	}
	edges.Render()

	if len(rep.Notes) > 0 {
		fmt.Fprintln(w, "\n=== Tactical Notes ===")
		for _, n := range rep.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}

	printLineup(w, a.TeamName, rep.LineupA)
	printLineup(w, b.TeamName, rep.LineupB)
}

func printLineup(w io.Writer, name string, l aggregator.Lineup) {
	fmt.Fprintf(w, "\n=== Projected Lineup: %s ===\n", name)
	table := newTable(w)
	table.Header("ROLE", "PLAYER", "MIN", "PPG")
	for _, pl := range l.Starters {
		table.Append("starter", pl.Name, f1(pl.MIN), f1(pl.PPG))
	}
	for _, pl := range l.Bench {
		table.Append("bench", pl.Name, f1(pl.MIN), f1(pl.PPG))
	}
	table.Render()
}

// PrintMultiSeason prints a team's per-season totals and their averages.
func PrintMultiSeason(w io.Writer, ms *aggregator.MultiSeasonStrength) {
	fmt.Fprintf(w, "\n%s (%s)  |  %d season(s)\n\n", ms.TeamName, ms.TeamID, len(ms.Seasons))
	table := newTable(w)
	table.Header("SEASON", "PPG", "RPG", "APG", "3P%", "TO")
	for _, ts := range ms.PerSeason {
		table.Append(strconv.Itoa(ts.Season), f1(ts.TotalPPG), f1(ts.TotalRPG), f1(ts.TotalAPG),
			pct(ts.AvgThreePct), f1(ts.TotalTO))
	}
	table.Append("AVG", f1(ms.AvgPPG), f1(ms.AvgRPG), f1(ms.AvgAPG), pct(ms.AvgThreePct), f1(ms.AvgTO))
	table.Render()
}

// PrintMultiSeasonMatchup prints two teams' multi-season averages side by side.
func PrintMultiSeasonMatchup(w io.Writer, rep aggregator.MultiSeasonReport) {
	if rep.Insufficient {
		fmt.Fprintf(w, "Insufficient data: %s\n", rep.Reason)
		return
	}
	a, b := rep.TeamA, rep.TeamB
	fmt.Fprintf(w, "\n%s vs %s  |  all seasons\n\n", a.TeamName, b.TeamName)
	table := newTable(w)
	table.Header("", a.TeamName, b.TeamName, "DIFF")
	table.Append("SEASONS", strconv.Itoa(len(a.Seasons)), strconv.Itoa(len(b.Seasons)), "")
	table.Append("PPG", f1(a.AvgPPG), f1(b.AvgPPG), signed(rep.DiffPPG))
	table.Append("RPG", f1(a.AvgRPG), f1(b.AvgRPG), signed(rep.DiffRPG))
	table.Append("APG", f1(a.AvgAPG), f1(b.AvgAPG), signed(rep.DiffAPG))
	table.Append("3P%", pct(a.AvgThreePct), pct(b.AvgThreePct), signed(a.AvgThreePct-b.AvgThreePct))
	table.Append("TO", f1(a.AvgTO), f1(b.AvgTO), signed(a.AvgTO-b.AvgTO))
	table.Render()
	for _, n := range rep.Notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}

// PrintRunTable prints scrape runs, newest first.
func PrintRunTable(w io.Writer, runs []model.ScrapeRun) {
	table := newTable(w)
	table.Header("RUN", "STARTED", "FINISHED", "COMPS", "SKIPPED", "PLAYERS", "TEAMS", "SCHEDULE")
	for _, r := range runs {
		finished := r.FinishedAt
		if finished == "" {
			finished = "-"
		}
		table.Append(shortID(r.RunID), r.StartedAt, finished,
			strconv.Itoa(r.Competitions), strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Players), strconv.Itoa(r.Teams), strconv.Itoa(r.Schedule))
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintAudit prints sanity-bound violations, or a single OK line.
func PrintAudit(w io.Writer, checked int, violations []normalize.Violation) {
	if len(violations) == 0 {
		fmt.Fprintf(w, "OK: %d records within bounds (RPG<=%d, APG<=%d, MIN<=%d, no 100 PPG with GP>1)\n",
			checked, normalize.AuditMaxRPG, normalize.AuditMaxAPG, normalize.AuditMaxMIN)
		return
	}
	table := newTable(w)
	table.Header("PLAYER", "ID", "TEAM", "SEASON", "RULE", "VALUE")
	for _, v := range violations {
		table.Append(v.Player.Name, v.Player.PlayerID, v.Player.TeamID,
			strconv.Itoa(v.Player.Season), v.Rule, f1(v.Value))
	}
	table.Render()
	fmt.Fprintf(w, "%d violation(s) in %d records\n", len(violations), checked)
}

// PrintQueryResult prints the columns and rows of a raw query followed by the
// row count.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
