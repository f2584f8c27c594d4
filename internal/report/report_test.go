package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/normalize"
)

func named(id, team string, s model.Stats) model.PlayerSeason {
	return model.PlayerSeason{
		PlayerID: id, TeamID: team, TeamName: "Team " + team, Season: 2025,
		League: model.LeagueMen, Name: "Player " + id, Row: model.NamedRow{Stats: s},
	}
}

func TestPrintPlayerTableMarksLegacyRows(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayerTable(&buf, []model.PlayerSeason{
		named("1", "100", model.Stats{PPG: 14.2, GP: 10}),
		{PlayerID: "2", Name: "Raw Player", TeamID: "100", Season: 2025, Row: model.LegacyRow{Fields: []string{"x"}}},
	})
	out := buf.String()
	for _, want := range []string{"Player 1", "14.2", "Raw Player", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintMatchup(t *testing.T) {
	players := []model.PlayerSeason{
		named("1", "100", model.Stats{PPG: 20, RPG: 5, APG: 6, GP: 4, MIN: 30}),
		named("2", "200", model.Stats{PPG: 12, RPG: 8, APG: 3, GP: 4, MIN: 28}),
	}
	var buf bytes.Buffer
	PrintMatchup(&buf, aggregator.Matchup(players, "100", "200", 2025))
	out := buf.String()
	for _, want := range []string{"Team 100 vs Team 200", "Key Matchups", "+8.0", "Projected Lineup: Team 200"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintMatchup(&buf, aggregator.Matchup(players, "100", "999", 2025))
	if !strings.HasPrefix(buf.String(), "Insufficient data:") {
		t.Errorf("insufficient matchup: got %q", buf.String())
	}
}

func TestPrintAudit(t *testing.T) {
	var buf bytes.Buffer
	PrintAudit(&buf, 3, nil)
	if !strings.HasPrefix(buf.String(), "OK: 3 records") {
		t.Errorf("clean audit: got %q", buf.String())
	}

	buf.Reset()
	p := named("9", "100", model.Stats{RPG: 30})
	PrintAudit(&buf, 1, []normalize.Violation{{Player: p, Rule: "RPG>25", Value: 30}})
	if !strings.Contains(buf.String(), "1 violation(s) in 1 records") {
		t.Errorf("audit summary missing:\n%s", buf.String())
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID: got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short: got %q", got)
	}
}

func TestPrintQueryResult(t *testing.T) {
	var buf bytes.Buffer
	PrintQueryResult(&buf, []string{"name", "ppg"}, nil)
	if buf.String() != "(no rows)\n" {
		t.Errorf("empty result: got %q", buf.String())
	}

	buf.Reset()
	PrintQueryResult(&buf, []string{"name", "ppg"}, [][]string{{"Ann", "21.0"}, {"Bo", "18.5"}})
	out := buf.String()
	for _, want := range []string{"Ann", "18.5", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
