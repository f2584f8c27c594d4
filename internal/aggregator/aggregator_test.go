package aggregator

import (
	"fmt"
	"math"
	"testing"

	"github.com/pable/go-bball-metrics/internal/model"
)

// player builds a normalized record for team in season.
func player(id, team string, season int, s model.Stats) model.PlayerSeason {
	return model.PlayerSeason{
		PlayerID: id,
		TeamID:   team,
		TeamName: "Team " + team,
		Season:   season,
		League:   model.LeagueMen,
		Name:     "Player " + id,
		Row:      model.NamedRow{Stats: s},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ---- TeamAggregate tests ----

func TestTeamAggregateEmpty(t *testing.T) {
	players := []model.PlayerSeason{player("1", "A", 2025, model.Stats{PPG: 10, GP: 3})}

	if ts := TeamAggregate(nil, "A", 2025); ts != nil {
		t.Errorf("nil players: expected nil, got %+v", ts)
	}
	if ts := TeamAggregate(players, "B", 2025); ts != nil {
		t.Errorf("unknown team: expected nil, got %+v", ts)
	}
	if ts := TeamAggregate(players, "A", 2024); ts != nil {
		t.Errorf("other season: expected nil, got %+v", ts)
	}
}

func TestTeamAggregateTotals(t *testing.T) {
	players := []model.PlayerSeason{
		player("1", "A", 2025, model.Stats{PPG: 20, RPG: 4, APG: 6, GP: 3, MIN: 30, FGPct: 50, ThreePct: 40, TO: 2}),
		player("2", "A", 2025, model.Stats{PPG: 10, RPG: 8, APG: 2, GP: 3, MIN: 20, FGPct: 40, ThreePct: 30, TO: 1}),
		player("3", "B", 2025, model.Stats{PPG: 99, GP: 3}),
	}
	ts := TeamAggregate(players, "A", 2025)
	if ts == nil {
		t.Fatal("expected aggregate")
	}
	if ts.RosterSize != 2 || len(ts.Rotation) != 2 {
		t.Fatalf("roster=%d rotation=%d, want 2/2", ts.RosterSize, len(ts.Rotation))
	}
	if !approx(ts.TotalPPG, 30) || !approx(ts.TotalRPG, 12) || !approx(ts.TotalAPG, 8) {
		t.Errorf("totals: ppg=%v rpg=%v apg=%v", ts.TotalPPG, ts.TotalRPG, ts.TotalAPG)
	}
	if !approx(ts.AvgFGPct, 45) || !approx(ts.AvgThreePct, 35) {
		t.Errorf("averages: fg=%v 3p=%v", ts.AvgFGPct, ts.AvgThreePct)
	}
	if !approx(ts.TotalTO, 3) || !approx(ts.TotalMIN, 50) {
		t.Errorf("to=%v min=%v", ts.TotalTO, ts.TotalMIN)
	}
	if ts.TeamName != "Team A" {
		t.Errorf("TeamName: got %q", ts.TeamName)
	}
}

func TestTeamAggregateDistinctLeaders(t *testing.T) {
	players := []model.PlayerSeason{
		player("scorer", "A", 2025, model.Stats{PPG: 25, RPG: 3, APG: 2, GP: 4}),
		player("guard", "A", 2025, model.Stats{PPG: 12, RPG: 2, APG: 9, GP: 4}),
		player("big", "A", 2025, model.Stats{PPG: 8, RPG: 11, APG: 1, GP: 4}),
	}
	ts := TeamAggregate(players, "A", 2025)
	if ts.TopScorer.Name != "Player scorer" {
		t.Errorf("TopScorer: got %q", ts.TopScorer.Name)
	}
	if ts.TopPlaymaker.Name != "Player guard" || ts.TopPlaymaker.Value != 9 {
		t.Errorf("TopPlaymaker: got %+v", ts.TopPlaymaker)
	}
	if ts.TopRebounder.Name != "Player big" || ts.TopRebounder.Value != 11 {
		t.Errorf("TopRebounder: got %+v", ts.TopRebounder)
	}
}

func TestTeamAggregateAdaptiveThreshold(t *testing.T) {
	// Mature season: the 3-game player is excluded even though he scores most.
	mature := []model.PlayerSeason{
		player("vet", "A", 2025, model.Stats{PPG: 10, GP: 10}),
		player("new", "A", 2025, model.Stats{PPG: 30, GP: 3}),
	}
	ts := TeamAggregate(mature, "A", 2025)
	if ts.MinGames != 5 {
		t.Errorf("MinGames: got %d, want 5", ts.MinGames)
	}
	if len(ts.Rotation) != 1 || ts.Rotation[0].PlayerID != "vet" {
		t.Errorf("rotation: got %+v", ts.Rotation)
	}
	if ts.RosterSize != 2 || len(ts.Roster) != 2 {
		t.Errorf("full roster should keep everyone, got %d", len(ts.Roster))
	}

	// Early season: one game is enough.
	early := []model.PlayerSeason{
		player("a", "A", 2025, model.Stats{PPG: 10, GP: 2}),
		player("b", "A", 2025, model.Stats{PPG: 30, GP: 1}),
	}
	ts = TeamAggregate(early, "A", 2025)
	if ts.MinGames != 1 || len(ts.Rotation) != 2 || ts.Rotation[0].PlayerID != "b" {
		t.Errorf("early season: min=%d rotation=%+v", ts.MinGames, ts.Rotation)
	}

	// Nobody played: everyone competes.
	none := []model.PlayerSeason{
		player("x", "A", 2025, model.Stats{PPG: 0, GP: 0}),
		player("y", "A", 2025, model.Stats{PPG: 0, GP: 0}),
	}
	ts = TeamAggregate(none, "A", 2025)
	if len(ts.Rotation) != 2 {
		t.Errorf("fallback rotation: got %d players, want 2", len(ts.Rotation))
	}
}

func TestTeamAggregateRotationCap(t *testing.T) {
	var players []model.PlayerSeason
	for i := 1; i <= 12; i++ {
		players = append(players, player(fmt.Sprint(i), "A", 2025, model.Stats{PPG: float64(i), GP: 4}))
	}
	ts := TeamAggregate(players, "A", 2025)
	if len(ts.Rotation) != RotationSize {
		t.Fatalf("rotation size: got %d, want %d", len(ts.Rotation), RotationSize)
	}
	if ts.Rotation[0].PPG != 12 || ts.Rotation[RotationSize-1].PPG != 5 {
		t.Errorf("rotation order: first=%v last=%v", ts.Rotation[0].PPG, ts.Rotation[RotationSize-1].PPG)
	}
	// 12+11+...+5
	if !approx(ts.TotalPPG, 68) {
		t.Errorf("TotalPPG: got %v, want 68", ts.TotalPPG)
	}
	if ts.RosterSize != 12 {
		t.Errorf("RosterSize: got %d", ts.RosterSize)
	}
}

func TestTeamAggregateStableTies(t *testing.T) {
	players := []model.PlayerSeason{
		player("first", "A", 2025, model.Stats{PPG: 10, GP: 2}),
		player("second", "A", 2025, model.Stats{PPG: 10, GP: 2}),
	}
	ts := TeamAggregate(players, "A", 2025)
	if ts.Rotation[0].PlayerID != "first" || ts.TopScorer.Name != "Player first" {
		t.Errorf("tie should keep input order, got %+v", ts.Rotation)
	}
}

// ---- Matchup tests ----

func matchupFixture() []model.PlayerSeason {
	return []model.PlayerSeason{
		player("a1", "A", 2025, model.Stats{PPG: 20, RPG: 5, APG: 7, GP: 4, MIN: 34, ThreePct: 38, TO: 2}),
		player("a2", "A", 2025, model.Stats{PPG: 15, RPG: 9, APG: 1, GP: 4, MIN: 30, ThreePct: 36, TO: 1}),
		player("b1", "B", 2025, model.Stats{PPG: 18, RPG: 10, APG: 4, GP: 4, MIN: 32, ThreePct: 30, TO: 3}),
		player("b2", "B", 2025, model.Stats{PPG: 9, RPG: 3, APG: 2, GP: 4, MIN: 25, ThreePct: 28, TO: 2}),
	}
}

func TestMatchupInsufficient(t *testing.T) {
	players := matchupFixture()
	for _, tc := range []struct{ a, b string }{{"A", "Z"}, {"Z", "B"}, {"Y", "Z"}} {
		rep := Matchup(players, tc.a, tc.b, 2025)
		if !rep.Insufficient {
			t.Errorf("%s vs %s: expected Insufficient", tc.a, tc.b)
		}
		if rep.TeamA != nil || rep.TeamB != nil || rep.Edges != nil {
			t.Errorf("%s vs %s: insufficient report should carry no data", tc.a, tc.b)
		}
		if rep.Reason == "" {
			t.Errorf("%s vs %s: expected a reason", tc.a, tc.b)
		}
	}
}

func TestMatchupDifferentialSign(t *testing.T) {
	players := matchupFixture()

	ab := Matchup(players, "A", "B", 2025)
	if ab.Insufficient {
		t.Fatal("unexpected Insufficient")
	}
	// A rotation PPG 35, B 27.
	if !approx(ab.DiffPPG, 8) {
		t.Errorf("DiffPPG: got %v, want 8", ab.DiffPPG)
	}
	if !approx(ab.DiffRPG, 1) || !approx(ab.DiffAPG, 2) {
		t.Errorf("DiffRPG=%v DiffAPG=%v", ab.DiffRPG, ab.DiffAPG)
	}

	ba := Matchup(players, "B", "A", 2025)
	if !approx(ba.DiffPPG, -ab.DiffPPG) {
		t.Errorf("reversed DiffPPG: got %v", ba.DiffPPG)
	}
}

func TestMatchupEdges(t *testing.T) {
	rep := Matchup(matchupFixture(), "A", "B", 2025)
	if len(rep.Edges) != 3 {
		t.Fatalf("edges: got %d, want 3", len(rep.Edges))
	}
	want := map[string]struct {
		a, b, winner string
	}{
		"PPG": {"Player a1", "Player b1", "A"},
		"APG": {"Player a1", "Player b1", "A"},
		"RPG": {"Player a2", "Player b1", "B"},
	}
	for _, e := range rep.Edges {
		w, ok := want[e.Stat]
		if !ok {
			t.Errorf("unexpected edge %q", e.Stat)
			continue
		}
		if e.PlayerA.Name != w.a || e.PlayerB.Name != w.b || e.Winner != w.winner {
			t.Errorf("%s edge: got %+v", e.Stat, e)
		}
	}
}

func TestMatchupEvenEdge(t *testing.T) {
	players := []model.PlayerSeason{
		player("a", "A", 2025, model.Stats{PPG: 10, GP: 2}),
		player("b", "B", 2025, model.Stats{PPG: 10, GP: 2}),
	}
	rep := Matchup(players, "A", "B", 2025)
	for _, e := range rep.Edges {
		if e.Winner != "" {
			t.Errorf("%s: expected even edge, got winner %q", e.Stat, e.Winner)
		}
	}
	if len(rep.Notes) != 0 {
		t.Errorf("identical teams should produce no notes, got %v", rep.Notes)
	}
}

func TestMatchupNotes(t *testing.T) {
	rep := Matchup(matchupFixture(), "A", "B", 2025)
	if len(rep.Notes) != 2 {
		t.Fatalf("notes: got %v", rep.Notes)
	}
}

func TestMatchupLineup(t *testing.T) {
	var players []model.PlayerSeason
	for i := 1; i <= 9; i++ {
		players = append(players, player(fmt.Sprint(i), "A", 2025, model.Stats{PPG: 5, MIN: float64(i * 3), GP: 4}))
	}
	players = append(players, player("b", "B", 2025, model.Stats{PPG: 5, MIN: 20, GP: 4}))

	rep := Matchup(players, "A", "B", 2025)
	if len(rep.LineupA.Starters) != StarterCount || len(rep.LineupA.Bench) != BenchCount {
		t.Fatalf("lineup A: %d starters, %d bench", len(rep.LineupA.Starters), len(rep.LineupA.Bench))
	}
	if rep.LineupA.Starters[0].PlayerID != "9" || rep.LineupA.Starters[4].PlayerID != "5" {
		t.Errorf("starters not ordered by minutes: %+v", rep.LineupA.Starters)
	}
	if rep.LineupA.Bench[0].PlayerID != "4" || rep.LineupA.Bench[1].PlayerID != "3" {
		t.Errorf("bench: %+v", rep.LineupA.Bench)
	}
	if len(rep.LineupB.Starters) != 1 || len(rep.LineupB.Bench) != 0 {
		t.Errorf("short roster lineup: %+v", rep.LineupB)
	}
	// Roster order must survive lineup projection.
	if rep.TeamA.Roster[0].PlayerID != "1" {
		t.Errorf("roster reordered: first=%s", rep.TeamA.Roster[0].PlayerID)
	}
}

// ---- Multi-season tests ----

func TestMultiSeasonAggregate(t *testing.T) {
	players := []model.PlayerSeason{
		player("1", "A", 2024, model.Stats{PPG: 10, RPG: 2, GP: 3, TO: 1}),
		player("2", "A", 2025, model.Stats{PPG: 30, RPG: 6, GP: 3, TO: 3}),
		player("3", "B", 2025, model.Stats{PPG: 50, GP: 3}),
	}
	ms := MultiSeasonAggregate(players, "A")
	if ms == nil {
		t.Fatal("expected aggregate")
	}
	if len(ms.Seasons) != 2 || ms.Seasons[0] != 2025 || ms.Seasons[1] != 2024 {
		t.Errorf("Seasons: got %v", ms.Seasons)
	}
	if !approx(ms.AvgPPG, 20) || !approx(ms.AvgRPG, 4) || !approx(ms.AvgTO, 2) {
		t.Errorf("averages: ppg=%v rpg=%v to=%v", ms.AvgPPG, ms.AvgRPG, ms.AvgTO)
	}
	if MultiSeasonAggregate(players, "Z") != nil {
		t.Error("unknown team should yield nil")
	}
}

func TestMultiSeasonMatchup(t *testing.T) {
	players := []model.PlayerSeason{
		player("1", "A", 2024, model.Stats{PPG: 10, GP: 3}),
		player("2", "A", 2025, model.Stats{PPG: 30, GP: 3}),
		player("3", "B", 2025, model.Stats{PPG: 50, GP: 3}),
	}
	rep := MultiSeasonMatchup(players, "A", "B")
	if rep.Insufficient {
		t.Fatal("unexpected Insufficient")
	}
	if !approx(rep.DiffPPG, -30) {
		t.Errorf("DiffPPG: got %v, want -30", rep.DiffPPG)
	}
	if !MultiSeasonMatchup(players, "A", "Z").Insufficient {
		t.Error("missing side should be Insufficient")
	}
}
