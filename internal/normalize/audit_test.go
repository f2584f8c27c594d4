package normalize

import (
	"strings"
	"testing"

	"github.com/pable/go-bball-metrics/internal/model"
)

func TestAuditFlagsEachRule(t *testing.T) {
	named := func(id string, s model.Stats) model.PlayerSeason {
		return model.PlayerSeason{PlayerID: id, Name: "P" + id, Row: model.NamedRow{Stats: s}}
	}
	players := []model.PlayerSeason{
		named("ok", model.Stats{PPG: 20, RPG: 10, APG: 5, MIN: 30, GP: 10}),
		named("reb", model.Stats{RPG: 26}),
		named("ast", model.Stats{APG: 21}),
		named("min", model.Stats{MIN: 50}),
		named("pts", model.Stats{PPG: 100, GP: 2}),
		named("pts1", model.Stats{PPG: 100, GP: 1}),
		{PlayerID: "legacy", Row: model.LegacyRow{Fields: []string{"x"}}},
	}

	got := Audit(players)
	if len(got) != 4 {
		t.Fatalf("violations: got %d, want 4: %v", len(got), got)
	}
	rules := map[string]string{}
	for _, v := range got {
		rules[v.Player.PlayerID] = v.Rule
	}
	for _, id := range []string{"reb", "ast", "min", "pts"} {
		if rules[id] == "" {
			t.Errorf("expected violation for %s", id)
		}
	}
	if !strings.Contains(got[0].String(), "RPG > 25") {
		t.Errorf("String: got %q", got[0].String())
	}
}

func TestAuditCleanAfterApply(t *testing.T) {
	var players []model.PlayerSeason
	for i, cells := range observedRows {
		p := model.PlayerSeason{PlayerID: string(rune('a' + i)), Row: legacyRow(cells)}
		players = append(players, Apply(p))
	}
	if v := Audit(players); len(v) != 0 {
		t.Errorf("normalized rows should pass the audit, got %v", v)
	}
}
