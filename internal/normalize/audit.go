package normalize

import (
	"fmt"

	"github.com/pable/go-bball-metrics/internal/model"
)

// Sanity bounds that must hold for every normalized record. They are looser
// than the normalization caps.
const (
	AuditMaxRPG = 25
	AuditMaxAPG = 20
	AuditMaxMIN = 49
	// A season total mistaken for an average shows up as exactly 100 PPG.
	auditSuspectPPG = 100.0
)

// Violation is one record that breaks a sanity bound.
type Violation struct {
	Player model.PlayerSeason
	Rule   string
	Value  float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (%s, team %s, %d %s): %s = %.1f",
		v.Player.Name, v.Player.PlayerID, v.Player.TeamID, v.Player.Season, v.Player.League, v.Rule, v.Value)
}

// Audit checks every record with typed stats against the sanity bounds.
// Records that still carry a legacy row are skipped.
func Audit(players []model.PlayerSeason) []Violation {
	var out []Violation
	for _, p := range players {
		s, ok := p.Stats()
		if !ok {
			continue
		}
		if s.RPG > AuditMaxRPG {
			out = append(out, Violation{Player: p, Rule: "RPG > 25", Value: s.RPG})
		}
		if s.APG > AuditMaxAPG {
			out = append(out, Violation{Player: p, Rule: "APG > 20", Value: s.APG})
		}
		if s.MIN > AuditMaxMIN {
			out = append(out, Violation{Player: p, Rule: "MIN > 49", Value: s.MIN})
		}
		if s.PPG == auditSuspectPPG && s.GP > 1 {
			out = append(out, Violation{Player: p, Rule: "PPG == 100 with GP > 1", Value: s.PPG})
		}
	}
	return out
}
