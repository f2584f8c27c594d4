// Package normalize converts legacy positional stat rows into typed per-game
// stats. The source tables sometimes report season totals where averages are
// expected; Convert detects those rows, rescales them and zeroes values that
// are physically impossible.
package normalize

import (
	"strconv"
	"strings"

	"github.com/pable/go-bball-metrics/internal/model"
)

// Offsets into a legacy row.
const (
	idxPTS      = 3
	idxREB      = 4
	idxAST      = 5
	idxGP       = 6
	idxMIN      = 8
	idxFGPct    = 9
	idxThreePct = 10
	idxTO       = 18
	effFromEnd  = 4 // efficiency sits fourth from the end
)

// Thresholds are the tuning constants of the total-vs-average classifier and
// the sanity caps. They were fitted to observed bad rows from one source site;
// keep DefaultThresholds unchanged for reproducible output.
type Thresholds struct {
	// An integer-formatted points value above this, with more than one game
	// played, is a season total.
	IntegerTotalPoints float64
	// Any points value above this, with more than one game played, is a total.
	TotalPoints float64
	// Fallback: points at or above this with more than FallbackMinGames games.
	FallbackTotalPoints float64
	FallbackMinGames    float64

	MaxRPG float64
	MaxAPG float64
	MaxMIN float64

	// When PPG exceeds MaxPointsPerMinute*MIN it is replaced by
	// CappedPointsPerMinute*MIN.
	MaxPointsPerMinute    float64
	CappedPointsPerMinute float64
}

// DefaultThresholds returns the compatibility values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		IntegerTotalPoints:    20,
		TotalPoints:           40,
		FallbackTotalPoints:   99,
		FallbackMinGames:      5,
		MaxRPG:                20,
		MaxAPG:                15,
		MaxMIN:                48,
		MaxPointsPerMinute:    2.5,
		CappedPointsPerMinute: 2,
	}
}

// Apply returns p with a legacy row converted to a named row using the
// default thresholds. Records that already carry named stats are returned
// untouched.
func Apply(p model.PlayerSeason) model.PlayerSeason {
	return ApplyWith(p, DefaultThresholds())
}

// ApplyWith is Apply with explicit thresholds.
func ApplyWith(p model.PlayerSeason, th Thresholds) model.PlayerSeason {
	legacy, ok := p.Row.(model.LegacyRow)
	if !ok {
		return p
	}
	p.Row = model.NamedRow{Stats: Convert(legacy, th)}
	return p
}

// Convert derives per-game stats from a legacy row. It is deterministic and
// never fails: unreadable cells resolve to 0.
func Convert(row model.LegacyRow, th Thresholds) model.Stats {
	f := row.Fields

	ptsText, _ := cell(f, idxPTS)
	s := model.Stats{
		PPG:      number(f, idxPTS),
		RPG:      number(f, idxREB),
		APG:      number(f, idxAST),
		GP:       number(f, idxGP),
		MIN:      number(f, idxMIN),
		FGPct:    percent(f, idxFGPct),
		ThreePct: percent(f, idxThreePct),
		TO:       number(f, idxTO),
		EFF:      number(f, len(f)-effFromEnd),
	}

	if isSeasonTotal(ptsText, s.PPG, s.GP, th) {
		s.PPG = round1(s.PPG / s.GP)
		s.RPG = round1(s.RPG / s.GP)
		s.APG = round1(s.APG / s.GP)
		s.MIN = round1(s.MIN / s.GP)
		s.TO = round1(s.TO / s.GP)
	}

	if s.RPG > th.MaxRPG {
		s.RPG = 0
	}
	if s.APG > th.MaxAPG {
		s.APG = 0
	}
	if s.MIN > th.MaxMIN {
		s.MIN = 0
	}

	if s.MIN > 1 && s.PPG > th.MaxPointsPerMinute*s.MIN {
		s.PPG = round1(th.CappedPointsPerMinute * s.MIN)
	}
	return s
}

// isSeasonTotal classifies a row by its points field.
func isSeasonTotal(ptsText string, pts, gp float64, th Thresholds) bool {
	if gp > 1 {
		integerFormatted := ptsText != "" && !strings.Contains(ptsText, ".")
		if (integerFormatted && pts > th.IntegerTotalPoints) || pts > th.TotalPoints {
			return true
		}
	}
	return pts >= th.FallbackTotalPoints && gp > th.FallbackMinGames
}

func cell(f []string, i int) (string, bool) {
	if i < 0 || i >= len(f) {
		return "", false
	}
	return strings.TrimSpace(f[i]), true
}

// number reads a plain numeric cell. A percent sign at a non-percent offset
// means the columns are misaligned, so the value is dropped.
func number(f []string, i int) float64 {
	s, ok := cell(f, i)
	if !ok || s == "" || s == "-" || strings.Contains(s, "%") {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// percent reads a cell only if it actually carries a percent sign.
func percent(f []string, i int) float64 {
	s, ok := cell(f, i)
	if !ok || !strings.Contains(s, "%") {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, "%", "")), 64)
	if err != nil {
		return 0
	}
	return v
}

// round1 rounds to one decimal place based on the exact binary value.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
