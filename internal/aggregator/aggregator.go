// Package aggregator computes team strength, rotations and head-to-head
// projections from normalized player-season records. All functions are pure
// and read-only; "no data" is reported as a nil aggregate or an Insufficient
// report, never as an error.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/pable/go-bball-metrics/internal/model"
)

const (
	// RotationSize is the number of players that approximate a team's strength.
	RotationSize = 8
	// StarterCount and BenchCount shape the projected lineup.
	StarterCount = 5
	BenchCount   = 2

	// Early in a season everyone with one game is eligible; once any player
	// has reached matureSeasonGames, eligibility requires matureMinGames.
	matureSeasonGames = 8
	matureMinGames    = 5
	earlyMinGames     = 1

	notAvailable = "N/A"
)

// PlayerLine is one player's stats as used in aggregates and reports.
type PlayerLine struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	PPG      float64 `json:"ppg"`
	RPG      float64 `json:"rpg"`
	APG      float64 `json:"apg"`
	GP       float64 `json:"gp"`
	MIN      float64 `json:"min"`
	FGPct    float64 `json:"fg_pct"`
	ThreePct float64 `json:"three_pct"`
	TO       float64 `json:"to"`
	EFF      float64 `json:"eff"`
}

func lineOf(p model.PlayerSeason) PlayerLine {
	s, _ := p.Stats()
	return PlayerLine{
		PlayerID: p.PlayerID,
		Name:     p.Name,
		PPG:      s.PPG,
		RPG:      s.RPG,
		APG:      s.APG,
		GP:       s.GP,
		MIN:      s.MIN,
		FGPct:    s.FGPct,
		ThreePct: s.ThreePct,
		TO:       s.TO,
		EFF:      s.EFF,
	}
}

// Leader names the best player in one category.
type Leader struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TeamStrength is the rotation-based aggregate of one team in one season.
type TeamStrength struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Season   int    `json:"season"`

	TotalPPG    float64 `json:"total_ppg"`
	TotalRPG    float64 `json:"total_rpg"`
	TotalAPG    float64 `json:"total_apg"`
	AvgFGPct    float64 `json:"avg_fg_pct"`
	AvgThreePct float64 `json:"avg_three_pct"`
	TotalTO     float64 `json:"total_to"`
	TotalMIN    float64 `json:"total_min"`

	RosterSize   int    `json:"roster_size"`
	MinGames     int    `json:"min_games"` // eligibility threshold that was applied
	TopScorer    Leader `json:"top_scorer"`
	TopPlaymaker Leader `json:"top_playmaker"`
	TopRebounder Leader `json:"top_rebounder"`

	Rotation []PlayerLine `json:"rotation"`
	Roster   []PlayerLine `json:"roster"` // every player, unfiltered
}

// TeamAggregate returns the strength of teamID in season, or nil when the
// team has no records for that season.
func TeamAggregate(players []model.PlayerSeason, teamID string, season int) *TeamStrength {
	var roster []PlayerLine
	var teamName string
	for _, p := range players {
		if p.TeamID != teamID || p.Season != season {
			continue
		}
		if teamName == "" {
			teamName = p.TeamName
		}
		roster = append(roster, lineOf(p))
	}
	if len(roster) == 0 {
		return nil
	}

	ts := &TeamStrength{
		TeamID:     teamID,
		TeamName:   teamName,
		Season:     season,
		RosterSize: len(roster),
		Roster:     roster,
	}
	ts.MinGames, ts.Rotation = selectRotation(roster)

	for _, pl := range ts.Rotation {
		ts.TotalPPG += pl.PPG
		ts.TotalRPG += pl.RPG
		ts.TotalAPG += pl.APG
		ts.AvgFGPct += pl.FGPct
		ts.AvgThreePct += pl.ThreePct
		ts.TotalTO += pl.TO
		ts.TotalMIN += pl.MIN
	}
	n := float64(len(ts.Rotation))
	ts.AvgFGPct /= n
	ts.AvgThreePct /= n

	ts.TopScorer = Leader{Name: ts.Rotation[0].Name, Value: ts.Rotation[0].PPG}
	ts.TopPlaymaker = leader(ts.Rotation, func(pl PlayerLine) float64 { return pl.APG })
	ts.TopRebounder = leader(ts.Rotation, func(pl PlayerLine) float64 { return pl.RPG })
	return ts
}

// selectRotation applies the adaptive games-played threshold and returns the
// top RotationSize eligible players by PPG. If nobody is eligible the whole
// roster competes.
func selectRotation(roster []PlayerLine) (int, []PlayerLine) {
	maxGP := 0.0
	for _, pl := range roster {
		if pl.GP > maxGP {
			maxGP = pl.GP
		}
	}
	minGames := earlyMinGames
	if maxGP >= matureSeasonGames {
		minGames = matureMinGames
	}

	var candidates []PlayerLine
	for _, pl := range roster {
		if pl.GP >= float64(minGames) {
			candidates = append(candidates, pl)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, roster...)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].PPG > candidates[j].PPG })
	if len(candidates) > RotationSize {
		candidates = candidates[:RotationSize]
	}
	return minGames, candidates
}

// leader returns the first player with the highest value of stat.
func leader(lines []PlayerLine, stat func(PlayerLine) float64) Leader {
	if len(lines) == 0 {
		return Leader{Name: notAvailable}
	}
	best := lines[0]
	for _, pl := range lines[1:] {
		if stat(pl) > stat(best) {
			best = pl
		}
	}
	return Leader{Name: best.Name, Value: stat(best)}
}

// ---- Matchups ----

// Edge compares the best individual performer of each side in one category.
type Edge struct {
	Stat    string  `json:"stat"`
	PlayerA Leader  `json:"player_a"`
	PlayerB Leader  `json:"player_b"`
	Diff    float64 `json:"diff"`
	// Winner is the TeamID of the side with the higher value, or "" when even.
	Winner string `json:"winner"`
}

// Lineup is a projected starting five and bench ordered by minutes.
type Lineup struct {
	Starters []PlayerLine `json:"starters"`
	Bench    []PlayerLine `json:"bench"`
}

// MatchupReport is the head-to-head projection of two teams in one season.
type MatchupReport struct {
	Insufficient bool   `json:"insufficient"`
	Reason       string `json:"reason,omitempty"`
	Season       int    `json:"season"`

	TeamA *TeamStrength `json:"team_a,omitempty"`
	TeamB *TeamStrength `json:"team_b,omitempty"`

	// Differentials are A minus B over rotation totals.
	DiffPPG float64 `json:"diff_ppg"`
	DiffRPG float64 `json:"diff_rpg"`
	DiffAPG float64 `json:"diff_apg"`

	Edges   []Edge   `json:"edges,omitempty"`
	Notes   []string `json:"notes,omitempty"`
	LineupA Lineup   `json:"lineup_a"`
	LineupB Lineup   `json:"lineup_b"`
}

// Matchup projects teamA against teamB in season. When either team has no
// records the report is marked Insufficient and carries nothing else.
func Matchup(players []model.PlayerSeason, teamA, teamB string, season int) MatchupReport {
	a := TeamAggregate(players, teamA, season)
	b := TeamAggregate(players, teamB, season)
	rep := MatchupReport{Season: season}
	if a == nil || b == nil {
		rep.Insufficient = true
		rep.Reason = insufficientReason(a == nil, b == nil, teamA, teamB)
		return rep
	}

	rep.TeamA, rep.TeamB = a, b
	rep.DiffPPG = a.TotalPPG - b.TotalPPG
	rep.DiffRPG = a.TotalRPG - b.TotalRPG
	rep.DiffAPG = a.TotalAPG - b.TotalAPG

	for _, c := range []struct {
		name string
		stat func(PlayerLine) float64
	}{
		{"PPG", func(pl PlayerLine) float64 { return pl.PPG }},
		{"APG", func(pl PlayerLine) float64 { return pl.APG }},
		{"RPG", func(pl PlayerLine) float64 { return pl.RPG }},
	} {
		la, lb := leader(a.Roster, c.stat), leader(b.Roster, c.stat)
		e := Edge{Stat: c.name, PlayerA: la, PlayerB: lb, Diff: la.Value - lb.Value}
		switch {
		case e.Diff > 0:
			e.Winner = a.TeamID
		case e.Diff < 0:
			e.Winner = b.TeamID
		}
		rep.Edges = append(rep.Edges, e)
	}

	rep.Notes = tacticalNotes(a.TeamName, b.TeamName, a.AvgThreePct, b.AvgThreePct, a.TotalTO, b.TotalTO)
	rep.LineupA = projectLineup(a.Roster)
	rep.LineupB = projectLineup(b.Roster)
	return rep
}

func insufficientReason(missingA, missingB bool, teamA, teamB string) string {
	switch {
	case missingA && missingB:
		return fmt.Sprintf("no records for teams %s and %s", teamA, teamB)
	case missingA:
		return fmt.Sprintf("no records for team %s", teamA)
	default:
		return fmt.Sprintf("no records for team %s", teamB)
	}
}

func tacticalNotes(nameA, nameB string, threeA, threeB, toA, toB float64) []string {
	var notes []string
	switch {
	case threeA > threeB:
		notes = append(notes, fmt.Sprintf("%s shoot threes better (%.1f%% vs %.1f%%): stretch the floor.", nameA, threeA, threeB))
	case threeA < threeB:
		notes = append(notes, fmt.Sprintf("%s shoot threes better (%.1f%% vs %.1f%%): close out on shooters.", nameB, threeB, threeA))
	}
	switch {
	case toA < toB:
		notes = append(notes, fmt.Sprintf("%s protect the ball better (%.1f vs %.1f turnovers): pressure can pay off.", nameA, toA, toB))
	case toA > toB:
		notes = append(notes, fmt.Sprintf("%s turn it over less (%.1f vs %.1f): limit live-ball mistakes.", nameB, toB, toA))
	}
	return notes
}

// projectLineup orders the full roster by minutes and splits it into
// starters and the next BenchCount players.
func projectLineup(roster []PlayerLine) Lineup {
	byMin := append([]PlayerLine(nil), roster...)
	sort.SliceStable(byMin, func(i, j int) bool { return byMin[i].MIN > byMin[j].MIN })

	var l Lineup
	n := min(StarterCount, len(byMin))
	l.Starters = byMin[:n]
	l.Bench = byMin[n:min(StarterCount+BenchCount, len(byMin))]
	return l
}

// ---- Multi-season ----

// MultiSeasonStrength averages a team's single-season aggregates over every
// season in which it has records.
type MultiSeasonStrength struct {
	TeamID      string  `json:"team_id"`
	TeamName    string  `json:"team_name"`
	Seasons     []int   `json:"seasons"`
	AvgPPG      float64 `json:"avg_ppg"`
	AvgRPG      float64 `json:"avg_rpg"`
	AvgAPG      float64 `json:"avg_apg"`
	AvgThreePct float64 `json:"avg_three_pct"`
	AvgTO       float64 `json:"avg_to"`

	PerSeason []*TeamStrength `json:"per_season"`
}

// MultiSeasonAggregate returns teamID's averages across seasons, newest season
// first in PerSeason, or nil when the team has no records at all.
func MultiSeasonAggregate(players []model.PlayerSeason, teamID string) *MultiSeasonStrength {
	seen := make(map[int]bool)
	var seasons []int
	for _, p := range players {
		if p.TeamID == teamID && !seen[p.Season] {
			seen[p.Season] = true
			seasons = append(seasons, p.Season)
		}
	}
	if len(seasons) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(seasons)))

	ms := &MultiSeasonStrength{TeamID: teamID}
	for _, season := range seasons {
		ts := TeamAggregate(players, teamID, season)
		if ts == nil {
			continue
		}
		if ms.TeamName == "" {
			ms.TeamName = ts.TeamName
		}
		ms.Seasons = append(ms.Seasons, season)
		ms.PerSeason = append(ms.PerSeason, ts)
		ms.AvgPPG += ts.TotalPPG
		ms.AvgRPG += ts.TotalRPG
		ms.AvgAPG += ts.TotalAPG
		ms.AvgThreePct += ts.AvgThreePct
		ms.AvgTO += ts.TotalTO
	}
	n := float64(len(ms.PerSeason))
	ms.AvgPPG /= n
	ms.AvgRPG /= n
	ms.AvgAPG /= n
	ms.AvgThreePct /= n
	ms.AvgTO /= n
	return ms
}

// MultiSeasonReport compares two teams' multi-season averages.
type MultiSeasonReport struct {
	Insufficient bool   `json:"insufficient"`
	Reason       string `json:"reason,omitempty"`

	TeamA *MultiSeasonStrength `json:"team_a,omitempty"`
	TeamB *MultiSeasonStrength `json:"team_b,omitempty"`

	DiffPPG float64  `json:"diff_ppg"`
	DiffRPG float64  `json:"diff_rpg"`
	DiffAPG float64  `json:"diff_apg"`
	Notes   []string `json:"notes,omitempty"`
}

// MultiSeasonMatchup is Matchup over multi-season averages.
func MultiSeasonMatchup(players []model.PlayerSeason, teamA, teamB string) MultiSeasonReport {
	a := MultiSeasonAggregate(players, teamA)
	b := MultiSeasonAggregate(players, teamB)
	if a == nil || b == nil {
		return MultiSeasonReport{
			Insufficient: true,
			Reason:       insufficientReason(a == nil, b == nil, teamA, teamB),
		}
	}
	return MultiSeasonReport{
		TeamA:   a,
		TeamB:   b,
		DiffPPG: a.AvgPPG - b.AvgPPG,
		DiffRPG: a.AvgRPG - b.AvgRPG,
		DiffAPG: a.AvgAPG - b.AvgAPG,
		Notes:   tacticalNotes(a.TeamName, b.TeamName, a.AvgThreePct, b.AvgThreePct, a.AvgTO, b.AvgTO),
	}
}
