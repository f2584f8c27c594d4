package scraper

import "github.com/pable/go-bball-metrics/internal/model"

// DefaultCompetitions lists the tracked SBL competitions. Seasons whose
// competition id has not been looked up yet carry an empty ID.
func DefaultCompetitions() []model.Competition {
	comps := []model.Competition{
		{ID: "41539", Season: 2025, League: model.LeagueMen, Label: "SBL Herr 2025"},
		{ID: "42013", Season: 2025, League: model.LeagueWomen, Label: "SBL Dam 2025"},
	}
	for season := 2024; season >= 2021; season-- {
		comps = append(comps,
			model.Competition{Season: season, League: model.LeagueMen},
			model.Competition{Season: season, League: model.LeagueWomen},
		)
	}
	return comps
}

// Filter returns the competitions matching season and league; zero values
// match everything.
func Filter(comps []model.Competition, season int, league model.League) []model.Competition {
	var out []model.Competition
	for _, c := range comps {
		if season != 0 && c.Season != season {
			continue
		}
		if league != "" && c.League != league {
			continue
		}
		out = append(out, c)
	}
	return out
}
