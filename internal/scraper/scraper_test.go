package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pable/go-bball-metrics/internal/fetch"
	"github.com/pable/go-bball-metrics/internal/model"
)

const base = "https://stats.example.com/SBF/en/competition"

// fakeGetter serves fixed pages and records every requested URL.
type fakeGetter struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeGetter) Fetch(_ context.Context, url string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	return body, ok
}

func statsHTML(rows ...string) string {
	return `<table><thead><tr><th>Player</th><th>G</th><th>PPG</th><th>RPG</th><th>3P%</th></tr></thead><tbody>` +
		strings.Join(rows, "") + `</tbody></table>`
}

func statsRow(id, name, gp, ppg, rpg, three string) string {
	return fmt.Sprintf(`<tr><td><a href="/SBF/en/competition/41539/person/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		id, name, gp, ppg, rpg, three)
}

func rosterHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString(`<div id="BLOCK_TEAM_HOME_PLAYERS">`)
	for _, id := range ids {
		fmt.Fprintf(&b, `<a href="/SBF/en/competition/41539/person/%s">p</a>`, id)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func competitionPages() map[string]string {
	return map[string]string{
		base + "/41539/statistics/player?": statsHTML(
			statsRow("1", "Anna", "10", "15.2", "4.0", "38.0%"),
			statsRow("2", "Bea", "9", "7.5", "6.1", "-"),
			statsRow("3", "Cleo", "10", "11.0", "2.2", "41.2%"),
		),
		base + "/41539/statistics/team?": `
<a href="/SBF/en/competition/41539/team/100">Dolphins</a>
<a href="/SBF/en/competition/41539/team/200">Kings</a>
<a href="/SBF/en/competition/41539/team/300">Eagles</a>`,
		"https://stats.example.com/SBF/en/competition/41539/team/100": rosterHTML("1", "2", "99"),
		"https://stats.example.com/SBF/en/competition/41539/team/200": rosterHTML("3"),
		// team 300 page is missing
		base + "/41539/schedule?": `<div class="match-wrap STATUS_COMPLETE"><div class="match-time"><span>Oct 1</span></div>
<div class="sched-teams"><div class="home-team"><div class="team-name"><a href="/team/100">Dolphins</a></div><div class="team-score">80</div></div>
<div class="visiting-team"><div class="team-name"><a href="/team/200">Kings</a></div><div class="team-score">75</div></div></div></div>`,
	}
}

var men2025 = model.Competition{ID: "41539", Season: 2025, League: model.LeagueMen}

func TestScrapeCompetitionJoinsRosterAndStats(t *testing.T) {
	g := &fakeGetter{pages: competitionPages()}
	res := New(g, base, 1, nil).ScrapeCompetition(context.Background(), men2025)

	if len(res.Teams) != 3 {
		t.Fatalf("teams: got %d, want 3", len(res.Teams))
	}
	for _, tm := range res.Teams {
		if tm.Season != 2025 || tm.League != model.LeagueMen {
			t.Errorf("team not tagged: %+v", tm)
		}
	}

	if len(res.Players) != 3 {
		t.Fatalf("players: got %d, want 3 (roster-only id 99 dropped)", len(res.Players))
	}
	want := []struct{ id, team string }{{"1", "100"}, {"2", "100"}, {"3", "200"}}
	for i, w := range want {
		p := res.Players[i]
		if p.PlayerID != w.id || p.TeamID != w.team {
			t.Errorf("player %d: got %s/%s, want %s/%s", i, p.PlayerID, p.TeamID, w.id, w.team)
		}
		if p.Season != 2025 || p.League != model.LeagueMen {
			t.Errorf("player %d not tagged: %+v", i, p)
		}
	}

	anna := res.Players[0]
	s, ok := anna.Stats()
	if !ok {
		t.Fatal("scraped player should carry named stats")
	}
	if s.GP != 10 || s.PPG != 15.2 || s.RPG != 4.0 || s.ThreePct != 38.0 {
		t.Errorf("stats: %+v", s)
	}
	if anna.Name != "Anna" || anna.TeamName != "Dolphins" || anna.GeniusID != "1" {
		t.Errorf("identity: %+v", anna)
	}
	if bea, _ := res.Players[1].Stats(); bea.ThreePct != 0 {
		t.Errorf("non-numeric 3P%% should default to 0, got %v", bea.ThreePct)
	}

	if len(res.Schedule) != 2 {
		t.Fatalf("schedule: got %d, want 2", len(res.Schedule))
	}
	if res.Schedule[0].Season != 2025 || res.Schedule[1].League != model.LeagueMen {
		t.Errorf("schedule not tagged: %+v", res.Schedule)
	}
}

func TestScrapeCompetitionParallelKeepsOrder(t *testing.T) {
	g := &fakeGetter{pages: competitionPages()}
	res := New(g, base, 3, nil).ScrapeCompetition(context.Background(), men2025)

	if len(res.Players) != 3 {
		t.Fatalf("players: got %d, want 3", len(res.Players))
	}
	for i, id := range []string{"1", "2", "3"} {
		if res.Players[i].PlayerID != id {
			t.Errorf("position %d: got %s, want %s", i, res.Players[i].PlayerID, id)
		}
	}
}

func TestScrapeCompetitionWithoutStatsSkipsRosters(t *testing.T) {
	pages := competitionPages()
	delete(pages, base+"/41539/statistics/player?")
	g := &fakeGetter{pages: pages}

	res := New(g, base, 1, nil).ScrapeCompetition(context.Background(), men2025)
	if len(res.Players) != 0 {
		t.Errorf("players: got %d, want 0", len(res.Players))
	}
	if len(res.Teams) != 3 || len(res.Schedule) != 2 {
		t.Errorf("teams/schedule should still be scraped: %d/%d", len(res.Teams), len(res.Schedule))
	}
	for _, u := range g.calls {
		if strings.Contains(u, "/team/") {
			t.Errorf("roster page fetched without stats: %s", u)
		}
	}
}

func TestScrapeCompetitionAllPagesMissing(t *testing.T) {
	res := New(&fakeGetter{}, base, 2, nil).ScrapeCompetition(context.Background(), men2025)
	if !res.Empty() {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRunSkipsUnavailableAndDeliversPerCompetition(t *testing.T) {
	pages := competitionPages()
	g := &fakeGetter{pages: pages}
	comps := []model.Competition{
		men2025,
		{Season: 2024, League: model.LeagueMen},
		{ID: "55555", Season: 2025, League: model.LeagueWomen},
	}

	var delivered []string
	sum, err := New(g, base, 1, nil).Run(context.Background(), comps, func(c model.Competition, r Result) error {
		delivered = append(delivered, c.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Skipped != 1 || sum.Competitions != 2 {
		t.Errorf("summary: %+v", sum)
	}
	if sum.Players != 3 || sum.Teams != 3 || sum.Schedule != 2 {
		t.Errorf("summary counts: %+v", sum)
	}
	if len(delivered) != 2 || delivered[0] != "41539" || delivered[1] != "55555" {
		t.Errorf("delivered: %v", delivered)
	}
}

func TestRunStopsOnSinkError(t *testing.T) {
	g := &fakeGetter{pages: competitionPages()}
	comps := []model.Competition{men2025, men2025}
	calls := 0
	_, err := New(g, base, 1, nil).Run(context.Background(), comps, func(model.Competition, Result) error {
		calls++
		return errors.New("disk full")
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("sink called %d times, want 1", calls)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &fakeGetter{pages: competitionPages()}
	_, err := New(g, base, 1, nil).Run(ctx, []model.Competition{men2025}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(g.calls) != 0 {
		t.Errorf("fetched %d pages after cancellation", len(g.calls))
	}
}

func TestScrapeOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/SBF/en/competition/41539/statistics/player", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsHTML(statsRow("1", "Anna", "10", "15.2", "4.0", "38.0%")))
	})
	mux.HandleFunc("/SBF/en/competition/41539/statistics/team", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/SBF/en/competition/41539/team/100">Dolphins</a><a href="/SBF/en/competition/41539/team/200">Kings</a>`)
	})
	mux.HandleFunc("/SBF/en/competition/41539/team/100", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rosterHTML("1"))
	})
	mux.HandleFunc("/SBF/en/competition/41539/team/200", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetch.New(fetch.Options{})
	res := New(f, srv.URL+"/SBF/en/competition", 2, nil).ScrapeCompetition(context.Background(), men2025)
	if len(res.Teams) != 2 {
		t.Fatalf("teams: got %d, want 2", len(res.Teams))
	}
	if len(res.Players) != 1 || res.Players[0].TeamID != "100" {
		t.Errorf("players: %+v", res.Players)
	}
	if len(res.Schedule) != 0 {
		t.Errorf("missing schedule page should yield no entries, got %d", len(res.Schedule))
	}
}

func TestDefaultCompetitions(t *testing.T) {
	comps := DefaultCompetitions()
	if len(comps) != 10 {
		t.Fatalf("got %d competitions, want 10", len(comps))
	}
	available := 0
	for _, c := range comps {
		if c.Available() {
			available++
		}
	}
	if available != 2 {
		t.Errorf("available: got %d, want 2", available)
	}
	women := Filter(comps, 2025, model.LeagueWomen)
	if len(women) != 1 || women[0].ID != "42013" {
		t.Errorf("filter: %+v", women)
	}
}
