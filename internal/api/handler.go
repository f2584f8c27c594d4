package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pable/go-bball-metrics/internal/aggregator"
	"github.com/pable/go-bball-metrics/internal/api/respond"
	"github.com/pable/go-bball-metrics/internal/logging"
	"github.com/pable/go-bball-metrics/internal/model"
	"github.com/pable/go-bball-metrics/internal/storage"
)

// ErrRefreshRunning is returned by Handler.Refresh when another refresh holds
// the lock.
var ErrRefreshRunning = errors.New("refresh already running")

// RefreshFunc performs one full refresh of the store.
type RefreshFunc func(ctx context.Context) (model.ScrapeRun, error)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	db      *storage.DB
	refresh RefreshFunc
	logger  *slog.Logger

	refreshMu sync.Mutex
}

// New creates a Handler. refresh may be nil, in which case the refresh
// endpoint reports 503.
func New(db *storage.DB, refresh RefreshFunc, logger *slog.Logger) *Handler {
	return &Handler{db: db, refresh: refresh, logger: logger}
}

// Refresh runs the refresh function unless one is already in progress. It is
// used by the HTTP endpoint and by the scheduler so the two never overlap.
func (h *Handler) Refresh(ctx context.Context) (model.ScrapeRun, error) {
	if !h.refreshMu.TryLock() {
		return model.ScrapeRun{}, ErrRefreshRunning
	}
	defer h.refreshMu.Unlock()
	return h.refresh(ctx)
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetadata reports when the store was last refreshed.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	ts, ok, err := h.db.LastUpdated()
	if err != nil {
		h.internalError(w, "load metadata", err)
		return
	}
	body := map[string]any{"last_updated": nil}
	if ok {
		body["last_updated"] = ts
	}
	respond.WriteJSON(w, http.StatusOK, body)
}

// GetPlayers lists player records, optionally filtered by season, league and team.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r, false)
	if !ok {
		return
	}
	league, ok := leagueParam(w, r)
	if !ok {
		return
	}
	players, err := h.db.LoadPlayersWhere(storage.PlayerFilter{
		Season: season,
		League: league,
		TeamID: r.URL.Query().Get("team"),
	})
	if err != nil {
		h.internalError(w, "load players", err)
		return
	}

	out := make([]playerJSON, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerJSON(p))
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"count": len(out), "players": out})
}

// playerJSON is the wire shape of a player record: identity plus typed stats.
type playerJSON struct {
	PlayerID string            `json:"player_id"`
	Name     string            `json:"name"`
	TeamID   string            `json:"team_id"`
	TeamName string            `json:"team_name"`
	Season   int               `json:"season"`
	League   model.League      `json:"league"`
	Link     string            `json:"link,omitempty"`
	Stats    model.Stats       `json:"stats"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func toPlayerJSON(p model.PlayerSeason) playerJSON {
	s, _ := p.Stats()
	return playerJSON{
		PlayerID: p.PlayerID,
		Name:     p.Name,
		TeamID:   p.TeamID,
		TeamName: p.TeamName,
		Season:   p.Season,
		League:   p.League,
		Link:     p.Link,
		Stats:    s,
		Extra:    p.Extra,
	}
}

// GetTeams lists teams, optionally filtered by season and league.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r, false)
	if !ok {
		return
	}
	league, ok := leagueParam(w, r)
	if !ok {
		return
	}
	teams, err := h.db.LoadTeams()
	if err != nil {
		h.internalError(w, "load teams", err)
		return
	}
	out := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		if (season == 0 || t.Season == season) && (league == "" || t.League == league) {
			out = append(out, t)
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"count": len(out), "teams": out})
}

// GetSchedule lists schedule entries, for one team when ?team= is given.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r, false)
	if !ok {
		return
	}
	var (
		entries []model.ScheduleEntry
		err     error
	)
	if team := r.URL.Query().Get("team"); team != "" {
		entries, err = h.db.LoadTeamSchedule(team, season)
	} else {
		entries, err = h.db.LoadSchedule()
		if err == nil && season != 0 {
			filtered := entries[:0]
			for _, e := range entries {
				if e.Season == season {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
	}
	if err != nil {
		h.internalError(w, "load schedule", err)
		return
	}
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"count": len(entries), "schedule": entries})
}

// GetTeamAggregate returns one team's strength for ?season=.
func (h *Handler) GetTeamAggregate(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r, true)
	if !ok {
		return
	}
	players, ok := h.loadPlayers(w)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")
	ts := aggregator.TeamAggregate(players, teamID, season)
	if ts == nil {
		respond.WriteError(w, http.StatusNotFound, "insufficient_data", "no records for team "+teamID+" in season "+strconv.Itoa(season))
		return
	}
	respond.WriteJSON(w, http.StatusOK, ts)
}

// GetTeamMultiSeason returns one team's averages over every stored season.
func (h *Handler) GetTeamMultiSeason(w http.ResponseWriter, r *http.Request) {
	players, ok := h.loadPlayers(w)
	if !ok {
		return
	}
	teamID := chi.URLParam(r, "teamID")
	ms := aggregator.MultiSeasonAggregate(players, teamID)
	if ms == nil {
		respond.WriteError(w, http.StatusNotFound, "insufficient_data", "no records for team "+teamID)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ms)
}

// GetMatchup projects ?team_a= against ?team_b= for ?season=.
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	a, b, ok := teamPairParams(w, r)
	if !ok {
		return
	}
	season, ok := seasonParam(w, r, true)
	if !ok {
		return
	}
	players, ok := h.loadPlayers(w)
	if !ok {
		return
	}
	rep := aggregator.Matchup(players, a, b, season)
	if rep.Insufficient {
		respond.WriteError(w, http.StatusNotFound, "insufficient_data", rep.Reason)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rep)
}

// GetMultiSeasonMatchup compares two teams over every stored season.
func (h *Handler) GetMultiSeasonMatchup(w http.ResponseWriter, r *http.Request) {
	a, b, ok := teamPairParams(w, r)
	if !ok {
		return
	}
	players, ok := h.loadPlayers(w)
	if !ok {
		return
	}
	rep := aggregator.MultiSeasonMatchup(players, a, b)
	if rep.Insufficient {
		respond.WriteError(w, http.StatusNotFound, "insufficient_data", rep.Reason)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rep)
}

// PostRefresh runs a full refresh synchronously.
func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresh == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "refresh_disabled", "refresh is not configured")
		return
	}
	run, err := h.Refresh(r.Context())
	switch {
	case errors.Is(err, ErrRefreshRunning):
		respond.WriteError(w, http.StatusConflict, "refresh_running", err.Error())
	case err != nil:
		h.internalError(w, "refresh", err)
	default:
		respond.WriteJSON(w, http.StatusOK, run)
	}
}

// ---- helpers ----

func (h *Handler) loadPlayers(w http.ResponseWriter) ([]model.PlayerSeason, bool) {
	players, err := h.db.LoadPlayers()
	if err != nil {
		h.internalError(w, "load players", err)
		return nil, false
	}
	return players, true
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	logging.Error(h.logger, op+" failed", err)
	respond.WriteError(w, http.StatusInternalServerError, "internal_error", op+" failed")
}

// seasonParam parses ?season=. A missing season is 0 unless required.
func seasonParam(w http.ResponseWriter, r *http.Request, required bool) (int, bool) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		if required {
			respond.WriteError(w, http.StatusBadRequest, "missing_parameter", "season is required")
			return 0, false
		}
		return 0, true
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "invalid_parameter", "season must be a positive year")
		return 0, false
	}
	return season, true
}

func leagueParam(w http.ResponseWriter, r *http.Request) (model.League, bool) {
	raw := r.URL.Query().Get("league")
	if raw == "" {
		return "", true
	}
	league, ok := model.ParseLeague(raw)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "invalid_parameter", "league must be Men or Women")
		return "", false
	}
	return league, true
}

func teamPairParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	a, b := q.Get("team_a"), q.Get("team_b")
	if a == "" || b == "" {
		respond.WriteError(w, http.StatusBadRequest, "missing_parameter", "team_a and team_b are required")
		return "", "", false
	}
	return a, b, true
}
