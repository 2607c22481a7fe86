package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamenight-tracker/internal/domain"
)

// GetLeaderboard returns the overall leaderboard, a single season with ?year=,
// or any scope id with ?scope=
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		f, err := parseFilter(r)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		scope = domain.ScopeOverall
		if f.Year != 0 {
			scope = domain.YearScope(f.Year)
		}
	}

	lb, err := h.service.Leaderboard(r.Context(), scope, intQuery(r, "offset", 0), intQuery(r, "limit", 0))
	if err != nil {
		h.writeServiceError(w, err, "get leaderboard")
		return
	}
	h.writeSuccess(w, lb)
}

// CreateLeaderboard handles saved leaderboard creation
func (h *Handler) CreateLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeaderboardRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	config, err := h.service.CreateLeaderboard(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "create leaderboard")
		return
	}
	h.writeCreated(w, config)
}

// ListLeaderboards returns all saved leaderboards
func (h *Handler) ListLeaderboards(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.ListLeaderboards(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list leaderboards")
		return
	}
	h.writeSuccess(w, configs)
}

// GetLeaderboardConfig returns a saved leaderboard definition
func (h *Handler) GetLeaderboardConfig(w http.ResponseWriter, r *http.Request) {
	config, err := h.service.GetLeaderboardConfig(r.Context(), chi.URLParam(r, "leaderboardID"))
	if err != nil {
		h.writeServiceError(w, err, "get leaderboard")
		return
	}
	h.writeSuccess(w, config)
}

// DeleteLeaderboard deletes a saved leaderboard
func (h *Handler) DeleteLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLeaderboard(r.Context(), chi.URLParam(r, "leaderboardID")); err != nil {
		h.writeServiceError(w, err, "delete leaderboard")
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// GetLeaderboardRows returns a page of a saved leaderboard's rows
func (h *Handler) GetLeaderboardRows(w http.ResponseWriter, r *http.Request) {
	scope := domain.ConfigScope(chi.URLParam(r, "leaderboardID"))

	lb, err := h.service.Leaderboard(r.Context(), scope, intQuery(r, "offset", 0), intQuery(r, "limit", 0))
	if err != nil {
		h.writeServiceError(w, err, "get leaderboard rows")
		return
	}
	h.writeSuccess(w, lb)
}

// GetAroundPlayer returns the rows around a player's position on a saved leaderboard
func (h *Handler) GetAroundPlayer(w http.ResponseWriter, r *http.Request) {
	scope := domain.ConfigScope(chi.URLParam(r, "leaderboardID"))

	rows, err := h.service.LeaderboardAround(r.Context(), scope, chi.URLParam(r, "playerID"), intQuery(r, "range", 0))
	if err != nil {
		h.writeServiceError(w, err, "get around player")
		return
	}
	h.writeSuccess(w, rows)
}

// GetPlayerStats returns a player's aggregates under the query filter
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := h.service.PlayerStats(r.Context(), chi.URLParam(r, "playerID"), f)
	if err != nil {
		h.writeServiceError(w, err, "get player stats")
		return
	}
	h.writeSuccess(w, stats)
}

// GetGameStats returns a game's aggregates under the query filter
func (h *Handler) GetGameStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := h.service.GameStats(r.Context(), chi.URLParam(r, "gameID"), f)
	if err != nil {
		h.writeServiceError(w, err, "get game stats")
		return
	}
	h.writeSuccess(w, stats)
}

// GetTopScorers returns the best scorers of an event
func (h *Handler) GetTopScorers(w http.ResponseWriter, r *http.Request) {
	scorers, err := h.service.TopScorers(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeServiceError(w, err, "get top scorers")
		return
	}
	h.writeSuccess(w, scorers)
}

// GetInsights returns droughts, streaks, rivalries, attendance and championships
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeSuccess(w, h.service.Insights(r.Context(), f))
}

// GetDashboard returns every view of the dashboard in one response
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeSuccess(w, h.service.Dashboard(r.Context(), f))
}

// GetChampionships returns yearly champions and title counts. Year and date
// filters pick which concluded years are listed.
func (h *Handler) GetChampionships(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeSuccess(w, h.service.Championships(r.Context(), f))
}
