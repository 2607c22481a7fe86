package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamenight-tracker/internal/domain"
)

// ListPlayers returns all players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.service.ListPlayers(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list players")
		return
	}
	h.writeSuccess(w, players)
}

// CreatePlayer handles player creation
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req domain.PlayerRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	player, err := h.service.CreatePlayer(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "create player")
		return
	}
	h.writeCreated(w, player)
}

// GetPlayer returns a player by ID
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.service.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, err, "get player")
		return
	}
	h.writeSuccess(w, player)
}

// UpdatePlayer replaces a player's profile. Non-admins may only edit the player
// linked to their own account.
func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	var req domain.PlayerRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	current, err := h.service.GetPlayer(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "get player")
		return
	}
	claims := ClaimsFromContext(r.Context())
	if err := canEditPlayer(claims, current); err != nil {
		h.writeError(w, http.StatusForbidden, err)
		return
	}
	// Only admins may relink a player to another account
	if claims != nil && claims.Role != RoleAdmin {
		req.UserID = current.UserID
	}

	player, err := h.service.UpdatePlayer(r.Context(), playerID, req)
	if err != nil {
		h.writeServiceError(w, err, "update player")
		return
	}
	h.writeSuccess(w, player)
}

// DeletePlayer deletes a player
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePlayer(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		h.writeServiceError(w, err, "delete player")
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// ListGames returns all games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListGames(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list games")
		return
	}
	h.writeSuccess(w, games)
}

// CreateGame handles game creation
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req domain.GameRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := h.service.CreateGame(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "create game")
		return
	}
	h.writeCreated(w, game)
}

// GetGame returns a game by ID
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeServiceError(w, err, "get game")
		return
	}
	h.writeSuccess(w, game)
}

// UpdateGame replaces a game's fields
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	var req domain.GameRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := h.service.UpdateGame(r.Context(), chi.URLParam(r, "gameID"), req)
	if err != nil {
		h.writeServiceError(w, err, "update game")
		return
	}
	h.writeSuccess(w, game)
}

// DeleteGame deletes a game
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		h.writeServiceError(w, err, "delete game")
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// ListEvents returns all events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list events")
		return
	}
	h.writeSuccess(w, events)
}

// CreateEvent handles event creation
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.EventRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "create event")
		return
	}
	h.writeCreated(w, event)
}

// GetEvent returns an event by ID
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeServiceError(w, err, "get event")
		return
	}
	h.writeSuccess(w, event)
}

// UpdateEvent replaces an event's fields
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.EventRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), chi.URLParam(r, "eventID"), req)
	if err != nil {
		h.writeServiceError(w, err, "update event")
		return
	}
	h.writeSuccess(w, event)
}

// DeleteEvent deletes an event and its results
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		h.writeServiceError(w, err, "delete event")
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}
