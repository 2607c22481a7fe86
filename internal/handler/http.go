package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/service"
	"github.com/gamenight-tracker/internal/websocket"
)

// Handler provides HTTP handlers for the tracker API
type Handler struct {
	service  *service.TrackerService
	hub      *websocket.Hub
	auth     *Authenticator
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler. A nil authenticator leaves write routes open.
func NewHandler(service *service.TrackerService, hub *websocket.Hub, auth *Authenticator, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		hub:      hub,
		auth:     auth,
		validate: newValidator(),
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	admin := h.requireRole(RoleAdmin)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.With(admin).Post("/", h.CreatePlayer)

			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", h.GetPlayer)
				r.With(h.requireAuth).Put("/", h.UpdatePlayer)
				r.With(admin).Delete("/", h.DeletePlayer)
				r.Get("/stats", h.GetPlayerStats)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.With(admin).Post("/", h.CreateGame)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", h.GetGame)
				r.With(admin).Put("/", h.UpdateGame)
				r.With(admin).Delete("/", h.DeleteGame)
				r.Get("/stats", h.GetGameStats)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.With(admin).Post("/", h.CreateEvent)

			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", h.GetEvent)
				r.With(admin).Put("/", h.UpdateEvent)
				r.With(admin).Delete("/", h.DeleteEvent)
				r.Get("/top-scorers", h.GetTopScorers)
			})
		})

		// Any signed-in player may record results
		r.Route("/results", func(r chi.Router) {
			r.Get("/", h.ListResults)
			r.With(h.requireAuth).Post("/", h.RecordResult)
			r.With(h.requireAuth).Post("/batch", h.RecordResultBatch)
			r.Get("/{resultID}", h.GetResult)
			r.With(admin).Delete("/{resultID}", h.DeleteResult)
		})

		r.Get("/leaderboard", h.GetLeaderboard)

		// Saved leaderboards
		r.Route("/leaderboards", func(r chi.Router) {
			r.Get("/", h.ListLeaderboards)
			r.With(admin).Post("/", h.CreateLeaderboard)

			r.Route("/{leaderboardID}", func(r chi.Router) {
				r.Get("/", h.GetLeaderboardConfig)
				r.With(admin).Delete("/", h.DeleteLeaderboard)
				r.Get("/rows", h.GetLeaderboardRows)
				r.Get("/around/{playerID}", h.GetAroundPlayer)
			})
		})

		r.Get("/insights", h.GetInsights)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/championships", h.GetChampionships)

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeCreated writes a successful JSON response for a new resource
func (h *Handler) writeCreated(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps a service error to its status. Unexpected errors are logged
// and hidden behind a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("failed to "+action, "error", err)
		h.writeError(w, status, domain.ErrInternalError)
		return
	}
	h.writeError(w, status, err)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidResult),
		errors.Is(err, domain.ErrInvalidLeaderboard),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLeaderboardExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// intQuery reads a non-negative integer query parameter, falling back to def
func intQuery(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	scopes := make(map[string]int)
	for _, scope := range h.hub.SubscribedScopes() {
		scopes[scope] = h.hub.GetSubscriberCount(scope)
	}
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
		"subscriptions":     scopes,
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, errors.New("not ready"))
		return
	}
	h.writeSuccess(w, map[string]interface{}{
		"status":  "ready",
		"version": h.service.Snapshot().Version,
	})
}
