package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gamenight-tracker/internal/domain"
)

// Message types
const (
	MessageTypeLeaderboardUpdate = "leaderboard_update"
	MessageTypeDataChanged       = "data_changed"
	MessageTypeSubscribe         = "subscribe"
	MessageTypeUnsubscribe       = "unsubscribe"
	MessageTypeSubscribed        = "subscribed"
	MessageTypeUnsubscribed      = "unsubscribed"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeError             = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Scope     string      `json:"scope,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// LeaderboardUpdate contains a recomputed leaderboard for broadcast
type LeaderboardUpdate struct {
	Scope   string                  `json:"scope"`
	Name    string                  `json:"name,omitempty"`
	Version int64                   `json:"version"`
	Rows    []domain.LeaderboardRow `json:"rows"`
}

// DataChanged tells every client that a new snapshot was published
type DataChanged struct {
	Version int64 `json:"version"`
}

// LeaderboardLoader computes the current leaderboard of a scope. The hub uses it
// to send the initial state right after a client subscribes.
type LeaderboardLoader func(ctx context.Context, scope string) (*domain.Leaderboard, error)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by scope
	clients map[string]map[*Client]bool

	// All connected clients
	allClients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Outbound messages
	broadcast chan *Message

	// Subscription requests
	subscribe chan *subscriptionRequest

	// Unsubscription requests
	unsubscribe chan *subscriptionRequest

	// Mutex for thread-safe operations
	mu sync.RWMutex

	loader LeaderboardLoader

	// Logger
	logger *slog.Logger

	// Context for shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

type subscriptionRequest struct {
	client *Client
	scope  string
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		allClients:  make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		subscribe:   make(chan *subscriptionRequest, 64),
		unsubscribe: make(chan *subscriptionRequest, 64),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetLoader installs the function used to send initial state on subscribe.
// It must be called before Run.
func (h *Hub) SetLoader(loader LeaderboardLoader) {
	h.loader = loader
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.allClients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.allClients[client]; ok {
				delete(h.allClients, client)
				for scope, clients := range h.clients {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.clients, scope)
						}
					}
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.allClients[req.client]; ok {
				if _, ok := h.clients[req.scope]; !ok {
					h.clients[req.scope] = make(map[*Client]bool)
				}
				h.clients[req.scope][req.client] = true
			}
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "client_id", req.client.id, "scope", req.scope)

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if clients, ok := h.clients[req.scope]; ok {
				delete(clients, req.client)
				if len(clients) == 0 {
					delete(h.clients, req.scope)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unsubscribed", "client_id", req.client.id, "scope", req.scope)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

// broadcastMessage sends a message to the clients of its scope, or to every
// client when the message has no scope
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	targets := h.allClients
	if message.Scope != "" {
		targets = h.clients[message.Scope]
	}
	for client := range targets {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full, skip
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message", "type", message.Type, "scope", message.Scope)
	}
}

// BroadcastLeaderboard sends a recomputed leaderboard to the scope's subscribers
func (h *Hub) BroadcastLeaderboard(lb domain.Leaderboard) {
	h.enqueue(&Message{
		Type:  MessageTypeLeaderboardUpdate,
		Scope: lb.Scope,
		Data: LeaderboardUpdate{
			Scope:   lb.Scope,
			Name:    lb.Name,
			Version: lb.Version,
			Rows:    lb.Rows,
		},
		Timestamp: time.Now(),
	})
}

// BroadcastDataChanged notifies every connected client of a new snapshot version
func (h *Hub) BroadcastDataChanged(version int64) {
	h.enqueue(&Message{
		Type:      MessageTypeDataChanged,
		Data:      DataChanged{Version: version},
		Timestamp: time.Now(),
	})
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a client to a scope subscription
func (h *Hub) Subscribe(client *Client, scope string) {
	h.subscribe <- &subscriptionRequest{
		client: client,
		scope:  scope,
	}
}

// Unsubscribe removes a client from a scope subscription
func (h *Hub) Unsubscribe(client *Client, scope string) {
	h.unsubscribe <- &subscriptionRequest{
		client: client,
		scope:  scope,
	}
}

// SubscribedScopes returns every scope with at least one subscriber
func (h *Hub) SubscribedScopes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	scopes := make([]string, 0, len(h.clients))
	for scope := range h.clients {
		scopes = append(scopes, scope)
	}
	return scopes
}

// GetSubscriberCount returns the number of subscribers for a scope
func (h *Hub) GetSubscriberCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scope])
}

// GetTotalConnections returns the total number of connected clients
func (h *Hub) GetTotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}
