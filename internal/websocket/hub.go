package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamebuddy-app/internal/notification"
)

// Message types
const (
	MessageTypeNotification = "notification"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
)

var (
	// ErrNotConnected is returned when a gamer has no live connection
	ErrNotConnected = fmt.Errorf("gamer not connected: %w", notification.ErrRecipientOffline)
	// ErrBufferFull is returned when every connection of a gamer is backed up
	ErrBufferFull = errors.New("client buffers full")
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks live connections per gamer and pushes notifications to them
type Hub struct {
	// Connections by gamer ID, a gamer may have several devices
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
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
			if _, ok := h.clients[client.gamerID]; !ok {
				h.clients[client.gamerID] = make(map[*Client]bool)
			}
			h.clients[client.gamerID][client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id, "gamer_id", client.gamerID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.gamerID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
				}
				if len(clients) == 0 {
					delete(h.clients, client.gamerID)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id, "gamer_id", client.gamerID)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

// Deliver pushes n to every connection of its gamer. It implements
// notification.Sink.
func (h *Hub) Deliver(ctx context.Context, n notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(&Message{
		Type:      MessageTypeNotification,
		Data:      n,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[n.GamerID]
	if !ok || len(clients) == 0 {
		return ErrNotConnected
	}

	delivered := 0
	for client := range clients {
		select {
		case client.send <- data:
			delivered++
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
	if delivered == 0 {
		return ErrBufferFull
	}
	return nil
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// IsConnected reports whether the gamer has at least one live connection
func (h *Hub) IsConnected(gamerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[gamerID]) > 0
}

// GetTotalConnections returns the total number of connected clients
func (h *Hub) GetTotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}
