package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
)

// Event types pushed to connected admins
const (
	EventApplicationSubmitted        = "application.submitted"
	EventApplicationStatusChanged    = "application.status_changed"
	EventApplicationDocumentsUpdated = "application.documents_updated"
	EventApplicationDeleted          = "application.deleted"
)

const broadcastBuffer = 64

// Event describes a change to an application
type Event struct {
	Type          string                   `json:"type"`
	ApplicationID int64                    `json:"application_id"`
	Status        models.ApplicationStatus `json:"status,omitempty"`
	Applicant     string                   `json:"applicant,omitempty"`
	Course        string                   `json:"course,omitempty"`
	Timestamp     time.Time                `json:"timestamp"`
}

// NewApplicationEvent builds an event from the application's current state
func NewApplicationEvent(eventType string, app *models.Application) *Event {
	return &Event{
		Type:          eventType,
		ApplicationID: app.ID,
		Status:        app.Status,
		Applicant:     app.FullName(),
		Course:        app.CourseName,
		Timestamp:     time.Now().UTC(),
	}
}

// Publisher accepts events for fan-out
type Publisher interface {
	Publish(event *Event)
}

// Hub maintains the set of connected admin clients and fans events out to them
type Hub struct {
	clients map[*Client]bool

	// Events waiting to be fanned out
	broadcast chan *Event

	register   chan *Client
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Register adds client to the hub. It returns false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client; it is a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for delivery. It never blocks: when the queue is full the event is dropped.
func (h *Hub) Publish(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Str("type", event.Type).
			Int64("applicationID", event.ApplicationID).
			Msg("Event queue full, dropping event")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

// broadcastEvent writes to every client's buffer; clients whose buffer is full are dropped
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Int64("userID", client.userID).Msg("Client too slow, disconnecting")
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", event.Type).
		Int("clientCount", len(h.clients)).
		Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// ClientsCount returns the number of connected clients
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(*Event) {}
