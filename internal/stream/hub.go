// Package stream provides the live trip feed: a fan-out hub plus a
// websocket endpoint that pushes trip events to subscribers.
package stream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// clientBuffer is the per-client send queue depth. Clients that fall
// further behind than this start dropping events.
const clientBuffer = 64

// Event is the wire envelope pushed to subscribers.
type Event struct {
	Event     string    `json:"event"`
	TripID    string    `json:"tripId"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one websocket subscriber attached to a trip feed.
type Client struct {
	TripID string
	Send   chan []byte
}

// Hub fans trip events out to the subscribers of each trip. It
// implements the trip service's Broadcaster hook.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
		logger:  logger.With().Str("component", "stream_hub").Logger(),
	}
}

// Register attaches a new subscriber to a trip feed.
func (h *Hub) Register(tripID string) *Client {
	client := &Client{
		TripID: tripID,
		Send:   make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tripID] == nil {
		h.clients[tripID] = map[*Client]struct{}{}
	}
	h.clients[tripID][client] = struct{}{}
	return client
}

// Unregister detaches a subscriber and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tripClients, ok := h.clients[client.TripID]; ok {
		if _, registered := tripClients[client]; !registered {
			return
		}
		delete(tripClients, client)
		if len(tripClients) == 0 {
			delete(h.clients, client.TripID)
		}
		close(client.Send)
	}
}

// Broadcast pushes an event to every subscriber of the trip. Slow
// subscribers drop events rather than block the caller.
func (h *Hub) Broadcast(tripID, event string, data any) {
	payload, err := json.Marshal(Event{
		Event:     event,
		TripID:    tripID,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("event", event).Msg("dropping unmarshalable event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[tripID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// SubscriberCount returns how many clients follow the trip.
func (h *Hub) SubscriberCount(tripID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}
