// Package notify fans match events out to connected clients. Events are
// published to Redis by the matchmaker (possibly on another instance), picked
// up by the hub's pub/sub listener and delivered to the targeted user's
// websocket, so waiting seekers hear about a claim without relying solely on
// the polling endpoint.
package notify

import (
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"tellnoone/backend/internal/models"
)

// EventSource provides the Redis subscription feeding the hub.
type EventSource interface {
	SubscribeMatchEvents() *redis.PubSub
}

// Hub owns the client registry and dispatches match events.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	events chan models.MatchEvent
	source EventSource
}

// NewHub creates a hub wired to the given event source.
func NewHub(source EventSource) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		events:       make(chan models.MatchEvent, 64),
		source:       source,
	}
}

// startPubSubListener consumes the Redis match-event channel and feeds the
// hub's internal event channel.
func (h *Hub) startPubSubListener() {
	go func() {
		pubsub := h.source.SubscribeMatchEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.MatchEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: Failed to decode match event: %v", err)
				continue
			}
			h.events <- event
		}
	}()
}

// Run is the hub's main dispatch loop. Start it in its own goroutine.
func (h *Hub) Run() {
	log.Println("Notification hub started.")
	h.startPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetUserID()] = client

		case client := <-h.UnregisterCh:
			if registered, ok := h.Clients[client.GetUserID()]; ok && registered == client {
				delete(h.Clients, client.GetUserID())
				client.Close()
			}

		case event := <-h.events:
			client, ok := h.Clients[event.UserID]
			if !ok {
				// Recipient not connected here; they learn via polling.
				continue
			}
			select {
			case client.GetSendChannel() <- event:
			default:
				// Slow client; drop the connection rather than the hub.
				delete(h.Clients, event.UserID)
				client.Close()
			}
		}
	}
}
