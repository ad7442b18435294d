package websocket

import (
	"encoding/json"
	"sync"

	"github.com/evanoh/storepulse-backend/internal/app/service"
	"github.com/evanoh/storepulse-backend/pkg/logger"
)

// Client is one live dashboard connection of a store owner.
type Client struct {
	Hub     *Hub
	Conn    *Conn
	UserID  uint
	StoreID uint
	Send    chan []byte
}

// Hub fans rating events out to the owners subscribed to the affected
// store. It implements service.RatingNotifier.
type Hub struct {
	// subscribed clients per store (a store owner may connect from
	// multiple devices)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	events     chan service.RatingEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		events:     make(chan service.RatingEvent, 256),
	}
}

// Run processes registrations and event delivery. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.StoreID] = append(h.clients[client.StoreID], client)
			h.mu.Unlock()

			logger.Info("Owner subscribed to rating feed", map[string]interface{}{
				"user_id":  client.UserID,
				"store_id": client.StoreID,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.events:
			h.deliver(event)
		}
	}
}

// RatingChanged queues a rating event for delivery. Never blocks the
// request path: when the buffer is full the event is dropped and the nightly
// reconciliation plus the next dashboard load still show the correct state.
func (h *Hub) RatingChanged(event service.RatingEvent) {
	select {
	case h.events <- event:
	default:
		logger.Warn("Rating event dropped: hub buffer full", map[string]interface{}{
			"store_id": event.StoreID,
		})
	}
}

func (h *Hub) deliver(event service.RatingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal rating event", err, nil)
		return
	}

	h.mu.RLock()
	clients := h.clients[event.StoreID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer: drop the connection rather than the hub.
			h.removeClient(client)
			close(client.Send)
		}
	}

	if len(clients) > 0 {
		logger.Debug("Rating event delivered", map[string]interface{}{
			"store_id":  event.StoreID,
			"receivers": len(clients),
		})
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.StoreID]
	for i, c := range clients {
		if c == client {
			h.clients[client.StoreID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.clients[client.StoreID]) == 0 {
		delete(h.clients, client.StoreID)
	}
}

// SubscriberCount reports how many connections watch a store.
func (h *Hub) SubscriberCount(storeID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[storeID])
}
