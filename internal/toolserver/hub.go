package toolserver

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/playlint/playlint/models"
)

// eventName is the SSE event type carrying lint progress updates.
const eventName = "lint-status"

// wireEvent is the push-channel frame wrapping one progress event.
type wireEvent struct {
	Event string               `json:"event"`
	Data  models.ProgressEvent `json:"data"`
}

// subscriber is one attached push-channel consumer (SSE or WebSocket).
type subscriber struct {
	send chan []byte
}

// Hub fans lint progress events out to all attached subscribers.
// It implements dispatcher.EventPublisher.
type Hub struct {
	// Attached subscribers
	subscribers map[*subscriber]bool

	// Outbound event frames
	broadcast chan []byte

	// Attach requests
	register chan *subscriber

	// Detach requests
	unregister chan *subscriber

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:   make(chan []byte, 256),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		subscribers: make(map[*subscriber]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			h.mu.Unlock()
			log.Printf("event subscriber attached (total: %d)", h.SubscriberCount())

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			h.mu.Unlock()
			log.Printf("event subscriber detached (total: %d)", h.SubscriberCount())

		case message := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.subscribers {
				select {
				case sub.send <- message:
				default:
					// Subscriber is slow or disconnected, remove it
					close(sub.send)
					delete(h.subscribers, sub)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends a progress event to all attached subscribers.
func (h *Hub) Publish(event models.ProgressEvent) {
	message, err := json.Marshal(wireEvent{Event: eventName, Data: event})
	if err != nil {
		log.Printf("ERROR: Failed to marshal progress event: %v", err)
		return
	}
	h.broadcast <- message
}

// Subscribe attaches a new push-channel consumer.
func (h *Hub) Subscribe() *subscriber {
	sub := &subscriber{send: make(chan []byte, 64)}
	h.register <- sub
	return sub
}

// Unsubscribe detaches a consumer; its channel is closed by the hub.
func (h *Hub) Unsubscribe(sub *subscriber) {
	h.unregister <- sub
}

// SubscriberCount returns the number of attached subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
