package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	msync "github.com/xelth-com/maintdesk/internal/sync"
)

// Hub maintains the set of active clients and broadcasts change events
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound messages for every client
	broadcast chan []byte

	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	log *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		log:        log.Named("ws"),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// Same client id connecting again replaces the old connection
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.log.Debug("📱 Client connected", zap.String("client", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
				close(client.send)
				h.log.Debug("📴 Client disconnected", zap.String("client", client.ID))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead
					delete(h.clients, id)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChangeMessage is the frame pushed to clients for every change event
type ChangeMessage struct {
	Type string `json:"type"`
	msync.ChangeEvent
}

// Notify queues ev for every client. Events are dropped when the queue is full.
func (h *Hub) Notify(ev msync.ChangeEvent) {
	msg, err := json.Marshal(ChangeMessage{Type: "CHANGE", ChangeEvent: ev})
	if err != nil {
		h.log.Warn("Error marshaling change event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("⚠️  Change feed queue full, dropping event",
			zap.String("entity", string(ev.Entity)), zap.String("id", ev.ID))
	}
}
