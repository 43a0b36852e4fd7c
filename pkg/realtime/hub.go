package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Message is the wire envelope for broadcast events.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub tracks the connected websocket clients and broadcasts events to all of
// them. It implements events.Publisher.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

// NewHub creates a new Hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// HandleConnection registers the client and blocks until it disconnects.
// Pass it to websocket.New when wiring the websocket route.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	id := uuid.New().String()

	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	log.Printf("realtime: client %s connected (%d total)", id, h.ClientCount())

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		conn.Close()
		log.Printf("realtime: client %s disconnected", id)
	}()

	// Clients never send application messages; reading just services the
	// close handshake.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts the event to every connected client. A client whose
// write fails is logged and skipped; it will be removed when its read loop
// sees the broken connection.
func (h *Hub) Publish(event string, payload interface{}) error {
	body, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Printf("realtime: failed to write %s to client %s: %v", event, id, err)
		}
	}
	return nil
}
