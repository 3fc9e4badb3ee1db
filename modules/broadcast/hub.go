package broadcast

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// MessageWriter is the write half of a client connection. *websocket.Conn
// satisfies it; tests substitute a recorder.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a connected WebSocket client. Writes are serialized
// through the client: both the hub loop and the connection's own read
// goroutine (acks) write to the same socket.
type Client struct {
	ID   string
	Conn MessageWriter

	writeMu sync.Mutex
}

// Write sends one frame to the client, serialized against concurrent writers.
func (c *Client) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Delivery is one outbound fan-out. A nil Recipients delivers to every
// connected client.
type Delivery struct {
	Recipients []string
	Data       []byte
}

// Hub tracks live WebSocket connections and performs fan-out. Deliveries are
// fire-and-forget per recipient: a failed write is logged and never blocks
// delivery to the others.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	deliveries chan Delivery
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan Delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case delivery := <-h.deliveries:
			h.handleDelivery(delivery)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Deliver queues a fan-out for the hub loop. All deliveries funnel through
// the loop so client writes happen from one place.
func (h *Hub) Deliver(recipients []string, data []byte) {
	h.deliveries <- Delivery{Recipients: recipients, Data: data}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	log.Printf("[hub] Client %s registered", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		log.Printf("[hub] Client %s unregistered", client.ID)
	}
}

func (h *Hub) handleDelivery(delivery Delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if delivery.Recipients == nil {
		for _, client := range h.clients {
			h.sendToClient(client, delivery.Data)
		}
		return
	}
	for _, id := range delivery.Recipients {
		if client, ok := h.clients[id]; ok {
			h.sendToClient(client, delivery.Data)
		}
	}
}

func (h *Hub) sendToClient(client *Client, data []byte) {
	if err := client.Write(data); err != nil {
		log.Printf("[hub] Failed to send to client %s: %v", client.ID, err)
	}
}
