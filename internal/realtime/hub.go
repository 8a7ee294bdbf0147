package realtime

import (
	"log"
	"sync"
	"time"
)

// HubOptions tune per-connection behaviour.
type HubOptions struct {
	SendBuffer     int
	PingInterval   time.Duration
	AllowedOrigins []string
}

// Hub keeps every live connection grouped by user id. A user may hold several
// connections at once (tabs, devices); pushes fan out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	opts    HubOptions
}

func NewHub(opts HubOptions) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		opts:    opts,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	log.Printf("[ws] user=%s connected (%d open)", c.userID, len(h.clients[c.userID]))
}

// Unregister drops the client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	log.Printf("[ws] user=%s disconnected", c.userID)
}

// PushToUser enqueues payload on every connection of userID without blocking
// and returns how many connections accepted it. A connection whose buffer is
// full misses this payload.
func (h *Hub) PushToUser(userID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
			delivered++
		default:
			log.Printf("[ws] user=%s send buffer full, dropping payload", userID)
		}
	}
	return delivered
}

// Online reports whether userID has at least one live connection.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
