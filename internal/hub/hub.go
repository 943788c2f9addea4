// Package hub fans out refresh deltas to websocket subscribers.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairline/fairline/internal/ranking"
)

// Update is one refresh cycle's broadcast: the sport and every best-price
// movement since the previous snapshot.
type Update struct {
	SportKey string          `json:"sport_key"`
	Deltas   []ranking.Delta `json:"deltas"`
	SentAt   time.Time       `json:"sent_at"`
}

// Hub maintains the set of active clients and broadcasts updates to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Update
	register   chan *Client
	unregister chan *Client

	log zerolog.Logger
}

// New creates a hub.
func New(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Update, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues an update for all subscribed clients. Updates are dropped
// when the buffer is full rather than blocking the refresher.
func (h *Hub) Broadcast(update Update) {
	select {
	case h.broadcast <- update:
	default:
		h.log.Warn().Str("sport", update.SportKey).Msg("broadcast buffer full, dropping update")
	}
}

// ClientCount returns the number of active clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.log.Info().Str("client", c.ID).Int("total", len(h.clients)).Msg("client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Info().Str("client", c.ID).Int("total", len(h.clients)).Msg("client disconnected")
	}
}

func (h *Hub) broadcastUpdate(update Update) {
	if len(update.Deltas) == 0 {
		return
	}

	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.wantsSport(update.SportKey) {
			continue
		}
		if !c.trySend(update) {
			// Buffer full means the client cannot keep up.
			h.log.Warn().Str("client", c.ID).Msg("client buffer full, disconnecting")
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
