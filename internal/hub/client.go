package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBufferSize = 64
)

// Client is one websocket subscriber.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub
	send chan Update

	sports   map[string]bool
	sportsMu sync.RWMutex
}

// NewClient wraps an upgraded connection. sports is the subscription filter;
// empty means all sports.
func NewClient(conn *websocket.Conn, h *Hub, sports []string) *Client {
	c := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		hub:  h,
		send: make(chan Update, sendBufferSize),
	}
	if len(sports) > 0 {
		c.sports = make(map[string]bool, len(sports))
		for _, s := range sports {
			c.sports[s] = true
		}
	}
	return c
}

// ReadPump drains the client connection and unregisters on close. Inbound
// messages beyond the subscribe frame are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg struct {
			Sports []string `json:"sports"`
		}
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.setSports(msg.Sports)
	}
}

// WritePump pushes updates and keepalive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(update); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) trySend(update Update) bool {
	select {
	case c.send <- update:
		return true
	default:
		return false
	}
}

func (c *Client) wantsSport(sportKey string) bool {
	c.sportsMu.RLock()
	defer c.sportsMu.RUnlock()

	if c.sports == nil {
		return true
	}
	return c.sports[sportKey]
}

func (c *Client) setSports(sports []string) {
	c.sportsMu.Lock()
	defer c.sportsMu.Unlock()

	if len(sports) == 0 {
		c.sports = nil
		return
	}
	c.sports = make(map[string]bool, len(sports))
	for _, s := range sports {
		c.sports[s] = true
	}
}
