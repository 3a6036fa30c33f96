// Package realtime pushes per-user updates (recomputed daily totals) to open
// websocket connections.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn is the part of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one open connection of a user.
type Client struct {
	UserID string
	conn   Conn
	mu     sync.Mutex
}

func NewClient(userID string, conn Conn) *Client {
	return &Client{UserID: userID, conn: conn}
}

// write serialises writes; gorilla connections allow one concurrent writer.
func (c *Client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Ping sends a websocket ping control frame.
func (c *Client) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// Message is the envelope every push is wrapped in.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub tracks open clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     logging.Logger
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{}), log: log}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister drops the client and closes its connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Count returns the number of open connections of a user.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends msgType/payload to every connection of userID. Clients whose
// write fails are unregistered.
func (h *Hub) Publish(ctx context.Context, userID, msgType string, payload any) {
	msg, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		h.log.Error(ctx, "realtime marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.log.Warn(ctx, "realtime write failed", "user_id", userID, "error", err)
			h.Unregister(c)
		}
	}
}
