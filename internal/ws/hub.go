// Package ws pushes geofence alerts to connected clients over websockets.
package ws

import (
	"encoding/json"
	"sync"

	"crimewatch/internal/logger"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID uint
	Send   chan []byte
	hub    *AlertHub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint, buffer int) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, buffer)}
}

// trySend queues data without blocking. Slow clients lose messages.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.Send)
	hub := c.hub
	c.mu.Unlock()
	if hub != nil {
		hub.unregister(c)
	}
}

// AlertHub tracks connections per user. One user can hold several.
type AlertHub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*Client]struct{}
	count  int
}

func NewAlertHub() *AlertHub {
	return &AlertHub{byUser: make(map[uint]map[*Client]struct{})}
}

func (h *AlertHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
	h.count++
}

func (h *AlertHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.byUser[c.UserID]
	if _, ok := m[c]; !ok {
		return
	}
	delete(m, c)
	h.count--
	if len(m) == 0 {
		delete(h.byUser, c.UserID)
	}
}

// BroadcastToUser sends payload as JSON to every connection of userID and
// returns how many connections accepted it.
func (h *AlertHub) BroadcastToUser(userID uint, payload interface{}) int {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Component("ws").Warn("marshal alert", "err", err)
		return 0
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.byUser[userID]))
	for c := range h.byUser[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	sent := 0
	for _, c := range clients {
		if c.trySend(data) {
			sent++
		}
	}
	return sent
}

func (h *AlertHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
