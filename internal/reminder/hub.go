package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

type Event struct {
	Type     string    `json:"type"`
	Reminder *Reminder `json:"reminder,omitempty"`
}

// Hub pushes reminders to the websocket connections of their user.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[uint]map[*client]bool
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, clients: make(map[uint]map[*client]bool)}
}

func (h *Hub) Name() string { return "websocket" }

func (h *Hub) Deliver(_ context.Context, r Reminder) error {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[r.UserID]))
	for c := range h.clients[r.UserID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.writeJSON(Event{Type: "reminder", Reminder: &r}); err != nil {
			h.log.Warn("websocket write failed", zap.Uint("user_id", r.UserID), zap.Error(err))
			h.remove(r.UserID, c)
			c.conn.Close()
		}
	}
	return nil
}

// Connected reports how many connections the user has open.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) add(userID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]bool)
	}
	h.clients[userID][c] = true
}

func (h *Hub) remove(userID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Serve owns an upgraded connection until the peer goes away.
func (h *Hub) Serve(userID uint, conn *websocket.Conn) {
	c := &client{conn: conn}
	h.add(userID, c)
	defer func() {
		h.remove(userID, c)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.writeJSON(Event{Type: "connected"}); err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket closed", zap.Uint("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}
