package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zero-finance-go/internal/reminder"
)

type scheduledReminder struct {
	Handle string `json:"handle"`
	reminder.Reminder
}

// GET /v1/reminders
func (s *Server) listReminders(c *gin.Context) {
	rows, err := s.Outbox.List(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]scheduledReminder, 0, len(rows))
	for _, row := range rows {
		r, err := reminder.Decode(row)
		if err != nil {
			s.fail(c, err)
			return
		}
		out = append(out, scheduledReminder{Handle: row.Handle, Reminder: r})
	}
	c.JSON(200, out)
}

// POST /v1/reminders/sync
func (s *Server) syncReminders(c *gin.Context) {
	n, err := s.Bridge.Sync(c.Request.Context(), userID(c))
	if err != nil {
		s.Log.Warn("reminder sync failed", zap.Uint("user_id", userID(c)), zap.Error(err))
		c.JSON(502, gin.H{"error": "reminder_sync_failed", "scheduled": n})
		return
	}
	c.JSON(200, gin.H{"scheduled": n})
}

// GET /v1/ws
func (s *Server) streamReminders(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	s.Hub.Serve(userID(c), conn)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range allowedOrigins(s.cfg) {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
