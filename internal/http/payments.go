package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"zero-finance-go/internal/status"
)

// GET /v1/payments?filter=pending|paid|overdue
func (s *Server) listPayments(c *gin.Context) {
	f, err := status.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_filter"})
		return
	}
	items, err := s.Insights.Payments(c.Request.Context(), userID(c), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, items)
}

// GET /v1/payments/upcoming?days=N
func (s *Server) upcomingPayments(c *gin.Context) {
	days := s.Insights.WindowDays()
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 366 {
			c.JSON(400, gin.H{"error": "invalid_days"})
			return
		}
		days = n
	}
	items, err := s.Insights.Upcoming(c.Request.Context(), userID(c), days)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"days": days, "payments": items})
}

// GET /v1/payments/sections
func (s *Server) paymentSections(c *gin.Context) {
	sections, err := s.Insights.Sections(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, sections)
}

// POST /v1/payments/:id/paid
func (s *Server) markPaid(c *gin.Context) {
	s.setPaid(c, true)
}

// DELETE /v1/payments/:id/paid
func (s *Server) markUnpaid(c *gin.Context) {
	s.setPaid(c, false)
}

func (s *Server) setPaid(c *gin.Context, paid bool) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var (
		changed bool
		err     error
	)
	if paid {
		changed, err = s.Store.MarkPaymentPaid(c.Request.Context(), userID(c), id)
	} else {
		changed, err = s.Store.MarkPaymentUnpaid(c.Request.Context(), userID(c), id)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if !changed {
		c.JSON(404, gin.H{"error": "not_found"})
		return
	}
	c.JSON(200, gin.H{"id": id, "is_paid": paid})
}
