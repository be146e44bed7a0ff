package http

import (
	"github.com/gin-gonic/gin"
)

// GET /v1/insights/summary
func (s *Server) getSummary(c *gin.Context) {
	summary, err := s.Insights.Summary(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, summary)
}
