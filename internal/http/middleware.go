package http

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zero-finance-go/internal/auth"
	"zero-finance-go/internal/config"
)

// AuthMiddleware resolves the bearer token to a user id. Websocket clients
// that cannot set headers may pass the token as ?token=.
func AuthMiddleware(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_invalid"})
				return
			}
			token = parts[1]
		}
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_missing"})
			return
		}

		id, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token"})
			return
		}

		c.Set("userID", id)
		c.Set("token", token)
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	origins := allowedOrigins(cfg)
	if len(origins) == 0 || origins[0] == "*" {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	return cors.New(conf)
}

func allowedOrigins(cfg *config.Config) []string {
	var out []string
	for _, o := range strings.Split(cfg.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// timeout bounds every request's context. Long-lived websocket streams are exempt.
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 || c.Request.URL.Path == "/v1/ws" {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
