package http

import (
	"context"
	"embed"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"zero-finance-go/internal/auth"
	"zero-finance-go/internal/config"
	"zero-finance-go/internal/insights"
	"zero-finance-go/internal/reminder"
	"zero-finance-go/internal/store"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Deps are the services the API is built on. The composition root owns them.
type Deps struct {
	Store       *store.Store
	Insights    *insights.Service
	Credentials *auth.Credentials
	Sessions    *auth.Sessions
	Bridge      *reminder.Bridge
	Outbox      *reminder.Outbox
	Hub         *reminder.Hub
	Log         *zap.Logger
}

type Server struct {
	cfg *config.Config
	Deps

	cardSchema      *gojsonschema.Schema
	cardPatchSchema *gojsonschema.Schema
	purchaseSchema  *gojsonschema.Schema
}

func NewServer(cfg *config.Config, deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg))
	r.Use(logging(deps.Log))
	r.Use(timeout(cfg.RequestTimeout()))

	s := &Server{
		cfg:             cfg,
		Deps:            deps,
		cardSchema:      mustSchema("schemas/card.schema.json"),
		cardPatchSchema: mustSchema("schemas/card_patch.schema.json"),
		purchaseSchema:  mustSchema("schemas/purchase.schema.json"),
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Auth
	r.POST("/v1/auth/register", s.authRegister)
	r.POST("/v1/auth/login", s.authLogin)
	r.POST("/v1/auth/recovery/question", s.authRecoveryQuestion)
	r.POST("/v1/auth/recovery/reset", s.authRecoveryReset)

	// Protected Routes (User Token)
	authorized := r.Group("/v1")
	authorized.Use(AuthMiddleware(deps.Sessions))
	{
		authorized.POST("/auth/logout", s.authLogout)
		authorized.GET("/me", s.getMe)
		authorized.PUT("/me/password", s.changePassword)

		authorized.POST("/cards", s.createCard)
		authorized.GET("/cards", s.listCards)
		authorized.GET("/cards/:id", s.getCard)
		authorized.PATCH("/cards/:id", s.updateCard)
		authorized.DELETE("/cards/:id", s.deleteCard)
		authorized.GET("/cards/:id/purchases", s.listCardPurchases)

		authorized.POST("/purchases", s.createPurchase)
		authorized.GET("/purchases", s.listPurchases)
		authorized.GET("/purchases/:id", s.getPurchase)
		authorized.DELETE("/purchases/:id", s.deletePurchase)
		authorized.GET("/purchases/:id/installments", s.listInstallments)

		authorized.GET("/payments", s.listPayments)
		authorized.GET("/payments/upcoming", s.upcomingPayments)
		authorized.GET("/payments/sections", s.paymentSections)
		authorized.POST("/payments/:id/paid", s.markPaid)
		authorized.DELETE("/payments/:id/paid", s.markUnpaid)

		authorized.GET("/insights/summary", s.getSummary)

		authorized.GET("/reminders", s.listReminders)
		authorized.POST("/reminders/sync", s.syncReminders)
		authorized.GET("/ws", s.streamReminders)
	}

	return r
}

func mustSchema(name string) *gojsonschema.Schema {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// validBody reads the request body and checks it against schema. On failure
// the response has already been written.
func validBody(c *gin.Context, schema *gojsonschema.Schema) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return nil, false
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_json"})
		return nil, false
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": d})
		return nil, false
	}
	return body, true
}

func userID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}

// fail maps service errors to the API's error bodies.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		ve  *store.ValidationError
		ave *auth.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(422, gin.H{"error": "validation_failed", "field": ve.Field, "reason": ve.Reason})
	case errors.As(err, &ave):
		c.JSON(422, gin.H{"error": "validation_failed", "field": ave.Field, "reason": ave.Reason})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		c.JSON(404, gin.H{"error": "not_found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(409, gin.H{"error": "user_already_exists"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timeout"})
	default:
		s.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(500, gin.H{"error": "internal_error"})
	}
}
