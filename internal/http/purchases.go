package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/store"
)

type purchaseRequest struct {
	CardID       uint            `json:"card_id"`
	Store        string          `json:"store"`
	Description  string          `json:"description"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Installments int             `json:"installments"`
	StartDate    models.Date     `json:"start_date"`
}

type purchaseResponse struct {
	*models.Purchase
	Schedule []models.InstallmentPayment `json:"schedule"`
}

// POST /v1/purchases
func (s *Server) createPurchase(c *gin.Context) {
	body, ok := validBody(c, s.purchaseSchema)
	if !ok {
		return
	}
	var req purchaseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)
	purchase, err := s.Store.CreatePurchase(ctx, store.NewPurchase{
		UserID:       uid,
		CardID:       req.CardID,
		Store:        req.Store,
		Description:  req.Description,
		TotalAmount:  req.TotalAmount,
		Installments: req.Installments,
		StartDate:    req.StartDate,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	schedule, err := s.Store.Installments(ctx, uid, purchase.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, purchaseResponse{Purchase: purchase, Schedule: schedule})
}

// GET /v1/purchases
func (s *Server) listPurchases(c *gin.Context) {
	purchases, err := s.Store.ListPurchases(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, purchases)
}

// GET /v1/purchases/:id
func (s *Server) getPurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	purchase, err := s.Store.GetPurchase(ctx, userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	schedule, err := s.Store.Installments(ctx, userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, purchaseResponse{Purchase: purchase, Schedule: schedule})
}

// DELETE /v1/purchases/:id?hard=true
func (s *Server) deletePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var (
		deleted bool
		err     error
	)
	if c.Query("hard") == "true" {
		deleted, err = s.Store.HardDeletePurchase(c.Request.Context(), userID(c), id)
	} else {
		deleted, err = s.Store.DeletePurchase(c.Request.Context(), userID(c), id)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if !deleted {
		c.JSON(404, gin.H{"error": "not_found"})
		return
	}
	c.Status(204)
}

// GET /v1/purchases/:id/installments
func (s *Server) listInstallments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	schedule, err := s.Store.Installments(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, schedule)
}
