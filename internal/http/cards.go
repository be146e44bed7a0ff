package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/store"
)

type cardRequest struct {
	Name        string           `json:"name"`
	BankName    string           `json:"bank_name"`
	Last4       string           `json:"last4"`
	CreditLimit decimal.Decimal  `json:"credit_limit"`
	CutOffDay   int              `json:"cut_off_day"`
	PaymentDay  int              `json:"payment_day"`
	Color       models.CardColor `json:"color"`
}

type cardPatchRequest struct {
	Name        *string           `json:"name"`
	BankName    *string           `json:"bank_name"`
	Last4       *string           `json:"last4"`
	CreditLimit *decimal.Decimal  `json:"credit_limit"`
	CutOffDay   *int              `json:"cut_off_day"`
	PaymentDay  *int              `json:"payment_day"`
	Color       *models.CardColor `json:"color"`
}

// POST /v1/cards
func (s *Server) createCard(c *gin.Context) {
	body, ok := validBody(c, s.cardSchema)
	if !ok {
		return
	}
	var req cardRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	card, err := s.Store.CreateCard(c.Request.Context(), store.NewCard{
		UserID:      userID(c),
		Name:        req.Name,
		BankName:    req.BankName,
		Last4:       req.Last4,
		CreditLimit: req.CreditLimit,
		CutOffDay:   req.CutOffDay,
		PaymentDay:  req.PaymentDay,
		Color:       req.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, card)
}

// GET /v1/cards
func (s *Server) listCards(c *gin.Context) {
	cards, err := s.Store.ListCards(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, cards)
}

// GET /v1/cards/:id
func (s *Server) getCard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	card, err := s.Store.GetCard(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, card)
}

// PATCH /v1/cards/:id
func (s *Server) updateCard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	body, ok := validBody(c, s.cardPatchSchema)
	if !ok {
		return
	}
	var req cardPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	card, err := s.Store.UpdateCard(c.Request.Context(), userID(c), id, store.CardPatch{
		Name:        req.Name,
		BankName:    req.BankName,
		Last4:       req.Last4,
		CreditLimit: req.CreditLimit,
		CutOffDay:   req.CutOffDay,
		PaymentDay:  req.PaymentDay,
		Color:       req.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, card)
}

// DELETE /v1/cards/:id
func (s *Server) deleteCard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	deleted, err := s.Store.DeleteCard(c.Request.Context(), userID(c), id)
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

// GET /v1/cards/:id/purchases
func (s *Server) listCardPurchases(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.Store.GetCard(ctx, userID(c), id); err != nil {
		s.fail(c, err)
		return
	}
	purchases, err := s.Store.PurchasesByCard(ctx, userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, purchases)
}
