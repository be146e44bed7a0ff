package http

import (
	"github.com/gin-gonic/gin"

	"zero-finance-go/internal/auth"
	"zero-finance-go/internal/models"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// POST /v1/auth/register
func (s *Server) authRegister(c *gin.Context) {
	var input struct {
		Email            string `json:"email" binding:"required"`
		Password         string `json:"password" binding:"required"`
		FullName         string `json:"full_name" binding:"required"`
		RecoveryQuestion string `json:"recovery_question" binding:"required"`
		RecoveryAnswer   string `json:"recovery_answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.Credentials.Register(c.Request.Context(), auth.RegisterInput{
		Email:            input.Email,
		Password:         input.Password,
		FullName:         input.FullName,
		RecoveryQuestion: input.RecoveryQuestion,
		RecoveryAnswer:   input.RecoveryAnswer,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.Sessions.Save(c.Request.Context(), user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, AuthResponse{Token: token, User: user})
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.Credentials.Validate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	token, err := s.Sessions.Save(c.Request.Context(), user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, AuthResponse{Token: token, User: user})
}

// POST /v1/auth/recovery/question
func (s *Server) authRecoveryQuestion(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	q, err := s.Credentials.RecoveryQuestion(c.Request.Context(), input.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"question": q})
}

// POST /v1/auth/recovery/reset
func (s *Server) authRecoveryReset(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required"`
		Answer      string `json:"answer" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	ok, err := s.Credentials.ResetPassword(c.Request.Context(), input.Email, input.Answer, input.NewPassword)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}
	c.JSON(200, gin.H{"ok": true})
}

// POST /v1/auth/logout
func (s *Server) authLogout(c *gin.Context) {
	if err := s.Sessions.Delete(c.Request.Context(), c.GetString("token")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(204)
}

// GET /v1/me
func (s *Server) getMe(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := s.Credentials.User(ctx, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	cards, err := s.Store.CardCount(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	plans, err := s.Store.ActivePurchaseCount(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"user": user, "card_count": cards, "active_plans": plans})
}

// PUT /v1/me/password
func (s *Server) changePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	ok, err := s.Credentials.ChangePassword(c.Request.Context(), userID(c), input.CurrentPassword, input.NewPassword)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}
	c.JSON(200, gin.H{"ok": true})
}
