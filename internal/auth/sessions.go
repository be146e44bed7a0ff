package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"zero-finance-go/internal/models"
)

var ErrInvalidSession = errors.New("invalid or expired session")

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions issues HS256 tokens that name a Session row. Deleting the row
// revokes the token before it expires.
type Sessions struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(db *gorm.DB, secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Sessions{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

func (s *Sessions) Save(ctx context.Context, userID uint) (string, error) {
	now := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl).UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Get resolves a token to its user id.
func (s *Sessions) Get(ctx context.Context, token string) (uint, error) {
	sid, err := s.parse(token)
	if err != nil {
		return 0, err
	}
	var session models.Session
	err = s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sid, s.now().UTC()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}

// Delete revokes the session behind the token. Unknown sessions are not an error.
func (s *Sessions) Delete(ctx context.Context, token string) error {
	sid, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("id = ?", sid).Delete(&models.Session{}).Error
}

// Purge removes expired sessions.
func (s *Sessions) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (s *Sessions) parse(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || c.SessionID == "" {
		return "", ErrInvalidSession
	}
	return c.SessionID, nil
}
