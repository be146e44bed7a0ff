// Package auth stores user credentials and login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zero-finance-go/internal/models"
)

const MinPasswordLength = 6

var validate = validator.New()

type RegisterInput struct {
	Email            string `validate:"required,email,max=255"`
	Password         string `validate:"min=6,max=72"`
	FullName         string `validate:"required,max=120"`
	RecoveryQuestion string `validate:"required,max=255"`
	RecoveryAnswer   string `validate:"required"`
}

// Credentials checks and rotates bcrypt password hashes.
type Credentials struct {
	db   *gorm.DB
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewCredentials(db *gorm.DB) *Credentials {
	return &Credentials{db: db, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost, mainly so tests can use bcrypt.MinCost.
func (c *Credentials) WithCost(cost int) *Credentials {
	c.cost = cost
	return c
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func (c *Credentials) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.RecoveryQuestion = strings.TrimSpace(in.RecoveryQuestion)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RecoveryAnswer) == "" {
		return nil, &ValidationError{Field: "recovery_answer", Reason: "is required"}
	}

	db := c.db.WithContext(ctx)
	if taken, err := c.emailExists(db, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), c.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(in.RecoveryAnswer)), c.cost)
	if err != nil {
		return nil, fmt.Errorf("hash recovery answer: %w", err)
	}

	user := &models.User{
		UUID:               uuid.NewString(),
		Email:              in.Email,
		PasswordHash:       string(passwordHash),
		FullName:           in.FullName,
		RecoveryQuestion:   in.RecoveryQuestion,
		RecoveryAnswerHash: string(answerHash),
	}
	if err := db.Create(user).Error; err != nil {
		// lost a race against a concurrent registration
		if taken, _ := c.emailExists(db, in.Email); taken {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Validate returns the user when email and password match. Any mismatch is
// ErrInvalidCredentials, whichever field was wrong.
func (c *Credentials) Validate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := c.byEmail(c.db.WithContext(ctx), email)
	if errors.Is(err, ErrInvalidCredentials) {
		// unknown emails cost the same bcrypt compare as a wrong password
		_ = bcrypt.CompareHashAndPassword(c.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (c *Credentials) RecoveryQuestion(ctx context.Context, email string) (string, error) {
	user, err := c.byEmail(c.db.WithContext(ctx), email)
	if err != nil {
		return "", err
	}
	if user.RecoveryQuestion == "" {
		return "", ErrInvalidCredentials
	}
	return user.RecoveryQuestion, nil
}

// ResetPassword sets a new password when the recovery answer matches. The
// answer is compared case-insensitively. It reports false on any mismatch.
func (c *Credentials) ResetPassword(ctx context.Context, email, answer, newPassword string) (bool, error) {
	if err := checkPassword(newPassword); err != nil {
		return false, err
	}
	db := c.db.WithContext(ctx)
	user, err := c.byEmail(db, email)
	if errors.Is(err, ErrInvalidCredentials) {
		_ = bcrypt.CompareHashAndPassword(c.dummy(), []byte(normalizeAnswer(answer)))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.RecoveryAnswerHash), []byte(normalizeAnswer(answer))) != nil {
		return false, nil
	}
	return true, c.setPassword(db, user.ID, newPassword)
}

// ChangePassword rotates the password of a signed-in user after checking the current one.
func (c *Credentials) ChangePassword(ctx context.Context, userID uint, current, next string) (bool, error) {
	if err := checkPassword(next); err != nil {
		return false, err
	}
	db := c.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return false, nil
	}
	return true, c.setPassword(db, user.ID, next)
}

func (c *Credentials) User(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// dummy is a hash at the configured cost that no password matches.
func (c *Credentials) dummy() []byte {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), c.cost)
	})
	return c.dummyHash
}

func (c *Credentials) setPassword(db *gorm.DB, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error
}

func (c *Credentials) byEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Credentials) emailExists(db *gorm.DB, email string) (bool, error) {
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

var fieldNames = map[string]string{
	"Email":            "email",
	"Password":         "password",
	"FullName":         "full_name",
	"RecoveryQuestion": "recovery_question",
	"RecoveryAnswer":   "recovery_answer",
}

func checkInput(in RegisterInput) error {
	err := validate.Struct(in)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fieldNames[fe.StructField()], Reason: reason(fe)}
	}
	return err
}

func checkPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	if len(pw) > 72 {
		return &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
