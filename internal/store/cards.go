package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"zero-finance-go/internal/models"
)

func (s *Store) CreateCard(ctx context.Context, in NewCard) (*models.Card, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	card := &models.Card{
		UserID:      in.UserID,
		Name:        in.Name,
		BankName:    in.BankName,
		Last4:       in.Last4,
		CreditLimit: in.CreditLimit.Round(2),
		CutOffDay:   in.CutOffDay,
		PaymentDay:  in.PaymentDay,
		Color:       in.Color,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

func (s *Store) GetCard(ctx context.Context, userID, id uint) (*models.Card, error) {
	return getCard(s.db.WithContext(ctx), userID, id)
}

func getCard(db *gorm.DB, userID, id uint) (*models.Card, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	var card models.Card
	err := db.Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&card).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &card, nil
}

func (s *Store) ListCards(ctx context.Context, userID uint) ([]models.Card, error) {
	cards := []models.Card{}
	if userID == 0 {
		return cards, nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (s *Store) UpdateCard(ctx context.Context, userID, id uint, patch CardPatch) (*models.Card, error) {
	db := s.db.WithContext(ctx)
	card, err := getCard(db, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return card, nil
	}
	if err := patch.normalize(); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.BankName != nil {
		updates["bank_name"] = *patch.BankName
	}
	if patch.Last4 != nil {
		updates["last4"] = *patch.Last4
	}
	if patch.CreditLimit != nil {
		updates["credit_limit"] = patch.CreditLimit.Round(2)
	}
	if patch.CutOffDay != nil {
		updates["cut_off_day"] = *patch.CutOffDay
	}
	if patch.PaymentDay != nil {
		updates["payment_day"] = *patch.PaymentDay
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}

	if err := db.Model(card).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return getCard(db, userID, id)
}

// DeleteCard hides the card together with its purchases and their payments.
func (s *Store) DeleteCard(ctx context.Context, userID, id uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Card{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, fmt.Errorf("delete card: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.notify(userID)
	return true, nil
}

func (s *Store) CardCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Card{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&n).Error
	return n, err
}
