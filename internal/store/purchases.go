package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/schedule"
)

// CreatePurchase stores the purchase and its full installment schedule in one
// transaction. Either all rows are written or none.
func (s *Store) CreatePurchase(ctx context.Context, in NewPurchase) (*models.Purchase, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:       in.UserID,
		CardID:       in.CardID,
		Store:        in.Store,
		Description:  in.Description,
		TotalAmount:  in.TotalAmount,
		Installments: in.Installments,
		StartDate:    in.StartDate,
		IsActive:     true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getCard(tx, in.UserID, in.CardID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &ValidationError{Field: "card_id", Reason: "card not found"}
			}
			return err
		}
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		plan := schedule.Generate(in.TotalAmount, in.Installments, in.StartDate)
		payments := make([]models.InstallmentPayment, 0, len(plan))
		for _, inst := range plan {
			payments = append(payments, models.InstallmentPayment{
				UserID:            in.UserID,
				PurchaseID:        purchase.ID,
				InstallmentNumber: inst.Number,
				Amount:            inst.Amount,
				DueDate:           inst.DueDate,
			})
		}
		if err := tx.CreateInBatches(&payments, 100).Error; err != nil {
			return fmt.Errorf("insert installments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(in.UserID)
	return purchase, nil
}

func (s *Store) GetPurchase(ctx context.Context, userID, id uint) (*models.Purchase, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	var p models.Purchase
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListPurchases(ctx context.Context, userID uint) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	if userID == 0 {
		return purchases, nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

// PurchasesByCard lists the active purchases of an active card.
func (s *Store) PurchasesByCard(ctx context.Context, userID, cardID uint) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	if userID == 0 {
		return purchases, nil
	}
	err := s.db.WithContext(ctx).
		Joins("JOIN cards ON cards.id = purchases.card_id").
		Where("purchases.user_id = ? AND purchases.card_id = ? AND purchases.is_active = ? AND cards.is_active = ?",
			userID, cardID, true, true).
		Order("purchases.created_at DESC, purchases.id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("purchases by card: %w", err)
	}
	return purchases, nil
}

// Installments returns the schedule of an active purchase ordered by number.
func (s *Store) Installments(ctx context.Context, userID, purchaseID uint) ([]models.InstallmentPayment, error) {
	payments := []models.InstallmentPayment{}
	if userID == 0 {
		return payments, nil
	}
	if _, err := s.GetPurchase(ctx, userID, purchaseID); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).
		Where("purchase_id = ? AND user_id = ?", purchaseID, userID).
		Order("installment_number ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return payments, nil
}

// DeletePurchase hides the purchase; its payments stay in the table but drop
// out of every payment query.
func (s *Store) DeletePurchase(ctx context.Context, userID, id uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, fmt.Errorf("delete purchase: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.notify(userID)
	return true, nil
}

// HardDeletePurchase removes the purchase row and all of its payments.
// Soft-deleted purchases can be purged as well.
func (s *Store) HardDeletePurchase(ctx context.Context, userID, id uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ? AND user_id = ?", id, userID).
			Delete(&models.InstallmentPayment{}).Error; err != nil {
			return fmt.Errorf("delete installments: %w", err)
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Purchase{})
		if res.Error != nil {
			return fmt.Errorf("delete purchase: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.notify(userID)
	}
	return deleted, nil
}

func (s *Store) ActivePurchaseCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Joins("JOIN cards ON cards.id = purchases.card_id").
		Where("purchases.user_id = ? AND purchases.is_active = ? AND cards.is_active = ?", userID, true, true).
		Count(&n).Error
	return n, err
}
