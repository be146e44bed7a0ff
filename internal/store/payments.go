package store

import (
	"context"
	"fmt"

	"zero-finance-go/internal/models"
)

// Payments returns every payment of the user whose purchase and card are both
// active, joined with purchase and card details, ordered by due date then id.
func (s *Store) Payments(ctx context.Context, userID uint) ([]models.PaymentDetails, error) {
	rows := []models.PaymentDetails{}
	if userID == 0 {
		return rows, nil
	}
	err := s.db.WithContext(ctx).
		Table("installment_payments AS ip").
		Select(`ip.*,
			p.store AS store,
			p.description AS description,
			p.installments AS total_installments,
			p.card_id AS card_id,
			c.name AS card_name,
			c.last4 AS card_last4,
			c.color AS card_color`).
		Joins("JOIN purchases p ON p.id = ip.purchase_id").
		Joins("JOIN cards c ON c.id = p.card_id").
		Where("ip.user_id = ? AND p.is_active = ? AND c.is_active = ?", userID, true, true).
		Order("ip.due_date ASC, ip.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return rows, nil
}

func (s *Store) MarkPaymentPaid(ctx context.Context, userID, id uint) (bool, error) {
	now := s.now().UTC()
	return s.setPaid(ctx, userID, id, map[string]any{"is_paid": true, "paid_at": &now})
}

func (s *Store) MarkPaymentUnpaid(ctx context.Context, userID, id uint) (bool, error) {
	return s.setPaid(ctx, userID, id, map[string]any{"is_paid": false, "paid_at": nil})
}

func (s *Store) setPaid(ctx context.Context, userID, id uint, updates map[string]any) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	// payments of hidden purchases or cards cannot be toggled
	visible := s.db.Table("purchases p").
		Select("p.id").
		Joins("JOIN cards c ON c.id = p.card_id").
		Where("p.user_id = ? AND p.is_active = ? AND c.is_active = ?", userID, true, true)

	res := s.db.WithContext(ctx).Model(&models.InstallmentPayment{}).
		Where("id = ? AND user_id = ? AND purchase_id IN (?)", id, userID, visible).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.notify(userID)
	return true, nil
}
