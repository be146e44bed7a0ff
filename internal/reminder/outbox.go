package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"zero-finance-go/internal/models"
)

// Outbox is a Notifier that keeps scheduled reminders in the database until
// the Dispatcher delivers them.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

// CancelAll drops the user's undelivered reminders. Delivered rows are kept as history.
func (o *Outbox) CancelAll(ctx context.Context, userID uint) error {
	return o.db.WithContext(ctx).
		Where("user_id = ? AND delivered_at IS NULL", userID).
		Delete(&models.ScheduledReminder{}).Error
}

func (o *Outbox) ScheduleAt(ctx context.Context, at time.Time, r Reminder) (string, error) {
	at = at.UTC().Truncate(time.Second)
	r.TriggerAt = at
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode reminder: %w", err)
	}
	row := models.ScheduledReminder{
		Handle:    uuid.NewString(),
		UserID:    r.UserID,
		PaymentID: r.PaymentID,
		TriggerAt: at,
		Payload:   datatypes.JSON(payload),
	}
	if err := o.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("store reminder: %w", err)
	}
	return row.Handle, nil
}

// List returns the user's undelivered reminders, soonest first.
func (o *Outbox) List(ctx context.Context, userID uint) ([]models.ScheduledReminder, error) {
	rows := []models.ScheduledReminder{}
	if userID == 0 {
		return rows, nil
	}
	err := o.db.WithContext(ctx).
		Where("user_id = ? AND delivered_at IS NULL", userID).
		Order("trigger_at ASC, payment_id ASC").
		Find(&rows).Error
	return rows, err
}

// Due returns undelivered reminders whose trigger is at or before now.
func (o *Outbox) Due(ctx context.Context, now time.Time, limit int) ([]models.ScheduledReminder, error) {
	var rows []models.ScheduledReminder
	err := o.db.WithContext(ctx).
		Where("delivered_at IS NULL AND trigger_at <= ?", now.UTC().Truncate(time.Second)).
		Order("trigger_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (o *Outbox) MarkDelivered(ctx context.Context, id uint, at time.Time) error {
	at = at.UTC()
	return o.db.WithContext(ctx).Model(&models.ScheduledReminder{}).
		Where("id = ?", id).
		Update("delivered_at", &at).Error
}

// Decode unpacks the reminder stored in a row's payload.
func Decode(row models.ScheduledReminder) (Reminder, error) {
	var r Reminder
	if err := json.Unmarshal(row.Payload, &r); err != nil {
		return Reminder{}, fmt.Errorf("decode reminder %s: %w", row.Handle, err)
	}
	return r, nil
}
