package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScheduledReminder is an outbox row waiting for its trigger instant.
type ScheduledReminder struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Handle      string         `gorm:"uniqueIndex;size:36;not null" json:"handle"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	PaymentID   uint           `gorm:"index;not null" json:"payment_id"`
	TriggerAt   time.Time      `gorm:"index;not null" json:"trigger_at"` // UTC, second precision
	Payload     datatypes.JSON `json:"payload"`
	DeliveredAt *time.Time     `gorm:"index" json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
