package models

import (
	"time"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UUID               string    `gorm:"uniqueIndex;size:36" json:"uuid"`          // Public ID, never the row id
	Email              string    `gorm:"uniqueIndex;size:255;not null" json:"email"` // Lowercased and trimmed
	PasswordHash       string    `gorm:"not null" json:"-"`                          // Bcrypt hash
	FullName           string    `json:"full_name"`
	RecoveryQuestion   string    `json:"-"`
	RecoveryAnswerHash string    `json:"-"` // Bcrypt hash of the normalized answer
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
