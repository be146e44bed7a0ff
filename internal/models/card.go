package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CardColor string

const (
	ColorGreen  CardColor = "green"
	ColorPurple CardColor = "purple"
	ColorBlue   CardColor = "blue"
	ColorRed    CardColor = "red"
	ColorOrange CardColor = "orange"
	ColorPink   CardColor = "pink"
	ColorCyan   CardColor = "cyan"
	ColorGold   CardColor = "gold"
)

var CardColors = []CardColor{
	ColorGreen, ColorPurple, ColorBlue, ColorRed,
	ColorOrange, ColorPink, ColorCyan, ColorGold,
}

func (c CardColor) Valid() bool {
	for _, known := range CardColors {
		if c == known {
			return true
		}
	}
	return false
}

type Card struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	User        *User           `json:"-" gorm:"foreignKey:UserID"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	BankName    string          `gorm:"size:100;not null" json:"bank_name"`
	Last4       string          `gorm:"size:4;not null" json:"last4"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"credit_limit"`
	CutOffDay   int             `gorm:"not null" json:"cut_off_day"` // Billing cycle close, informational only
	PaymentDay  int             `gorm:"not null" json:"payment_day"`
	Color       CardColor       `gorm:"size:16;not null" json:"color"`
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
