package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one 0% installment plan on a card.
type Purchase struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"index;not null" json:"user_id"`
	User         *User           `json:"-" gorm:"foreignKey:UserID"`
	CardID       uint            `gorm:"index;not null" json:"card_id"`
	Card         *Card           `json:"-" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	Store        string          `gorm:"size:120;not null" json:"store"`
	Description  string          `gorm:"size:255;not null" json:"description"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Installments int             `gorm:"not null" json:"installments"`
	StartDate    Date            `gorm:"type:date;not null" json:"start_date"`
	IsActive     bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type InstallmentPayment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"index;not null" json:"user_id"`
	User              *User           `json:"-" gorm:"foreignKey:UserID"`
	PurchaseID        uint            `gorm:"not null;uniqueIndex:idx_purchase_installment" json:"purchase_id"`
	Purchase          *Purchase       `json:"-" gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	InstallmentNumber int             `gorm:"not null;uniqueIndex:idx_purchase_installment" json:"installment_number"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate           Date            `gorm:"type:date;not null;index" json:"due_date"`
	IsPaid            bool            `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt            *time.Time      `json:"paid_at"`
}

func (p InstallmentPayment) Due() Date { return p.DueDate }
func (p InstallmentPayment) Paid() bool { return p.IsPaid }

// PaymentDetails is a payment joined with its purchase and card.
type PaymentDetails struct {
	InstallmentPayment
	Store             string    `json:"store"`
	Description       string    `json:"description"`
	TotalInstallments int       `json:"total_installments"`
	CardID            uint      `json:"card_id"`
	CardName          string    `json:"card_name"`
	CardLast4         string    `json:"card_last4"`
	CardColor         CardColor `json:"card_color"`
}
