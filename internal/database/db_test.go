package database

import (
	"testing"

	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
)

func TestOpenInMemory_MigratesSchema(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, table := range []any{
		&models.User{}, &models.Session{}, &models.Card{},
		&models.Purchase{}, &models.InstallmentPayment{}, &models.ScheduledReminder{},
	} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("missing table for %T", table)
		}
	}
}

func TestOpenInMemory_IsPrivate(t *testing.T) {
	first, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Create(&models.User{UUID: "u-1", Email: "a@example.com", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected databases to be isolated, found %d users", count)
	}
}

func TestInstallmentNumberIsUniquePerPurchase(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	user := models.User{UUID: "u-1", Email: "a@example.com", PasswordHash: "x"}
	db.Create(&user)
	card := models.Card{UserID: user.ID, Name: "Visa", BankName: "Bank", Last4: "1234", CutOffDay: 1, PaymentDay: 20, Color: models.ColorBlue, IsActive: true}
	db.Create(&card)
	purchase := models.Purchase{
		UserID: user.ID, CardID: card.ID, Store: "Shop", Description: "Item",
		TotalAmount: decimal.NewFromInt(100), Installments: 2,
		StartDate: models.NewDate(2024, 1, 1), IsActive: true,
	}
	if err := db.Create(&purchase).Error; err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	p := models.InstallmentPayment{
		UserID: user.ID, PurchaseID: purchase.ID, InstallmentNumber: 1,
		Amount: decimal.NewFromInt(50), DueDate: models.NewDate(2024, 1, 1),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	dup := p
	dup.ID = 0
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate installment number")
	}

	var stored models.InstallmentPayment
	if err := db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.DueDate.String() != "2024-01-01" || !stored.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("round trip mismatch: %+v", stored)
	}
}
