package store

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/schedule"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type NewCard struct {
	UserID      uint             `validate:"required"`
	Name        string           `validate:"required,max=100"`
	BankName    string           `validate:"required,max=100"`
	Last4       string           `validate:"len=4,numeric"`
	CreditLimit decimal.Decimal  `validate:"-"`
	CutOffDay   int              `validate:"min=1,max=31"`
	PaymentDay  int              `validate:"min=1,max=31"`
	Color       models.CardColor `validate:"-"`
}

// CardPatch holds the fields to change; nil means unchanged.
type CardPatch struct {
	Name        *string           `validate:"omitempty,min=1,max=100"`
	BankName    *string           `validate:"omitempty,min=1,max=100"`
	Last4       *string           `validate:"omitempty,len=4,numeric"`
	CreditLimit *decimal.Decimal  `validate:"-"`
	CutOffDay   *int              `validate:"omitempty,min=1,max=31"`
	PaymentDay  *int              `validate:"omitempty,min=1,max=31"`
	Color       *models.CardColor `validate:"-"`
}

func (p CardPatch) empty() bool {
	return p.Name == nil && p.BankName == nil && p.Last4 == nil && p.CreditLimit == nil &&
		p.CutOffDay == nil && p.PaymentDay == nil && p.Color == nil
}

type NewPurchase struct {
	UserID       uint            `validate:"required"`
	CardID       uint            `validate:"required"`
	Store        string          `validate:"required,max=120"`
	Description  string          `validate:"required,max=255"`
	TotalAmount  decimal.Decimal `validate:"-"`
	Installments int             `validate:"min=1"`
	StartDate    models.Date     `validate:"-"`
}

var fieldNames = map[string]string{
	"UserID":       "user_id",
	"CardID":       "card_id",
	"Name":         "name",
	"BankName":     "bank_name",
	"Last4":        "last4",
	"CutOffDay":    "cut_off_day",
	"PaymentDay":   "payment_day",
	"Store":        "store",
	"Description":  "description",
	"Installments": "installments",
}

func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		name := fieldNames[fe.StructField()]
		if name == "" {
			name = strings.ToLower(fe.StructField())
		}
		return &ValidationError{Field: name, Reason: reason(fe)}
	}
	return err
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain digits only"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func (in *NewCard) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.BankName = strings.TrimSpace(in.BankName)
	in.Last4 = strings.TrimSpace(in.Last4)
	if in.Color == "" {
		in.Color = models.ColorBlue
	}
	if err := checkStruct(in); err != nil {
		return err
	}
	if err := checkLastFour(in.Last4); err != nil {
		return err
	}
	if err := checkCreditLimit(in.CreditLimit); err != nil {
		return err
	}
	return checkColor(in.Color)
}

func (p *CardPatch) normalize() error {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(p.Name)
	trim(p.BankName)
	trim(p.Last4)
	if err := checkStruct(p); err != nil {
		return err
	}
	if p.Last4 != nil {
		if err := checkLastFour(*p.Last4); err != nil {
			return err
		}
	}
	if p.CreditLimit != nil {
		if err := checkCreditLimit(*p.CreditLimit); err != nil {
			return err
		}
	}
	if p.Color != nil {
		return checkColor(*p.Color)
	}
	return nil
}

func (in *NewPurchase) normalize() error {
	in.Store = strings.TrimSpace(in.Store)
	in.Description = strings.TrimSpace(in.Description)
	if err := checkStruct(in); err != nil {
		return err
	}
	if !in.TotalAmount.IsPositive() {
		return &ValidationError{Field: "total_amount", Reason: "must be positive"}
	}
	if !in.TotalAmount.Equal(in.TotalAmount.Round(2)) {
		return &ValidationError{Field: "total_amount", Reason: "must have at most 2 decimal places"}
	}
	if base, last := schedule.Split(in.TotalAmount, in.Installments); !base.IsPositive() || !last.IsPositive() {
		return &ValidationError{Field: "total_amount", Reason: "is too small for the number of installments"}
	}
	if in.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "is required"}
	}
	return nil
}

// numeric also accepts signs and decimal points, so last4 is checked by hand.
func checkLastFour(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "last4", Reason: "must contain digits only"}
		}
	}
	return nil
}

func checkCreditLimit(d decimal.Decimal) error {
	if d.IsNegative() {
		return &ValidationError{Field: "credit_limit", Reason: "must not be negative"}
	}
	return nil
}

func checkColor(c models.CardColor) error {
	if !c.Valid() {
		return &ValidationError{Field: "color", Reason: "is not a known card color"}
	}
	return nil
}
