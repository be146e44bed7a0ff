// Package schedule splits a purchase total into monthly installments.
package schedule

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
)

// Installment is one generated obligation before it is persisted.
type Installment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate models.Date
}

// Generate returns exactly n installments numbered 1..n. Every installment but
// the last is total/n rounded half-up to cents; the last absorbs the remainder
// so the amounts always sum to total.
//
// Inputs must already be validated: Generate panics on a non-positive total,
// n < 1, a zero start date or a total too small to give every installment a
// positive amount (see Split).
func Generate(total decimal.Decimal, n int, start models.Date) []Installment {
	if !total.IsPositive() {
		panic(fmt.Sprintf("schedule: total must be positive, got %s", total))
	}
	if n < 1 {
		panic(fmt.Sprintf("schedule: installments must be >= 1, got %d", n))
	}
	if start.IsZero() {
		panic("schedule: start date is required")
	}

	base, last := Split(total, n)
	if !base.IsPositive() || !last.IsPositive() {
		panic(fmt.Sprintf("schedule: %s cannot be split into %d positive installments", total, n))
	}

	out := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		amount := base
		if i == n {
			amount = last
		}
		out = append(out, Installment{
			Number:  i,
			Amount:  amount,
			DueDate: AddMonths(start, i-1),
		})
	}
	return out
}

// Split returns the regular installment amount and the last one for total
// over n installments. Rounding base up can leave last at zero or below, so
// callers must check both before persisting a schedule.
func Split(total decimal.Decimal, n int) (base, last decimal.Decimal) {
	base = total.DivRound(decimal.NewFromInt(int64(n)), 2)
	last = total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1)))).Round(2)
	return base, last
}

// AddMonths moves start forward by months calendar months, keeping the day of
// month and clamping it to the last day of a shorter target month. It always
// counts from start, so Jan 31 gives Feb 29 and then Mar 31.
func AddMonths(start models.Date, months int) models.Date {
	y, m := start.Year(), start.Month()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := start.Day()
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return models.NewDate(target.Year(), target.Month(), day)
}

func daysIn(year int, month time.Month) int {
	return now.With(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)).EndOfMonth().Day()
}
