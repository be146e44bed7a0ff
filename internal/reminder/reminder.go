// Package reminder turns pending installment payments into one-shot reminders
// and keeps them in sync with the payment set.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/status"
)

// Policy decides when a payment's reminder fires.
type Policy struct {
	LeadDays int
	Hour     int
	Minute   int
	Location *time.Location
	// CatchUp schedules an immediate reminder for pending payments whose
	// lead window already passed. Off means such payments get none.
	CatchUp bool
}

func DefaultPolicy() Policy {
	return Policy{LeadDays: 7, Hour: 9, Location: time.UTC}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// TriggerFor is due minus LeadDays at Hour:Minute in the policy's zone.
func (p Policy) TriggerFor(due models.Date) time.Time {
	day := due.AddDays(-p.LeadDays)
	return time.Date(day.Year(), day.Month(), day.Day(), p.Hour, p.Minute, 0, 0, p.location())
}

type Reminder struct {
	UserID    uint            `json:"user_id"`
	PaymentID uint            `json:"payment_id"`
	TriggerAt time.Time       `json:"trigger_at"`
	Store     string          `json:"store"`
	Amount    decimal.Decimal `json:"amount"`
	CardName  string          `json:"card_name"`
	CardLast4 string          `json:"card_last4"`
	DueDate   models.Date     `json:"due_date"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
}

func newReminder(p models.PaymentDetails, at time.Time) Reminder {
	return Reminder{
		UserID:    p.UserID,
		PaymentID: p.ID,
		TriggerAt: at,
		Store:     p.Store,
		Amount:    p.Amount,
		CardName:  p.CardName,
		CardLast4: p.CardLast4,
		DueDate:   p.DueDate,
		Title:     "Payment due soon",
		Body: fmt.Sprintf("%s: $%s on %s is due %s",
			p.Store, p.Amount.StringFixed(2), p.CardName, p.DueDate),
	}
}

// Plan returns at most one reminder per pending payment, ordered by trigger
// instant then payment id. A reminder is only planned when its trigger is
// strictly after now, unless CatchUp is set.
func Plan(payments []models.PaymentDetails, now time.Time, policy Policy) []Reminder {
	today := models.DateOf(now.In(policy.location()))
	seen := make(map[uint]bool, len(payments))
	out := []Reminder{}

	for _, p := range payments {
		if seen[p.ID] || !status.Matches(status.FilterPending, p, today) {
			continue
		}
		at := policy.TriggerFor(p.DueDate)
		if !at.After(now) {
			if !policy.CatchUp {
				continue
			}
			at = now
		}
		seen[p.ID] = true
		out = append(out, newReminder(p, at))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.Before(out[j].TriggerAt)
		}
		return out[i].PaymentID < out[j].PaymentID
	})
	return out
}
