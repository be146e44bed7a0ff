// Package insights derives read-only views over a user's installment payments:
// monthly totals, upcoming windows, display sections and card utilization.
package insights

import (
	"sort"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/status"
)

const (
	DefaultUpcomingDays = 7
	// UtilizationWarningPct flags a card whose outstanding balance is above this share of its limit.
	UtilizationWarningPct = 60
)

// MonthlyTotal sums every payment, paid or not, due within today's calendar month.
func MonthlyTotal(payments []models.PaymentDetails, today models.Date) decimal.Decimal {
	month := now.With(today.Time())
	first := models.DateOf(month.BeginningOfMonth())
	last := models.DateOf(month.EndOfMonth())

	total := decimal.Zero
	for _, p := range payments {
		if p.DueDate.Before(first) || p.DueDate.After(last) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// Upcoming returns unpaid payments due between today and today+windowDays inclusive.
func Upcoming(payments []models.PaymentDetails, today models.Date, windowDays int) []models.PaymentDetails {
	end := today.AddDays(windowDays)
	out := []models.PaymentDetails{}
	for _, p := range payments {
		if p.IsPaid || p.DueDate.Before(today) || p.DueDate.After(end) {
			continue
		}
		out = append(out, p)
	}
	sortByDue(out)
	return out
}

func Filter(payments []models.PaymentDetails, f status.Filter, today models.Date) []models.PaymentDetails {
	out := []models.PaymentDetails{}
	for _, p := range payments {
		if status.Matches(f, p, today) {
			out = append(out, p)
		}
	}
	sortByDue(out)
	return out
}

func PendingCount(payments []models.PaymentDetails, today models.Date) int {
	return count(payments, status.FilterPending, today)
}

func OverdueCount(payments []models.PaymentDetails, today models.Date) int {
	return count(payments, status.FilterOverdue, today)
}

func count(payments []models.PaymentDetails, f status.Filter, today models.Date) int {
	n := 0
	for _, p := range payments {
		if status.Matches(f, p, today) {
			n++
		}
	}
	return n
}

// Item is a payment ready for display.
type Item struct {
	models.PaymentDetails
	Status status.Status `json:"status"`
	Label  string        `json:"label"`
	Urgent bool          `json:"urgent"`
}

func NewItem(p models.PaymentDetails, today models.Date) Item {
	st := status.Classify(p, today)
	return Item{
		PaymentDetails: p,
		Status:         st,
		Label:          st.Label(),
		Urgent:         status.IsUrgent(p, today),
	}
}

func Items(payments []models.PaymentDetails, today models.Date) []Item {
	items := make([]Item, 0, len(payments))
	for _, p := range payments {
		items = append(items, NewItem(p, today))
	}
	return items
}

type Section struct {
	Key      status.Filter `json:"key"`
	Title    string        `json:"title"`
	Payments []Item        `json:"payments"`
}

var sectionOrder = []struct {
	key   status.Filter
	title string
}{
	{status.FilterOverdue, "Overdue"},
	{status.FilterPending, "Pending"},
	{status.FilterPaid, "Paid"},
}

// Sections groups payments into Overdue, Pending and Paid, in that order.
// Empty sections are left out.
func Sections(payments []models.PaymentDetails, today models.Date) []Section {
	sections := []Section{}
	for _, s := range sectionOrder {
		bucket := Filter(payments, s.key, today)
		if len(bucket) == 0 {
			continue
		}
		sections = append(sections, Section{Key: s.key, Title: s.title, Payments: Items(bucket, today)})
	}
	return sections
}

type CardUtilization struct {
	CardID      uint             `json:"card_id"`
	CardName    string           `json:"card_name"`
	Last4       string           `json:"last4"`
	Color       models.CardColor `json:"color"`
	Outstanding decimal.Decimal  `json:"outstanding"`
	Limit       decimal.Decimal  `json:"limit"`
	Percentage  decimal.Decimal  `json:"percentage"`
	PaymentDay  int              `json:"payment_day"`
	Warning     bool             `json:"warning"`
}

// Utilization reports, per card, the unpaid balance of its active plans
// against the credit limit. Cards without a limit report 0%.
func Utilization(cards []models.Card, payments []models.PaymentDetails) []CardUtilization {
	outstanding := make(map[uint]decimal.Decimal, len(cards))
	for _, p := range payments {
		if p.IsPaid {
			continue
		}
		outstanding[p.CardID] = outstanding[p.CardID].Add(p.Amount)
	}

	hundred := decimal.NewFromInt(100)
	warnAt := decimal.NewFromInt(UtilizationWarningPct)
	out := make([]CardUtilization, 0, len(cards))
	for _, c := range cards {
		used := outstanding[c.ID]
		pct := decimal.Zero
		if c.CreditLimit.IsPositive() {
			pct = used.Mul(hundred).DivRound(c.CreditLimit, 2)
		}
		out = append(out, CardUtilization{
			CardID:      c.ID,
			CardName:    c.Name,
			Last4:       c.Last4,
			Color:       c.Color,
			Outstanding: used,
			Limit:       c.CreditLimit,
			Percentage:  pct,
			PaymentDay:  c.PaymentDay,
			Warning:     pct.GreaterThan(warnAt),
		})
	}
	return out
}

// sortByDue orders by due date, then payment id.
func sortByDue(payments []models.PaymentDetails) {
	sort.SliceStable(payments, func(i, j int) bool {
		if c := payments[i].DueDate.Compare(payments[j].DueDate); c != 0 {
			return c < 0
		}
		return payments[i].ID < payments[j].ID
	})
}
