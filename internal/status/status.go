// Package status derives the state of an installment payment relative to a day.
package status

import (
	"fmt"
	"strings"

	"zero-finance-go/internal/models"
)

// UrgentWithinDays is the inclusive horizon for urgent pending payments.
const UrgentWithinDays = 3

type Kind string

const (
	KindPaid        Kind = "paid"
	KindOverdue     Kind = "overdue"
	KindDueToday    Kind = "due_today"
	KindDueTomorrow Kind = "due_tomorrow"
	KindDaysLeft    Kind = "days_left"
)

// Status is the classification of one payment. Days is the number of days
// late for KindOverdue and the days remaining for KindDaysLeft.
type Status struct {
	Kind Kind `json:"kind"`
	Days int  `json:"days,omitempty"`
}

func (s Status) Label() string {
	switch s.Kind {
	case KindPaid:
		return "PAID"
	case KindOverdue:
		return fmt.Sprintf("%dD OVERDUE", s.Days)
	case KindDueToday:
		return "DUE TODAY"
	case KindDueTomorrow:
		return "DUE TOMORROW"
	default:
		return fmt.Sprintf("%d DAYS LEFT", s.Days)
	}
}

// Payment is the minimal view the classifier needs. models.InstallmentPayment
// and models.PaymentDetails satisfy it.
type Payment interface {
	Due() models.Date
	Paid() bool
}

func Classify(p Payment, today models.Date) Status {
	if p.Paid() {
		return Status{Kind: KindPaid}
	}
	days := today.DaysUntil(p.Due())
	switch {
	case days < 0:
		return Status{Kind: KindOverdue, Days: -days}
	case days == 0:
		return Status{Kind: KindDueToday}
	case days == 1:
		return Status{Kind: KindDueTomorrow}
	default:
		return Status{Kind: KindDaysLeft, Days: days}
	}
}

// IsUrgent reports an unpaid payment due within UrgentWithinDays, overdue ones included.
func IsUrgent(p Payment, today models.Date) bool {
	return !p.Paid() && today.DaysUntil(p.Due()) <= UrgentWithinDays
}

type Filter string

const (
	FilterAll     Filter = ""
	FilterPending Filter = "pending"
	FilterPaid    Filter = "paid"
	FilterOverdue Filter = "overdue"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterPending, FilterPaid, FilterOverdue:
		return f, nil
	case "all":
		return FilterAll, nil
	default:
		return FilterAll, fmt.Errorf("unknown payment filter %q", s)
	}
}

// Matches is the only place payment filters compare dates. Pending and
// overdue split the unpaid payments: a payment due today is pending.
func Matches(f Filter, p Payment, today models.Date) bool {
	switch f {
	case FilterPending:
		return !p.Paid() && !p.Due().Before(today)
	case FilterPaid:
		return p.Paid()
	case FilterOverdue:
		return !p.Paid() && p.Due().Before(today)
	default:
		return true
	}
}
