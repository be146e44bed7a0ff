package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
	"zero-finance-go/internal/status"
)

// Source is the slice of the entity store the query layer reads from.
type Source interface {
	Payments(ctx context.Context, userID uint) ([]models.PaymentDetails, error)
	ListCards(ctx context.Context, userID uint) ([]models.Card, error)
	ActivePurchaseCount(ctx context.Context, userID uint) (int64, error)
}

type Service struct {
	src        Source
	loc        *time.Location
	now        func() time.Time
	windowDays int
}

func NewService(src Source, loc *time.Location, windowDays int) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays <= 0 {
		windowDays = DefaultUpcomingDays
	}
	return &Service{src: src, loc: loc, now: time.Now, windowDays: windowDays}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the current calendar day in the service's time zone.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

func (s *Service) WindowDays() int { return s.windowDays }

func (s *Service) MonthlyTotal(ctx context.Context, userID uint) (decimal.Decimal, error) {
	payments, err := s.src.Payments(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return MonthlyTotal(payments, s.Today()), nil
}

func (s *Service) ActivePlanCount(ctx context.Context, userID uint) (int64, error) {
	return s.src.ActivePurchaseCount(ctx, userID)
}

// Upcoming uses the configured window when windowDays is negative. A window
// of 0 covers payments due today only.
func (s *Service) Upcoming(ctx context.Context, userID uint, windowDays int) ([]Item, error) {
	if windowDays < 0 {
		windowDays = s.windowDays
	}
	payments, err := s.src.Payments(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	return Items(Upcoming(payments, today, windowDays), today), nil
}

func (s *Service) Payments(ctx context.Context, userID uint, f status.Filter) ([]Item, error) {
	payments, err := s.src.Payments(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	return Items(Filter(payments, f, today), today), nil
}

func (s *Service) Sections(ctx context.Context, userID uint) ([]Section, error) {
	payments, err := s.src.Payments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Sections(payments, s.Today()), nil
}

type Summary struct {
	Today        models.Date       `json:"today"`
	MonthlyTotal decimal.Decimal   `json:"monthly_total"`
	ActivePlans  int64             `json:"active_plans"`
	CardCount    int               `json:"card_count"`
	PendingCount int               `json:"pending_count"`
	OverdueCount int               `json:"overdue_count"`
	Upcoming     []Item            `json:"upcoming"`
	Utilization  []CardUtilization `json:"utilization"`
}

// Summary is the dashboard aggregate.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	payments, err := s.src.Payments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	cards, err := s.src.ListCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	plans, err := s.src.ActivePurchaseCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count purchases: %w", err)
	}

	today := s.Today()
	return &Summary{
		Today:        today,
		MonthlyTotal: MonthlyTotal(payments, today),
		ActivePlans:  plans,
		CardCount:    len(cards),
		PendingCount: PendingCount(payments, today),
		OverdueCount: OverdueCount(payments, today),
		Upcoming:     Items(Upcoming(payments, today, s.windowDays), today),
		Utilization:  Utilization(cards, payments),
	}, nil
}
