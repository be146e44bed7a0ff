package insights

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zero-finance-go/internal/database"
	"zero-finance-go/internal/models"
	"zero-finance-go/internal/status"
	"zero-finance-go/internal/store"
)

func detail(id uint, cardID uint, due string, amount string, paid bool) models.PaymentDetails {
	return models.PaymentDetails{
		InstallmentPayment: models.InstallmentPayment{
			ID:      id,
			Amount:  decimal.RequireFromString(amount),
			DueDate: models.MustParseDate(due),
			IsPaid:  paid,
		},
		CardID: cardID,
	}
}

func ids(payments []models.PaymentDetails) []uint {
	out := make([]uint, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMonthlyTotal_IncludesPaidAndMonthBounds(t *testing.T) {
	today := models.MustParseDate("2024-02-15")
	payments := []models.PaymentDetails{
		detail(1, 1, "2024-01-31", "999", false),
		detail(2, 1, "2024-02-01", "50", true),
		detail(3, 1, "2024-02-29", "75", false),
		detail(4, 1, "2024-03-01", "999", false),
	}
	got := MonthlyTotal(payments, today)
	if !got.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("want 125, got %s", got)
	}
}

func TestUpcoming_WindowAndOrder(t *testing.T) {
	today := models.MustParseDate("2024-06-10")
	payments := []models.PaymentDetails{
		detail(5, 1, "2024-06-17", "10", false),
		detail(2, 1, "2024-06-12", "10", false),
		detail(1, 1, "2024-06-12", "10", false),
		detail(3, 1, "2024-06-09", "10", false),
		detail(4, 1, "2024-06-11", "10", true),
		detail(6, 1, "2024-06-18", "10", false),
		detail(7, 1, "2024-06-10", "10", false),
	}
	got := ids(Upcoming(payments, today, 7))
	want := []uint{7, 1, 2, 5}
	if !equalIDs(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
	if got := Upcoming(nil, today, 7); got == nil || len(got) != 0 {
		t.Fatalf("empty input must give an empty, non-nil slice")
	}
}

func TestSections_OrderAndOmission(t *testing.T) {
	today := models.MustParseDate("2024-06-10")
	payments := []models.PaymentDetails{
		detail(1, 1, "2024-06-20", "10", false),
		detail(2, 1, "2024-06-01", "10", false),
		detail(3, 1, "2024-06-10", "10", false),
		detail(4, 1, "2024-05-01", "10", true),
	}
	sections := Sections(payments, today)
	if len(sections) != 3 {
		t.Fatalf("want 3 sections, got %d", len(sections))
	}
	wantKeys := []status.Filter{status.FilterOverdue, status.FilterPending, status.FilterPaid}
	for i, s := range sections {
		if s.Key != wantKeys[i] {
			t.Fatalf("section %d: want %q got %q", i, wantKeys[i], s.Key)
		}
	}
	pending := sections[1].Payments
	if len(pending) != 2 || pending[0].ID != 3 || pending[1].ID != 1 {
		t.Fatalf("pending bucket: %+v", pending)
	}
	if pending[0].Label != "DUE TODAY" || !pending[0].Urgent {
		t.Fatalf("due-today item: %+v", pending[0])
	}
	if sections[0].Payments[0].Label != "9D OVERDUE" {
		t.Fatalf("overdue label: %q", sections[0].Payments[0].Label)
	}

	onlyPaid := Sections([]models.PaymentDetails{detail(9, 1, "2024-06-01", "10", true)}, today)
	if len(onlyPaid) != 1 || onlyPaid[0].Key != status.FilterPaid {
		t.Fatalf("empty sections must be omitted: %+v", onlyPaid)
	}
}

func TestCounts(t *testing.T) {
	today := models.MustParseDate("2024-06-10")
	payments := []models.PaymentDetails{
		detail(1, 1, "2024-06-09", "10", false),
		detail(2, 1, "2024-06-10", "10", false),
		detail(3, 1, "2024-07-10", "10", false),
		detail(4, 1, "2024-06-01", "10", true),
	}
	if n := PendingCount(payments, today); n != 2 {
		t.Fatalf("pending: %d", n)
	}
	if n := OverdueCount(payments, today); n != 1 {
		t.Fatalf("overdue: %d", n)
	}
	if got := ids(Filter(payments, status.FilterPaid, today)); !equalIDs(got, []uint{4}) {
		t.Fatalf("paid filter: %v", got)
	}
}

func TestUtilization(t *testing.T) {
	cards := []models.Card{
		{ID: 1, Name: "Oro", CreditLimit: decimal.NewFromInt(1000)},
		{ID: 2, Name: "Basic", CreditLimit: decimal.Zero},
	}
	payments := []models.PaymentDetails{
		detail(1, 1, "2024-06-01", "400", false),
		detail(2, 1, "2024-07-01", "250", false),
		detail(3, 1, "2024-05-01", "300", true),
		detail(4, 2, "2024-06-01", "80", false),
	}
	got := Utilization(cards, payments)
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if !got[0].Outstanding.Equal(decimal.NewFromInt(650)) || !got[0].Percentage.Equal(decimal.NewFromInt(65)) || !got[0].Warning {
		t.Fatalf("card 1: %+v", got[0])
	}
	if !got[1].Percentage.IsZero() || got[1].Warning {
		t.Fatalf("card without limit: %+v", got[1])
	}
}

type fixture struct {
	store *store.Store
	svc   *Service
	user  uint
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	u := models.User{UUID: uuid.NewString(), Email: "a@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	st := store.New(db)
	svc := NewService(st, time.UTC, 7).WithClock(func() time.Time { return now })
	return fixture{store: st, svc: svc, user: u.ID}
}

func (f fixture) card(t *testing.T) *models.Card {
	t.Helper()
	c, err := f.store.CreateCard(context.Background(), store.NewCard{
		UserID: f.user, Name: "Oro", BankName: "BBVA", Last4: "4321",
		CreditLimit: decimal.NewFromInt(5000), CutOffDay: 3, PaymentDay: 23,
	})
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	return c
}

func (f fixture) purchase(t *testing.T, cardID uint, total string, n int, start string) *models.Purchase {
	t.Helper()
	p, err := f.store.CreatePurchase(context.Background(), store.NewPurchase{
		UserID: f.user, CardID: cardID, Store: "Store", Description: "Item",
		TotalAmount: decimal.RequireFromString(total), Installments: n,
		StartDate: models.MustParseDate(start),
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	return p
}

func TestService_MonthlyTotalScenario(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()
	card := f.card(t)

	f.purchase(t, card.ID, "50", 1, "2024-05-03")
	paid := f.purchase(t, card.ID, "75", 1, "2024-05-28")
	insts, _ := f.store.Installments(ctx, f.user, paid.ID)
	if ok, err := f.store.MarkPaymentPaid(ctx, f.user, insts[0].ID); err != nil || !ok {
		t.Fatalf("mark paid: %v %v", ok, err)
	}

	total, err := f.svc.MonthlyTotal(ctx, f.user)
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("want 125, got %s", total)
	}
	plans, _ := f.svc.ActivePlanCount(ctx, f.user)
	if plans != 2 {
		t.Fatalf("active plans: %d", plans)
	}
}

func TestService_SoftDeletedCardDisappears(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	keep := f.card(t)
	drop := f.card(t)
	f.purchase(t, keep.ID, "100", 1, "2024-05-22")
	f.purchase(t, drop.ID, "300", 3, "2024-05-21")

	before, _ := f.svc.Upcoming(ctx, f.user, -1)
	if len(before) != 2 {
		t.Fatalf("want 2 upcoming before delete, got %d", len(before))
	}

	if ok, err := f.store.DeleteCard(ctx, f.user, drop.ID); err != nil || !ok {
		t.Fatalf("delete card: %v %v", ok, err)
	}

	cards, _ := f.store.ListCards(ctx, f.user)
	if len(cards) != 1 || cards[0].ID != keep.ID {
		t.Fatalf("deleted card still listed: %+v", cards)
	}
	total, _ := f.svc.MonthlyTotal(ctx, f.user)
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("monthly total must exclude deleted card, got %s", total)
	}
	after, _ := f.svc.Upcoming(ctx, f.user, -1)
	if len(after) != 1 || !after[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("upcoming must exclude deleted card: %+v", after)
	}

	sum, err := f.svc.Summary(ctx, f.user)
	if err != nil {
		t.Fatal(err)
	}
	if sum.CardCount != 1 || sum.ActivePlans != 1 || sum.PendingCount != 1 || len(sum.Utilization) != 1 {
		t.Fatalf("summary: %+v", sum)
	}
	if sum.Today.String() != "2024-05-20" {
		t.Fatalf("today: %s", sum.Today)
	}
}

func TestService_UpcomingZeroWindowIsToday(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	card := f.card(t)
	f.purchase(t, card.ID, "100", 1, "2024-05-20")
	f.purchase(t, card.ID, "200", 1, "2024-05-25")

	today, err := f.svc.Upcoming(ctx, f.user, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 1 || today[0].DueDate.String() != "2024-05-20" {
		t.Fatalf("window 0 must only hold today's payment: %+v", today)
	}

	week, _ := f.svc.Upcoming(ctx, f.user, -1)
	if len(week) != 2 {
		t.Fatalf("default window: want 2, got %d", len(week))
	}
}

func TestService_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	svc := NewService(nil, loc, 0).WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	})
	if got := svc.Today().String(); got != "2024-02-29" {
		t.Fatalf("want 2024-02-29, got %s", got)
	}
	if svc.WindowDays() != DefaultUpcomingDays {
		t.Fatalf("default window: %d", svc.WindowDays())
	}
}
