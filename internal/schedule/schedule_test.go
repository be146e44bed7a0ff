package schedule

import (
	"testing"

	"github.com/shopspring/decimal"

	"zero-finance-go/internal/models"
)

func TestGenerate_SumMatchesTotal(t *testing.T) {
	totals := []string{"100.00", "1000", "1200", "99.99", "0.50", "12345.67", "7.01"}
	counts := []int{1, 2, 3, 7, 12, 24}
	start := models.NewDate(2024, 1, 15)

	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for _, n := range counts {
			if total.LessThan(decimal.New(int64(n), -2)) {
				continue
			}
			got := Generate(total, n, start)
			sum := decimal.Zero
			for _, inst := range got {
				if !inst.Amount.IsPositive() {
					t.Errorf("total %s / %d: installment %d has amount %s", raw, n, inst.Number, inst.Amount)
				}
				sum = sum.Add(inst.Amount)
			}
			if !sum.Equal(total) {
				t.Errorf("total %s / %d: sum %s != total", raw, n, sum)
			}
		}
	}
}

func TestGenerate_NumbersAreContiguous(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 12, 24} {
		got := Generate(decimal.NewFromInt(500), n, models.NewDate(2024, 3, 1))
		if len(got) != n {
			t.Fatalf("n=%d: expected %d installments, got %d", n, n, len(got))
		}
		seen := map[int]bool{}
		for i, inst := range got {
			if inst.Number != i+1 {
				t.Fatalf("n=%d: installment at %d numbered %d", n, i, inst.Number)
			}
			if seen[inst.Number] {
				t.Fatalf("n=%d: duplicate number %d", n, inst.Number)
			}
			seen[inst.Number] = true
		}
	}
}

func TestGenerate_BasicPlan(t *testing.T) {
	got := Generate(decimal.NewFromInt(1000), 3, models.MustParseDate("2024-01-15"))

	want := []struct {
		amount string
		due    string
	}{
		{"333.33", "2024-01-15"},
		{"333.33", "2024-02-15"},
		{"333.34", "2024-03-15"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d installments, got %d", len(want), len(got))
	}
	for i, w := range want {
		if !got[i].Amount.Equal(decimal.RequireFromString(w.amount)) {
			t.Errorf("#%d amount: want %s got %s", i+1, w.amount, got[i].Amount)
		}
		if got[i].DueDate.String() != w.due {
			t.Errorf("#%d due: want %s got %s", i+1, w.due, got[i].DueDate)
		}
	}
}

func TestGenerate_SingleInstallment(t *testing.T) {
	start := models.NewDate(2024, 5, 20)
	got := Generate(decimal.RequireFromString("149.99"), 1, start)
	if len(got) != 1 {
		t.Fatalf("expected 1 installment, got %d", len(got))
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("149.99")) {
		t.Fatalf("expected full amount, got %s", got[0].Amount)
	}
	if !got[0].DueDate.Equal(start) {
		t.Fatalf("expected due on start date, got %s", got[0].DueDate)
	}
}

func TestGenerate_RoundsHalfUp(t *testing.T) {
	// 100.01 / 2 = 50.005 -> 50.01, last = 50.00
	got := Generate(decimal.RequireFromString("100.01"), 2, models.NewDate(2024, 1, 1))
	if !got[0].Amount.Equal(decimal.RequireFromString("50.01")) {
		t.Fatalf("expected 50.01, got %s", got[0].Amount)
	}
	if !got[1].Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected 50.00, got %s", got[1].Amount)
	}
}

func TestGenerate_EndOfMonthClamping(t *testing.T) {
	got := Generate(decimal.NewFromInt(1200), 12, models.MustParseDate("2024-01-31"))

	cases := map[int]string{
		1:  "2024-01-31",
		2:  "2024-02-29",
		3:  "2024-03-31",
		4:  "2024-04-30",
		5:  "2024-05-31",
		12: "2024-12-31",
	}
	for number, due := range cases {
		if got[number-1].DueDate.String() != due {
			t.Errorf("installment %d: want %s got %s", number, due, got[number-1].DueDate)
		}
	}
	for _, inst := range got {
		if !inst.Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("installment %d: want 100 got %s", inst.Number, inst.Amount)
		}
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		start  string
		months int
		want   string
	}{
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2024-01-31", 2, "2024-03-31"},
		{"2024-08-31", 1, "2024-09-30"},
		{"2024-11-15", 2, "2025-01-15"},
		{"2024-12-31", 14, "2026-02-28"},
		{"2024-02-29", 12, "2025-02-28"},
		{"2024-06-10", 0, "2024-06-10"},
	}
	for _, tc := range cases {
		got := AddMonths(models.MustParseDate(tc.start), tc.months)
		if got.String() != tc.want {
			t.Errorf("AddMonths(%s, %d): want %s got %s", tc.start, tc.months, tc.want, got)
		}
	}
}

func TestGenerate_PanicsOnInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		total decimal.Decimal
		n     int
		start models.Date
	}{
		{"zero total", decimal.Zero, 3, models.NewDate(2024, 1, 1)},
		{"negative total", decimal.NewFromInt(-10), 3, models.NewDate(2024, 1, 1)},
		{"zero installments", decimal.NewFromInt(10), 0, models.NewDate(2024, 1, 1)},
		{"missing start", decimal.NewFromInt(10), 2, models.Date{}},
		{"last installment negative", decimal.RequireFromString("0.15"), 10, models.NewDate(2024, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			Generate(tc.total, tc.n, tc.start)
		})
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		total    string
		n        int
		base     string
		last     string
		feasible bool
	}{
		{"1000", 3, "333.33", "333.34", true},
		{"0.25", 20, "0.01", "0.06", true},
		{"0.15", 10, "0.02", "-0.03", false},
		{"1.50", 100, "0.02", "-0.48", false},
		{"0.02", 3, "0.01", "0", false},
	}
	for _, tc := range cases {
		base, last := Split(decimal.RequireFromString(tc.total), tc.n)
		if !base.Equal(decimal.RequireFromString(tc.base)) || !last.Equal(decimal.RequireFromString(tc.last)) {
			t.Errorf("%s / %d: got base %s last %s, want %s and %s", tc.total, tc.n, base, last, tc.base, tc.last)
		}
		if got := base.IsPositive() && last.IsPositive(); got != tc.feasible {
			t.Errorf("%s / %d: feasible = %v, want %v", tc.total, tc.n, got, tc.feasible)
		}
	}
}
