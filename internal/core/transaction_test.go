package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewTransactionValidation(t *testing.T) {
	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		params  NewTransactionParams
		wantErr error
	}{
		{
			name:   "plain expense",
			params: NewTransactionParams{Amount: amt("42.50"), Date: date, Type: Expense, Category: CategoryFood},
		},
		{
			name:   "income without category",
			params: NewTransactionParams{Amount: amt("500"), Date: date, Type: Income},
		},
		{
			name:   "installment expense",
			params: NewTransactionParams{Amount: amt("1200"), Date: date, Type: Expense, Category: CategoryShopping, InstallmentCount: Installments(12)},
		},
		{
			name:    "zero amount",
			params:  NewTransactionParams{Amount: decimal.Zero, Date: date, Type: Expense},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			params:  NewTransactionParams{Amount: amt("-5"), Date: date, Type: Income},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero installment count",
			params:  NewTransactionParams{Amount: amt("100"), Date: date, Type: Expense, InstallmentCount: Installments(0)},
			wantErr: ErrInvalidInstallmentCount,
		},
		{
			name:    "negative installment count",
			params:  NewTransactionParams{Amount: amt("100"), Date: date, Type: Expense, InstallmentCount: Installments(-3)},
			wantErr: ErrInvalidInstallmentCount,
		},
		{
			name:    "unknown type",
			params:  NewTransactionParams{Amount: amt("10"), Date: date, Type: "transfer"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "unknown category",
			params:  NewTransactionParams{Amount: amt("10"), Date: date, Type: Expense, Category: "yachts"},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := NewTransaction(tc.params)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.ID.String() == "00000000-0000-0000-0000-000000000000" {
				t.Fatal("expected assigned id")
			}
			if (tx.Installments != nil) != (tc.params.InstallmentCount != nil) {
				t.Fatalf("unexpected installment plan presence: %+v", tx.Installments)
			}
		})
	}
}

func TestPerPeriodAmountFrozen(t *testing.T) {
	tx, err := NewTransaction(NewTransactionParams{
		Amount: amt("1200"), Date: time.Now(), Type: Expense,
		Category: CategoryShopping, InstallmentCount: Installments(12),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tx.Installments.PerPeriodAmount; !got.Equal(amt("100.00")) {
		t.Fatalf("per-period amount = %s, want 100.00", got)
	}
	if tx.Installments.PaidCount != 0 {
		t.Fatalf("paid count starts at %d, want 0", tx.Installments.PaidCount)
	}
}

func TestPerPeriodRoundingDrift(t *testing.T) {
	// 100 / 3 rounds to 33.33; the accepted drift is below one cent per period.
	cases := []struct {
		amount string
		count  int
	}{
		{"100", 3},
		{"999.99", 7},
		{"1", 12},
		{"1200", 12},
	}
	for _, tc := range cases {
		tx, err := NewTransaction(NewTransactionParams{
			Amount: amt(tc.amount), Date: time.Now(), Type: Expense, InstallmentCount: Installments(tc.count),
		})
		if err != nil {
			t.Fatalf("%s/%d: unexpected error: %v", tc.amount, tc.count, err)
		}
		reconstructed := tx.Installments.PerPeriodAmount.Mul(decimal.NewFromInt(int64(tc.count)))
		drift := reconstructed.Sub(tx.Amount).Abs()
		limit := decimal.New(1, -2).Mul(decimal.NewFromInt(int64(tc.count)))
		if drift.GreaterThan(limit) {
			t.Fatalf("%s/%d: drift %s exceeds %s", tc.amount, tc.count, drift, limit)
		}
	}
}

func TestPayNextInstallment(t *testing.T) {
	tx, err := NewTransaction(NewTransactionParams{
		Amount: amt("1200"), Date: time.Now(), Type: Expense,
		Category: CategoryShopping, InstallmentCount: Installments(12),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := tx.PayNextInstallment(); err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}
	if got := tx.RemainingInstallments(); got != 9 {
		t.Fatalf("remaining = %d, want 9", got)
	}

	// Drive it to exhaustion, then one more must fail.
	for tx.RemainingInstallments() > 0 {
		if err := tx.PayNextInstallment(); err != nil {
			t.Fatalf("unexpected error with %d remaining: %v", tx.RemainingInstallments(), err)
		}
	}
	if err := tx.PayNextInstallment(); !errors.Is(err, ErrNoRemainingInstallments) {
		t.Fatalf("expected ErrNoRemainingInstallments, got %v", err)
	}
	if tx.Installments.PaidCount != tx.Installments.TotalCount {
		t.Fatalf("paid %d != total %d", tx.Installments.PaidCount, tx.Installments.TotalCount)
	}
}

func TestPayNextInstallmentWithoutPlan(t *testing.T) {
	tx, err := NewTransaction(NewTransactionParams{Amount: amt("10"), Date: time.Now(), Type: Expense})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.PayNextInstallment(); !errors.Is(err, ErrNoInstallmentPlan) {
		t.Fatalf("expected ErrNoInstallmentPlan, got %v", err)
	}
	if got := tx.RemainingInstallments(); got != 0 {
		t.Fatalf("remaining = %d, want 0 without plan", got)
	}
}

func TestRescheduleInstallmentPayment(t *testing.T) {
	tx, err := NewTransaction(NewTransactionParams{
		Amount: amt("600"), Date: time.Now(), Type: Expense, InstallmentCount: Installments(6),
		InstallmentPaymentDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replacement is unconditional, an earlier date is accepted too.
	earlier := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if err := tx.RescheduleInstallmentPayment(earlier); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.Installments.PaymentDate.Equal(earlier) {
		t.Fatalf("payment date = %v, want %v", tx.Installments.PaymentDate, earlier)
	}

	plain, _ := NewTransaction(NewTransactionParams{Amount: amt("10"), Date: time.Now(), Type: Expense})
	if err := plain.RescheduleInstallmentPayment(earlier); !errors.Is(err, ErrNoInstallmentPlan) {
		t.Fatalf("expected ErrNoInstallmentPlan, got %v", err)
	}
}

func TestEffectiveAmount(t *testing.T) {
	installment, _ := NewTransaction(NewTransactionParams{
		Amount: amt("1200"), Date: time.Now(), Type: Expense, InstallmentCount: Installments(12),
	})
	plain, _ := NewTransaction(NewTransactionParams{Amount: amt("200"), Date: time.Now(), Type: Expense})

	if got := installment.EffectiveAmount(); !got.Equal(amt("100.00")) {
		t.Fatalf("installment effective amount = %s, want 100.00", got)
	}
	if got := plain.EffectiveAmount(); !got.Equal(amt("200")) {
		t.Fatalf("plain effective amount = %s, want 200", got)
	}

	// Paying down periods never changes the effective amount.
	_ = installment.PayNextInstallment()
	if got := installment.EffectiveAmount(); !got.Equal(amt("100.00")) {
		t.Fatalf("effective amount after payment = %s, want 100.00", got)
	}
}

func TestCloneIsolatesInstallmentState(t *testing.T) {
	tx, _ := NewTransaction(NewTransactionParams{
		Amount: amt("300"), Date: time.Now(), Type: Expense, InstallmentCount: Installments(3),
	})
	clone := tx.Clone()
	if err := clone.PayNextInstallment(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Installments.PaidCount != 0 {
		t.Fatalf("original mutated through clone: paid=%d", tx.Installments.PaidCount)
	}
	if clone.Installments.PaidCount != 1 {
		t.Fatalf("clone paid=%d, want 1", clone.Installments.PaidCount)
	}
}

func TestCategoryIcons(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q reported invalid", c)
		}
		if c.Icon() == "" {
			t.Fatalf("category %q has no icon", c)
		}
	}
	if Category("yachts").Valid() {
		t.Fatal("unknown category reported valid")
	}
}
