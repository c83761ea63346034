package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidBudgetWindow = errors.New("budget end date must not precede start date")

// Budget caps the spend for one expense category over a date window. The
// spent amount is derived from the expense log, not tracked incrementally.
type Budget struct {
	ID          uuid.UUID
	Amount      decimal.Decimal
	Category    Category
	StartDate   time.Time
	EndDate     time.Time
	SpentAmount decimal.Decimal
}

func NewBudget(amount decimal.Decimal, category Category, start, end time.Time) (Budget, error) {
	if !amount.IsPositive() {
		return Budget{}, ErrInvalidAmount
	}
	if !category.Valid() {
		return Budget{}, ErrInvalidCategory
	}
	if end.Before(start) {
		return Budget{}, ErrInvalidBudgetWindow
	}
	return Budget{
		ID:          uuid.New(),
		Amount:      amount,
		Category:    category,
		StartDate:   start,
		EndDate:     end,
		SpentAmount: decimal.Zero,
	}, nil
}

// Remaining is the unspent portion; negative when over budget.
func (b Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.SpentAmount)
}

// OverBudget reports whether the spent amount exceeds the cap.
func (b Budget) OverBudget() bool {
	return b.SpentAmount.GreaterThan(b.Amount)
}

// SpentFrom recomputes the spent amount from the transaction log: expense
// transactions in the budget's category whose date falls inside the window,
// per-period amounts substituted for installment purchases.
func (b Budget) SpentFrom(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		t := &txs[i]
		if t.Type != Expense || t.Category != b.Category {
			continue
		}
		if t.Date.Before(b.StartDate) || t.Date.After(b.EndDate) {
			continue
		}
		total = total.Add(t.EffectiveAmount())
	}
	return total
}
