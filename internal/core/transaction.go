package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Category is the fixed expense taxonomy. Income transactions carry no category.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryClothing       Category = "clothing"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryShopping       Category = "shopping"
	CategoryOther          Category = "other"
)

// Categories returns all expense categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryClothing,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryHealthcare,
		CategoryEducation,
		CategoryShopping,
		CategoryOther,
	}
}

var categoryIcons = map[Category]string{
	CategoryFood:           "utensils",
	CategoryClothing:       "shirt",
	CategoryTransportation: "car",
	CategoryEntertainment:  "tv",
	CategoryUtilities:      "bolt",
	CategoryHealthcare:     "cross",
	CategoryEducation:      "book",
	CategoryShopping:       "cart",
	CategoryOther:          "grid",
}

// Icon returns the display icon tag for the category.
func (c Category) Icon() string {
	return categoryIcons[c]
}

func (c Category) Valid() bool {
	_, ok := categoryIcons[c]
	return ok
}

var (
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidInstallmentCount = errors.New("installment count must be positive")
	ErrInvalidCategory         = errors.New("unknown category")
	ErrInvalidType             = errors.New("unknown transaction type")
	ErrNoInstallmentPlan       = errors.New("transaction has no installment plan")
	ErrNoRemainingInstallments = errors.New("no remaining installments")
)

// InstallmentPlan tracks the amortization state of an installment purchase.
// PerPeriodAmount is frozen at construction and never recomputed, so rounding
// drift against TotalCount*PerPeriodAmount is accepted.
type InstallmentPlan struct {
	TotalCount      int
	PerPeriodAmount decimal.Decimal
	PaidCount       int
	PaymentDate     time.Time // zero when no payment date is scheduled
}

// Remaining returns the number of unpaid installment periods.
func (p *InstallmentPlan) Remaining() int {
	if p == nil {
		return 0
	}
	return p.TotalCount - p.PaidCount
}

// Transaction is a single ledger entry. Identity, amount, date and type are
// immutable after construction; only the installment plan's PaidCount and
// PaymentDate may change, through the methods below.
type Transaction struct {
	ID           uuid.UUID
	Amount       decimal.Decimal // total amount, even for installment purchases
	Date         time.Time
	Type         TransactionType
	Category     Category // empty for incomes and uncategorized expenses
	Note         string
	Installments *InstallmentPlan // nil for non-installment transactions
}

// NewTransactionParams carries the construction inputs for a Transaction.
// A nil InstallmentCount means no installment plan; a supplied count must be
// at least 1.
type NewTransactionParams struct {
	Amount                 decimal.Decimal
	Date                   time.Time
	Type                   TransactionType
	Category               Category
	Note                   string
	InstallmentCount       *int
	InstallmentPaymentDate time.Time
}

// Installments wraps a literal count for NewTransactionParams.
func Installments(n int) *int {
	return &n
}

// NewTransaction validates the parameters and builds a ledger entry.
// The per-period amount of an installment plan is computed here once
// (total / count, rounded to cents) and then frozen.
func NewTransaction(p NewTransactionParams) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if !p.Type.Valid() {
		return Transaction{}, ErrInvalidType
	}
	if p.Category != "" && !p.Category.Valid() {
		return Transaction{}, ErrInvalidCategory
	}

	t := Transaction{
		ID:       uuid.New(),
		Amount:   p.Amount,
		Date:     p.Date,
		Type:     p.Type,
		Category: p.Category,
		Note:     p.Note,
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	if p.InstallmentCount != nil {
		count := *p.InstallmentCount
		if count < 1 {
			return Transaction{}, ErrInvalidInstallmentCount
		}
		t.Installments = &InstallmentPlan{
			TotalCount:      count,
			PerPeriodAmount: p.Amount.DivRound(decimal.NewFromInt(int64(count)), 2),
			PaymentDate:     p.InstallmentPaymentDate,
		}
	}

	return t, nil
}

// IsInstallment reports whether the transaction carries an installment plan.
func (t *Transaction) IsInstallment() bool {
	return t.Installments != nil
}

// RemainingInstallments returns the unpaid period count, zero without a plan.
func (t *Transaction) RemainingInstallments() int {
	return t.Installments.Remaining()
}

// EffectiveAmount is the amount a transaction contributes to balances and
// aggregations: the per-period amount for installment purchases, the full
// amount otherwise. An installment purchase bites the balance monthly, not
// at its full sticker price.
func (t *Transaction) EffectiveAmount() decimal.Decimal {
	if t.Installments != nil {
		return t.Installments.PerPeriodAmount
	}
	return t.Amount
}

// PayNextInstallment marks exactly one installment period as paid. Partial or
// bulk payments are not supported.
func (t *Transaction) PayNextInstallment() error {
	if t.Installments == nil {
		return ErrNoInstallmentPlan
	}
	if t.Installments.Remaining() == 0 {
		return ErrNoRemainingInstallments
	}
	t.Installments.PaidCount++
	return nil
}

// RescheduleInstallmentPayment replaces the plan's payment date. The new date
// is not validated against the plan state.
func (t *Transaction) RescheduleInstallmentPayment(newDate time.Time) error {
	if t.Installments == nil {
		return ErrNoInstallmentPlan
	}
	t.Installments.PaymentDate = newDate
	return nil
}

// Clone returns a deep copy, so callers can mutate installment state without
// touching the original.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Installments != nil {
		plan := *t.Installments
		c.Installments = &plan
	}
	return c
}
