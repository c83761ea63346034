package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errors.New("person name cannot be empty")
	ErrDebtAlreadyPaid = errors.New("debt is already paid")
)

// Person is a named counterparty for debts.
type Person struct {
	ID   uuid.UUID
	Name string
}

func NewPerson(name string) (Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Person{}, ErrEmptyName
	}
	return Person{ID: uuid.New(), Name: name}, nil
}

// Debt is an amount owed by or to a person. Its only state transition is
// unpaid to paid, which stamps PaidDate.
type Debt struct {
	ID       uuid.UUID
	PersonID uuid.UUID
	Amount   decimal.Decimal
	Date     time.Time
	IsPaid   bool
	PaidDate time.Time // zero until the debt is paid
}

func NewDebt(personID uuid.UUID, amount decimal.Decimal, date time.Time) (Debt, error) {
	if !amount.IsPositive() {
		return Debt{}, ErrInvalidAmount
	}
	if date.IsZero() {
		date = time.Now()
	}
	return Debt{ID: uuid.New(), PersonID: personID, Amount: amount, Date: date}, nil
}

// MarkPaid transitions the debt to paid at the given time. The transition is
// one-way.
func (d *Debt) MarkPaid(at time.Time) error {
	if d.IsPaid {
		return ErrDebtAlreadyPaid
	}
	d.IsPaid = true
	d.PaidDate = at
	return nil
}

// ActiveDebts returns the unpaid debts.
func ActiveDebts(debts []Debt) []Debt {
	return filterDebts(debts, func(d *Debt) bool { return !d.IsPaid })
}

// PaidDebts returns the settled debts.
func PaidDebts(debts []Debt) []Debt {
	return filterDebts(debts, func(d *Debt) bool { return d.IsPaid })
}

// DebtsForPerson returns all debts owed by or to one person.
func DebtsForPerson(debts []Debt, personID uuid.UUID) []Debt {
	return filterDebts(debts, func(d *Debt) bool { return d.PersonID == personID })
}

// TotalOwed sums the unpaid debt amounts for one person.
func TotalOwed(debts []Debt, personID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for i := range debts {
		if debts[i].PersonID == personID && !debts[i].IsPaid {
			total = total.Add(debts[i].Amount)
		}
	}
	return total
}

func filterDebts(debts []Debt, match func(*Debt) bool) []Debt {
	var out []Debt
	for i := range debts {
		if match(&debts[i]) {
			out = append(out, debts[i])
		}
	}
	return out
}
