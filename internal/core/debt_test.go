package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewPerson(t *testing.T) {
	p, err := NewPerson("  Ayşe  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ayşe" {
		t.Fatalf("name = %q, want trimmed", p.Name)
	}
	if _, err := NewPerson("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestDebtLifecycle(t *testing.T) {
	p, _ := NewPerson("Mehmet")
	d, err := NewDebt(p.ID, amt("150"), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IsPaid || !d.PaidDate.IsZero() {
		t.Fatal("new debt must start unpaid")
	}

	paidAt := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	if err := d.MarkPaid(paidAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsPaid || !d.PaidDate.Equal(paidAt) {
		t.Fatalf("debt after MarkPaid: %+v", d)
	}

	// one-way transition
	if err := d.MarkPaid(paidAt.Add(time.Hour)); !errors.Is(err, ErrDebtAlreadyPaid) {
		t.Fatalf("expected ErrDebtAlreadyPaid, got %v", err)
	}
	if !d.PaidDate.Equal(paidAt) {
		t.Fatal("paid date changed on second MarkPaid")
	}

	if _, err := NewDebt(p.ID, amt("-5"), time.Now()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTotalOwedSumsOnlyUnpaid(t *testing.T) {
	ayse, _ := NewPerson("Ayşe")
	mehmet, _ := NewPerson("Mehmet")

	d1, _ := NewDebt(ayse.ID, amt("100"), time.Now())
	d2, _ := NewDebt(ayse.ID, amt("40.50"), time.Now())
	d3, _ := NewDebt(ayse.ID, amt("500"), time.Now())
	_ = d3.MarkPaid(time.Now())
	d4, _ := NewDebt(mehmet.ID, amt("70"), time.Now())

	debts := []Debt{d1, d2, d3, d4}

	if got := TotalOwed(debts, ayse.ID); !got.Equal(amt("140.50")) {
		t.Fatalf("total = %s, want 140.50", got)
	}
	if got := len(ActiveDebts(debts)); got != 3 {
		t.Fatalf("active = %d, want 3", got)
	}
	if got := len(PaidDebts(debts)); got != 1 {
		t.Fatalf("paid = %d, want 1", got)
	}
	if got := len(DebtsForPerson(debts, ayse.ID)); got != 3 {
		t.Fatalf("for person = %d, want 3", got)
	}
}
