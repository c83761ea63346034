package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hesap/internal/core"
)

func TestWriteTransactions(t *testing.T) {
	plain, err := core.NewTransaction(core.NewTransactionParams{
		Amount:   decimal.RequireFromString("45.50"),
		Date:     time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
		Type:     core.Expense,
		Category: core.CategoryFood,
		Note:     "groceries",
	})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	installment, err := core.NewTransaction(core.NewTransactionParams{
		Amount:           decimal.RequireFromString("1200"),
		Date:             time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Type:             core.Expense,
		Category:         core.CategoryShopping,
		Note:             "laptop",
		InstallmentCount: core.Installments(12),
	})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTransactions(&buf, []core.Transaction{plain, installment}); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "id,date,type,category,note,amount,per_period_amount,total_installments,paid_installments" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "45.50,45.50,0,0") {
		t.Errorf("plain row should repeat the amount: %s", lines[1])
	}
	if !strings.Contains(lines[2], "1200.00,100.00,12,0") {
		t.Errorf("installment row should carry the per-period amount: %s", lines[2])
	}
}

func TestWriteTransactionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, nil); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "id,date,type,category,note,amount,per_period_amount,total_installments,paid_installments" {
		t.Errorf("expected header only, got %q", got)
	}
}
