// Package services orchestrates the ledger over its repository collaborator.
// Mutations go repository-first; the in-memory snapshot is then replaced
// wholesale by a re-read, so everything derived stays a function of what the
// repository holds.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hesap/internal/core"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository is the persistence collaborator of the ledger.
type TransactionRepository interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	UpdateInstallment(ctx context.Context, t core.Transaction) error
}

// SyncPublisher notifies the sheet-sync worker about a changed transaction.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id uuid.UUID) error
}

// LedgerService owns the transaction snapshot and every derived query over
// it. Mutations are expected from one logical caller at a time; overlapping
// mutations to the same transaction are unspecified. Reads only need the
// snapshot swap to be safe, which the lock provides.
type LedgerService struct {
	repo      TransactionRepository
	publisher SyncPublisher // optional, nil when no queue is configured

	mu           sync.RWMutex
	transactions []core.Transaction

	now func() time.Time
}

func NewLedgerService(repo TransactionRepository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Refresh re-reads the whole ledger from the repository and replaces the
// snapshot in a single assignment.
func (s *LedgerService) Refresh(ctx context.Context) error {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("refresh transactions: %w", err)
	}
	s.mu.Lock()
	s.transactions = txs
	s.mu.Unlock()
	return nil
}

// AddTransaction validates, persists and returns a new ledger entry. On a
// repository failure nothing is appended to the visible snapshot.
func (s *LedgerService) AddTransaction(ctx context.Context, p core.NewTransactionParams) (core.Transaction, error) {
	t, err := core.NewTransaction(p)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.repo.AppendTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	s.publishSync(ctx, t.ID)

	if err := s.Refresh(ctx); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"installments", t.RemainingInstallments())
	return t, nil
}

// PayInstallment pays exactly one period of an installment transaction. The
// mutation is applied to a copy, persisted, and only then made visible via a
// snapshot refresh, so a failed save never advances the paid count.
func (s *LedgerService) PayInstallment(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	t, ok := s.find(id)
	if !ok {
		return core.Transaction{}, ErrTransactionNotFound
	}

	updated := t.Clone()
	if err := updated.PayNextInstallment(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.repo.UpdateInstallment(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("persist installment payment: %w", err)
	}

	s.publishSync(ctx, id)

	if err := s.Refresh(ctx); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Installment paid",
		"id", id,
		"paid", updated.Installments.PaidCount,
		"remaining", updated.RemainingInstallments())
	return updated, nil
}

// RescheduleInstallment replaces the installment payment date of a
// transaction.
func (s *LedgerService) RescheduleInstallment(ctx context.Context, id uuid.UUID, newDate time.Time) (core.Transaction, error) {
	t, ok := s.find(id)
	if !ok {
		return core.Transaction{}, ErrTransactionNotFound
	}

	updated := t.Clone()
	if err := updated.RescheduleInstallmentPayment(newDate); err != nil {
		return core.Transaction{}, err
	}

	if err := s.repo.UpdateInstallment(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("persist payment date: %w", err)
	}

	s.publishSync(ctx, id)

	if err := s.Refresh(ctx); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Installment payment date rescheduled",
		"id", id,
		"payment_date", newDate)
	return updated, nil
}

// Transactions returns the current snapshot, date descending.
func (s *LedgerService) Transactions() []core.Transaction {
	return s.snapshot()
}

// Balance folds the whole snapshot into a signed total.
func (s *LedgerService) Balance() decimal.Decimal {
	return core.Balance(s.snapshot())
}

// WindowStart returns the first instant of the current analytics window for
// the given granularity. Callers caching derived responses key on it so a
// window rollover never serves the previous window.
func (s *LedgerService) WindowStart(g core.Granularity) time.Time {
	return core.WindowStart(g, s.now())
}

// IncomeExpenseSeries returns the labelled income-vs-expense buckets for the
// window of the given granularity anchored at now.
func (s *LedgerService) IncomeExpenseSeries(g core.Granularity) []core.Bucket {
	filtered := core.FilterByWindow(s.snapshot(), g, s.now())
	return core.BucketByLabel(filtered, g)
}

// ExpensesByCategory returns the per-category expense totals for the window
// of the given granularity anchored at now.
func (s *LedgerService) ExpensesByCategory(g core.Granularity) []core.CategoryTotal {
	filtered := core.FilterByWindow(s.snapshot(), g, s.now())
	return core.CategoryTotals(filtered)
}

// InstallmentBurden sums the per-period amounts of all installment expenses.
func (s *LedgerService) InstallmentBurden() decimal.Decimal {
	return core.InstallmentBurden(s.snapshot())
}

// InstallmentListing lists installment expenses, per-period amount descending.
func (s *LedgerService) InstallmentListing() []core.InstallmentLine {
	return core.InstallmentListing(s.snapshot())
}

// InstallmentsByCategory groups installment per-period amounts by category.
func (s *LedgerService) InstallmentsByCategory() []core.CategoryTotal {
	return core.InstallmentsByCategory(s.snapshot())
}

// AvailableMonths lists the distinct months present in the ledger, newest
// first, defaulting to the current month for an empty ledger.
func (s *LedgerService) AvailableMonths() []time.Time {
	return core.AvailableMonths(s.snapshot(), s.now())
}

// TransactionsForMonth lists the snapshot entries of one calendar month.
func (s *LedgerService) TransactionsForMonth(ref time.Time) []core.Transaction {
	return core.TransactionsInMonth(s.snapshot(), ref)
}

// BudgetReport recomputes a budget's spent amount from the current snapshot.
func (s *LedgerService) BudgetReport(b core.Budget) core.Budget {
	b.SpentAmount = b.SpentFrom(s.snapshot())
	return b
}

func (s *LedgerService) snapshot() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions
}

func (s *LedgerService) find(id uuid.UUID) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return s.transactions[i], true
		}
	}
	return core.Transaction{}, false
}

// publishSync is best effort: the ledger mutation already succeeded, a queue
// problem must not fail it.
func (s *LedgerService) publishSync(ctx context.Context, id uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}
