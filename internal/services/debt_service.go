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

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrDebtNotFound   = errors.New("debt not found")
)

// DebtRepository is the persistence collaborator of the debt book.
type DebtRepository interface {
	AddPerson(ctx context.Context, p core.Person) error
	ListPeople(ctx context.Context) ([]core.Person, error)
	AddDebt(ctx context.Context, d core.Debt) error
	ListDebts(ctx context.Context) ([]core.Debt, error)
	UpdateDebt(ctx context.Context, d core.Debt) error
}

// DebtService owns the people and debts snapshots. Same snapshot discipline
// as the ledger: persist first, then re-read.
type DebtService struct {
	repo DebtRepository

	mu     sync.RWMutex
	people []core.Person
	debts  []core.Debt

	now func() time.Time
}

func NewDebtService(repo DebtRepository) *DebtService {
	return &DebtService{repo: repo, now: time.Now}
}

// Refresh re-reads people and debts from the repository.
func (s *DebtService) Refresh(ctx context.Context) error {
	people, err := s.repo.ListPeople(ctx)
	if err != nil {
		return fmt.Errorf("refresh people: %w", err)
	}
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return fmt.Errorf("refresh debts: %w", err)
	}
	s.mu.Lock()
	s.people = people
	s.debts = debts
	s.mu.Unlock()
	return nil
}

func (s *DebtService) AddPerson(ctx context.Context, name string) (core.Person, error) {
	p, err := core.NewPerson(name)
	if err != nil {
		return core.Person{}, err
	}
	if err := s.repo.AddPerson(ctx, p); err != nil {
		return core.Person{}, fmt.Errorf("add person: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return core.Person{}, err
	}
	slog.InfoContext(ctx, "Person added", "id", p.ID, "name", p.Name)
	return p, nil
}

func (s *DebtService) People() []core.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.people
}

// AddDebt records a new unpaid debt owed by an existing person.
func (s *DebtService) AddDebt(ctx context.Context, personID uuid.UUID, amount decimal.Decimal, date time.Time) (core.Debt, error) {
	if _, ok := s.findPerson(personID); !ok {
		return core.Debt{}, ErrPersonNotFound
	}
	d, err := core.NewDebt(personID, amount, date)
	if err != nil {
		return core.Debt{}, err
	}
	if err := s.repo.AddDebt(ctx, d); err != nil {
		return core.Debt{}, fmt.Errorf("add debt: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return core.Debt{}, err
	}
	slog.InfoContext(ctx, "Debt added",
		"id", d.ID,
		"person_id", personID,
		"amount", amount.String())
	return d, nil
}

// MarkDebtPaid settles a debt. Settling is one way; an already paid debt
// returns core.ErrDebtAlreadyPaid.
func (s *DebtService) MarkDebtPaid(ctx context.Context, id uuid.UUID) (core.Debt, error) {
	d, ok := s.findDebt(id)
	if !ok {
		return core.Debt{}, ErrDebtNotFound
	}

	updated := d
	if err := updated.MarkPaid(s.now()); err != nil {
		return core.Debt{}, err
	}

	if err := s.repo.UpdateDebt(ctx, updated); err != nil {
		return core.Debt{}, fmt.Errorf("persist debt payment: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return core.Debt{}, err
	}

	slog.InfoContext(ctx, "Debt settled", "id", id, "person_id", d.PersonID)
	return updated, nil
}

func (s *DebtService) ActiveDebts() []core.Debt {
	return core.ActiveDebts(s.debtSnapshot())
}

func (s *DebtService) PaidDebts() []core.Debt {
	return core.PaidDebts(s.debtSnapshot())
}

func (s *DebtService) DebtsForPerson(personID uuid.UUID) []core.Debt {
	return core.DebtsForPerson(s.debtSnapshot(), personID)
}

// TotalOwedTo sums a person's unpaid debts.
func (s *DebtService) TotalOwedTo(personID uuid.UUID) decimal.Decimal {
	return core.TotalOwed(s.debtSnapshot(), personID)
}

func (s *DebtService) debtSnapshot() []core.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debts
}

func (s *DebtService) findPerson(id uuid.UUID) (core.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.people {
		if s.people[i].ID == id {
			return s.people[i], true
		}
	}
	return core.Person{}, false
}

func (s *DebtService) findDebt(id uuid.UUID) (core.Debt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.debts {
		if s.debts[i].ID == id {
			return s.debts[i], true
		}
	}
	return core.Debt{}, false
}
