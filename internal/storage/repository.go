// Package storage persists the ledger in SQLite. It is the repository
// collaborator the services mutate through; all derived queries stay in
// memory on the services' snapshot.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hesap/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction inserts a new ledger entry.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) error {
	var (
		count     int
		perPeriod string
		paid      int
		payDate   sql.NullTime
	)
	if t.Installments != nil {
		count = t.Installments.TotalCount
		perPeriod = t.Installments.PerPeriodAmount.String()
		paid = t.Installments.PaidCount
		if !t.Installments.PaymentDate.IsZero() {
			payDate = sql.NullTime{Time: t.Installments.PaymentDate, Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, amount, date, type, category, note,
			 installment_count, per_period_amount, paid_installments, installment_payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Amount.String(), t.Date, string(t.Type), string(t.Category), t.Note,
		count, perPeriod, paid, payDate)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"installments", count)
	return nil
}

const transactionColumns = `id, amount, date, type, category, note,
	installment_count, per_period_amount, paid_installments, installment_payment_date`

// ListTransactions returns the whole ledger sorted by date descending.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction fetches a single ledger entry by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String())
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return t, err
}

// UpdateInstallment persists the mutable installment state (paid count and
// payment date) of an existing transaction. Everything else is immutable.
func (r *SQLiteRepository) UpdateInstallment(ctx context.Context, t core.Transaction) error {
	if t.Installments == nil {
		return core.ErrNoInstallmentPlan
	}
	var payDate sql.NullTime
	if !t.Installments.PaymentDate.IsZero() {
		payDate = sql.NullTime{Time: t.Installments.PaymentDate, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET paid_installments = ?, installment_payment_date = ?, synced = 0
		WHERE id = ?`,
		t.Installments.PaidCount, payDate, t.ID.String())
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update installment rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Installment state saved",
		"id", t.ID,
		"paid", t.Installments.PaidCount,
		"total", t.Installments.TotalCount)
	return nil
}

// ListUnsyncedTransactions returns up to limit transactions not yet mirrored
// to the sheet, oldest first.
func (r *SQLiteRepository) ListUnsyncedTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE synced = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unsynced transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced transactions: %w", err)
	}
	return txs, nil
}

// MarkTransactionSynced flags a transaction as mirrored to the sheet.
func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1 WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddPerson(ctx context.Context, p core.Person) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO people (id, name) VALUES (?, ?)`, p.ID.String(), p.Name); err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM people ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []core.Person
	for rows.Next() {
		var idStr string
		var p core.Person
		if err := rows.Scan(&idStr, &p.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse person id %q: %w", idStr, err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

func (r *SQLiteRepository) AddDebt(ctx context.Context, d core.Debt) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (id, person_id, amount, date, is_paid, paid_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.PersonID.String(), d.Amount.String(), d.Date,
		d.IsPaid, nullTime(d.PaidDate)); err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, person_id, amount, date, is_paid, paid_date
		FROM debts ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		var (
			idStr, personStr, amountStr string
			paidDate                    sql.NullTime
			d                           core.Debt
		)
		if err := rows.Scan(&idStr, &personStr, &amountStr, &d.Date, &d.IsPaid, &paidDate); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		if d.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse debt id %q: %w", idStr, err)
		}
		if d.PersonID, err = uuid.Parse(personStr); err != nil {
			return nil, fmt.Errorf("parse debt person id %q: %w", personStr, err)
		}
		if d.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("parse debt amount %q: %w", amountStr, err)
		}
		if paidDate.Valid {
			d.PaidDate = paidDate.Time
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}
	return debts, nil
}

// UpdateDebt persists the paid state of an existing debt.
func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET is_paid = ?, paid_date = ? WHERE id = ?`,
		d.IsPaid, nullTime(d.PaidDate), d.ID.String())
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debt rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		idStr, amountStr, typeStr, categoryStr, perPeriodStr string
		count, paid                                          int
		payDate                                              sql.NullTime
		t                                                    core.Transaction
	)
	err := row.Scan(&idStr, &amountStr, &t.Date, &typeStr, &categoryStr, &t.Note,
		&count, &perPeriodStr, &paid, &payDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if t.ID, err = uuid.Parse(idStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", idStr, err)
	}
	if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction amount %q: %w", amountStr, err)
	}
	t.Type = core.TransactionType(typeStr)
	t.Category = core.Category(categoryStr)

	if count > 0 {
		perPeriod, err := decimal.NewFromString(perPeriodStr)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse per-period amount %q: %w", perPeriodStr, err)
		}
		t.Installments = &core.InstallmentPlan{
			TotalCount:      count,
			PerPeriodAmount: perPeriod,
			PaidCount:       paid,
		}
		if payDate.Valid {
			t.Installments.PaymentDate = payDate.Time
		}
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
