package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hesap/internal/amqp"
	"hesap/internal/core"
	"hesap/internal/sheets/memory"
)

type fakeSyncRepo struct {
	transactions map[uuid.UUID]core.Transaction
	synced       map[uuid.UUID]bool
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		transactions: map[uuid.UUID]core.Transaction{},
		synced:       map[uuid.UUID]bool{},
	}
}

func (r *fakeSyncRepo) add(t core.Transaction) {
	r.transactions[t.ID] = t
}

func (r *fakeSyncRepo) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return core.Transaction{}, errors.New("not found")
	}
	return t, nil
}

func (r *fakeSyncRepo) ListUnsyncedTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	var out []core.Transaction
	for id, t := range r.transactions {
		if len(out) >= limit {
			break
		}
		if !r.synced[id] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeSyncRepo) MarkTransactionSynced(_ context.Context, id uuid.UUID) error {
	r.synced[id] = true
	return nil
}

func mustTx(t *testing.T, amount string) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(core.NewTransactionParams{
		Amount:   decimal.RequireFromString(amount),
		Date:     time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
		Type:     core.Expense,
		Category: core.CategoryFood,
	})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newFakeSyncRepo()
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 10, time.Minute)

	tx := mustTx(t, "45.50")
	repo.add(tx)

	msg := &amqp.TransactionSyncMessage{ID: tx.ID.String()}
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	if rows := sheet.Rows(); len(rows) != 1 || rows[0].ID != tx.ID {
		t.Fatalf("unexpected sheet rows: %+v", rows)
	}
	if !repo.synced[tx.ID] {
		t.Error("transaction should be marked synced")
	}
}

func TestHandleSyncMessageBadID(t *testing.T) {
	w := NewSyncWorker(newFakeSyncRepo(), memory.New(), 10, time.Minute)

	msg := &amqp.TransactionSyncMessage{ID: "not-a-uuid"}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestHandleSyncMessageUnknownTransaction(t *testing.T) {
	w := NewSyncWorker(newFakeSyncRepo(), memory.New(), 10, time.Minute)

	msg := &amqp.TransactionSyncMessage{ID: uuid.New().String()}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown transaction")
	}
}

func TestProcessPending(t *testing.T) {
	repo := newFakeSyncRepo()
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 10, time.Minute)

	tx1 := mustTx(t, "10")
	tx2 := mustTx(t, "20")
	repo.add(tx1)
	repo.add(tx2)
	repo.synced[tx2.ID] = true

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	rows := sheet.Rows()
	if len(rows) != 1 || rows[0].ID != tx1.ID {
		t.Fatalf("expected only the unsynced transaction on the sheet, got %+v", rows)
	}
	if !repo.synced[tx1.ID] {
		t.Error("swept transaction should be marked synced")
	}
}

func TestProcessPendingEmptyBacklog(t *testing.T) {
	w := NewSyncWorker(newFakeSyncRepo(), memory.New(), 10, time.Minute)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending on empty backlog: %v", err)
	}
}

type stubConsumer struct {
	messages []*amqp.TransactionSyncMessage
}

func (c *stubConsumer) ConsumeTransactionSync(ctx context.Context, handler func(*amqp.TransactionSyncMessage) error) error {
	for _, msg := range c.messages {
		if err := handler(msg); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunDrainsQueueAndBacklog(t *testing.T) {
	repo := newFakeSyncRepo()
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 10, time.Hour)

	queued := mustTx(t, "10")
	backlog := mustTx(t, "20")
	repo.add(queued)
	repo.add(backlog)
	repo.synced[queued.ID] = true // only reachable via the queue message

	consumer := &stubConsumer{messages: []*amqp.TransactionSyncMessage{
		{ID: queued.ID.String()},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx, consumer); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want deadline exceeded", err)
	}

	if rows := sheet.Rows(); len(rows) != 2 {
		t.Fatalf("expected 2 sheet rows, got %d", len(rows))
	}
	if !repo.synced[backlog.ID] {
		t.Error("backlog transaction should be swept at startup")
	}
}
