// Package worker mirrors ledger entries from SQLite to the external sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hesap/internal/amqp"
	"hesap/internal/core"
	"hesap/internal/sheets"
)

// SyncRepository is the slice of the storage layer the worker needs.
type SyncRepository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	ListUnsyncedTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkTransactionSynced(ctx context.Context, id uuid.UUID) error
}

// Consumer delivers queued sync messages.
type Consumer interface {
	ConsumeTransactionSync(ctx context.Context, handler func(*amqp.TransactionSyncMessage) error) error
}

// SyncWorker drains the sync queue and sweeps the unsynced backlog. The
// backlog sweep is the backup path for lost queue messages.
type SyncWorker struct {
	repo      SyncRepository
	sheet     sheets.TransactionWriter
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(repo SyncRepository, sheet sheets.TransactionWriter, batchSize int, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		repo:      repo,
		sheet:     sheet,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleSyncMessage mirrors one transaction identified by a queue message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return fmt.Errorf("parse transaction id %q: %w", msg.ID, err)
	}

	t, err := w.repo.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncToSheet(ctx, t)
}

// ProcessPending sweeps one batch of transactions the queue never delivered.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.repo.ListUnsyncedTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unsynced backlog", "count", len(pending))

	for _, t := range pending {
		if err := w.syncToSheet(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction",
				"id", t.ID,
				"error", err)
		}
	}
	return nil
}

// Run consumes the queue and sweeps the backlog periodically until the
// context is cancelled.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.ProcessPending(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup backlog sweep failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
			return w.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Backlog sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *SyncWorker) syncToSheet(ctx context.Context, t core.Transaction) error {
	ref, err := w.sheet.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.repo.MarkTransactionSynced(ctx, t.ID); err != nil {
		// The row landed on the sheet; losing the mark only means one
		// duplicate append on the next sweep.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"id", t.ID,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", t.ID,
		"sheet_ref", ref,
		"amount", t.Amount.String())
	return nil
}
