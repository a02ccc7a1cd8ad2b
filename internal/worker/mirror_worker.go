package worker

import (
	"context"
	"fmt"

	"paisa/internal/amqp"
	"paisa/internal/core"
	"paisa/internal/log"
	"paisa/internal/sheets"
)

// Source provides the authoritative transaction list for reconciliation.
type Source interface {
	Load(ctx context.Context) error
	Transactions() []core.Transaction
}

// MirrorWorker applies transaction events to a sheets.Mirror.
type MirrorWorker struct {
	mirror sheets.Mirror
	source Source
	logger *log.Logger
}

func NewMirrorWorker(mirror sheets.Mirror, source Source, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		mirror: mirror,
		source: source,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the amqp consumer callback. A returned error requeues
// the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	switch ev.Type {
	case amqp.EventTransactionCreated:
		if err := w.mirror.AppendTransaction(ctx, *ev.Transaction); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", ev.TransactionID, err)
		}
		w.logger.InfoContext(ctx, "Transaction mirrored",
			log.FieldTransactionID, ev.TransactionID,
			log.FieldMessageID, ev.MessageID)
	case amqp.EventTransactionDeleted:
		if err := w.mirror.DeleteTransaction(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("remove mirrored transaction %d: %w", ev.TransactionID, err)
		}
		w.logger.InfoContext(ctx, "Mirrored transaction removed",
			log.FieldTransactionID, ev.TransactionID,
			log.FieldMessageID, ev.MessageID)
	}
	return nil
}

// Reconcile brings the mirror in line with the store: every stored
// transaction is appended (idempotently, oldest first) and mirrored rows
// whose id is no longer stored are deleted. Run it before consuming events
// so a stale snapshot cannot undo a delete applied meanwhile.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	if w.source == nil {
		return nil
	}
	if err := w.source.Load(ctx); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	txs := w.source.Transactions()
	stored := make(map[int64]struct{}, len(txs))
	synced, removed, failed := 0, 0, 0
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		stored[tx.ID] = struct{}{}
		if err := w.mirror.AppendTransaction(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction during reconcile",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	mirrored, err := w.mirror.TransactionIDs(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: list mirrored rows: %w", err)
	}
	for _, id := range mirrored {
		if _, ok := stored[id]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror.DeleteTransaction(ctx, id); err != nil {
			w.logger.ErrorContext(ctx, "Failed to remove stale mirrored row",
				log.FieldTransactionID, id,
				log.FieldError, err)
			failed++
			continue
		}
		removed++
	}

	w.logger.InfoContext(ctx, "Reconcile completed",
		log.FieldCount, len(txs),
		"synced", synced,
		"removed", removed,
		"errors", failed,
		log.FieldOperation, log.OpSync)
	if failed > 0 {
		return fmt.Errorf("reconcile: %d operations failed", failed)
	}
	return nil
}
