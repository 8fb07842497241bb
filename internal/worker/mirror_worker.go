package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/ports"
)

// MirrorWorker applies transaction events to an external mirror.
type MirrorWorker struct {
	mirror ports.TransactionMirror
}

func NewMirrorWorker(mirror ports.TransactionMirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleEvent processes a single event from AMQP. A returned error makes the
// consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev == nil {
		return errors.New("nil event")
	}
	if w.mirror == nil {
		slog.WarnContext(ctx, "No mirror configured, skipping event",
			"message_id", ev.MessageID,
			"kind", ev.Kind)
		return nil
	}

	switch ev.Kind {
	case amqp.EventTransactionCreated:
		if ev.Transaction == nil {
			return errors.New("created event without transaction")
		}
		ref, err := w.mirror.AppendTransaction(ctx, *ev.Transaction)
		if err != nil {
			return fmt.Errorf("mirror transaction %s: %w", ev.Transaction.ID, err)
		}
		slog.InfoContext(ctx, "Mirrored transaction",
			"transaction_id", ev.Transaction.ID,
			"sheets_ref", ref,
			"timestamp", ev.Timestamp)

	case amqp.EventTransactionsDeleted:
		if err := w.mirror.RemoveTransactions(ctx, ev.TransactionIDs); err != nil {
			return fmt.Errorf("remove mirrored transactions: %w", err)
		}
		slog.InfoContext(ctx, "Removed mirrored transactions",
			"transaction_count", len(ev.TransactionIDs),
			"timestamp", ev.Timestamp)

	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}
