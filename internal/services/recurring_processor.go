package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// RecurringProcessor turns due recurring transactions into concrete
// one-time transactions and moves their next date forward.
type RecurringProcessor struct {
	store  ports.RecurringStore
	writer ports.TransactionWriter
	clock  core.Clock
}

func NewRecurringProcessor(store ports.RecurringStore, writer ports.TransactionWriter, clock core.Clock) *RecurringProcessor {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &RecurringProcessor{store: store, writer: writer, clock: clock}
}

// ProcessDue creates one copy per due template. Missed periods collapse into
// that single copy; the next date is advanced past now. Failures on one
// template are logged and do not stop the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context) (int, error) {
	if p.store == nil || p.writer == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	now := p.clock.Now()

	due, err := p.store.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_due", len(due),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tmpl := range due {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		next, err := advancePast(tmpl, now)
		if err != nil {
			slog.ErrorContext(ctx, "Cannot advance recurring transaction",
				"transaction_id", tmpl.ID, "interval", tmpl.RecurringInterval, "error", err)
			continue
		}

		instance := core.Transaction{
			Date:        now,
			Amount:      tmpl.Amount,
			Type:        tmpl.Type,
			Category:    tmpl.Category,
			Description: tmpl.Description,
			AccountID:   tmpl.AccountID,
		}
		id, err := p.writer.CreateTransaction(ctx, instance)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", tmpl.ID, "error", err)
			continue
		}

		if err := p.store.AdvanceRecurring(ctx, tmpl.ID, next); err != nil {
			// the copy exists; the next run would create a duplicate
			slog.ErrorContext(ctx, "Failed to advance next recurring date",
				"recurring_id", tmpl.ID, "transaction_id", id, "error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", tmpl.ID,
			"transaction_id", id,
			"interval", tmpl.RecurringInterval,
			"next_date", next.Format(time.RFC3339))
	}

	slog.InfoContext(ctx, "Recurring processing complete", "processed", processed, "total_due", len(due))
	return processed, nil
}

func advancePast(tmpl core.Transaction, now time.Time) (time.Time, error) {
	stepper, err := GetIntervalStepper(tmpl.RecurringInterval)
	if err != nil {
		return time.Time{}, err
	}
	next := now
	if tmpl.NextRecurringDate != nil {
		next = *tmpl.NextRecurringDate
	}
	for !next.After(now) {
		next = stepper.Next(next)
	}
	return next, nil
}
