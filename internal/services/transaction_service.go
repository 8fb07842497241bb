package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// TransactionStore is what the service needs from a backend.
type TransactionStore interface {
	ports.TransactionLister
	ports.TransactionWriter
	ports.TransactionDeleter
}

// TransactionService orchestrates transaction writes across the store and
// the event publisher. Publishing is best effort: a failed publish never
// fails the write.
type TransactionService struct {
	store     TransactionStore
	publisher ports.EventPublisher
}

// NewTransactionService creates a service. publisher may be nil.
func NewTransactionService(store TransactionStore, publisher ports.EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// ListTransactions implements ports.TransactionLister.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction implements ports.TransactionWriter. Recurring
// transactions without a next date get one computed from their date.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.IsRecurring && tx.NextRecurringDate == nil {
		next, err := NextOccurrence(tx.RecurringInterval, tx.Date)
		if err != nil {
			return "", err
		}
		tx.NextRecurringDate = &next
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish created event", "transaction_id", id, "error", err)
		}
	} else {
		slog.DebugContext(ctx, "Event publisher not configured, skipping created event", "transaction_id", id)
	}

	return id, nil
}

// DeleteTransactions implements ports.TransactionDeleter.
func (s *TransactionService) DeleteTransactions(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.DeleteTransactions(ctx, ids); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionsDeleted(ctx, ids); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event", "transaction_count", len(ids), "error", err)
		}
	}
	return nil
}

// uniqueIDs drops blank and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IsValidationError reports whether err came from transaction validation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidType, core.ErrInvalidDate,
		core.ErrInvalidInterval, core.ErrEmptyCategory, core.ErrEmptyAccount,
		core.ErrRecurringMismatch, core.ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
