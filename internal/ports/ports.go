package ports

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionLister loads the collection the chart and table work on.
	TransactionLister interface {
		// ListTransactions returns the transactions of accountID, or of every
		// account when accountID is empty.
		ListTransactions(ctx context.Context, accountID string) ([]core.Transaction, error)
	}

	// TransactionDeleter removes transactions. Deletes are all-or-nothing.
	TransactionDeleter interface {
		DeleteTransactions(ctx context.Context, ids []string) error
	}

	TransactionWriter interface {
		// CreateTransaction stores tx and returns its id.
		CreateTransaction(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	// RecurringStore is used by the recurring processor to find due templates
	// and move their next date forward.
	RecurringStore interface {
		ListDueRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error)
		AdvanceRecurring(ctx context.Context, id string, next time.Time) error
	}

	AccountReader interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	// TransactionMirror keeps an external copy, such as a spreadsheet, in sync.
	TransactionMirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		RemoveTransactions(ctx context.Context, ids []string) error
	}

	// EventPublisher announces store changes to other processes.
	EventPublisher interface {
		PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
		PublishTransactionsDeleted(ctx context.Context, ids []string) error
	}
)
