package backend

import (
	"context"

	"fintrack/internal/ports"
)

// Store is everything the server and the recurring worker need from a
// transaction backend.
type Store interface {
	ports.TransactionLister
	ports.TransactionWriter
	ports.TransactionDeleter
	ports.RecurringStore
	ports.AccountReader
	Ping(ctx context.Context) error
}

type CleanupFunc func() error

// BackendResult contains the store, the optional event publisher and a
// cleanup function that releases both.
type BackendResult struct {
	Store     Store
	Publisher ports.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific
	SeedFile string

	// Event publishing, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
