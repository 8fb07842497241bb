package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Seed is the on-disk format read by NewFromFile.
type Seed struct {
	Accounts     []core.Account     `json:"accounts"`
	Transactions []core.Transaction `json:"transactions"`
}

// Store keeps accounts and transactions in process memory.
type Store struct {
	mu       sync.Mutex
	accounts []core.Account
	items    []core.Transaction
}

func New(seed Seed) *Store {
	accounts := seed.Accounts
	if len(accounts) == 0 {
		accounts = DefaultAccounts()
	}
	return &Store{
		accounts: slices.Clone(accounts),
		items:    slices.Clone(seed.Transactions),
	}
}

// DefaultAccounts is used when the seed does not define any.
func DefaultAccounts() []core.Account {
	return []core.Account{{ID: "main", Name: "Main Account", Type: core.Current, IsDefault: true}}
}

// NewFromFile loads a JSON seed. A missing file yields an empty store with the
// default account.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(Seed{}), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(Seed{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(seed), nil
}

// ListTransactions implements ports.TransactionLister.
func (s *Store) ListTransactions(_ context.Context, accountID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if accountID == "" || tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// CreateTransaction implements ports.TransactionWriter.
func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.items = append(s.items, tx)
	return tx.ID, nil
}

// DeleteTransactions implements ports.TransactionDeleter. Unknown ids fail
// the whole call and nothing is removed.
func (s *Store) DeleteTransactions(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !slices.ContainsFunc(s.items, func(tx core.Transaction) bool { return tx.ID == id }) {
			return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
		}
		drop[id] = struct{}{}
	}
	s.items = slices.DeleteFunc(s.items, func(tx core.Transaction) bool {
		_, ok := drop[tx.ID]
		return ok
	})
	return nil
}

// ListDueRecurring implements ports.RecurringStore.
func (s *Store) ListDueRecurring(_ context.Context, now time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.items {
		if !tx.IsOneTime() && !tx.NextRecurringDate.After(now) {
			out = append(out, tx)
		}
	}
	slices.SortFunc(out, func(a, b core.Transaction) int {
		return cmp.Compare(a.NextRecurringDate.UnixNano(), b.NextRecurringDate.UnixNano())
	})
	return out, nil
}

// AdvanceRecurring implements ports.RecurringStore.
func (s *Store) AdvanceRecurring(_ context.Context, id string, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.items, func(tx core.Transaction) bool { return tx.ID == id })
	if i < 0 {
		return fmt.Errorf("advance %s: %w", id, core.ErrNotFound)
	}
	s.items[i].NextRecurringDate = &next
	return nil
}

// ListAccounts implements ports.AccountReader.
func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.accounts), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
