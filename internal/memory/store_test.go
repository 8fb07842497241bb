package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newTx(account string, amount int64) core.Transaction {
	return core.Transaction{
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(amount),
		Type:      core.Expense,
		Category:  "other",
		AccountID: account,
	}
}

func TestMemoryStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})

	id, err := s.CreateTransaction(ctx, newTx("main", 10))
	if err != nil || id == "" {
		t.Fatalf("unexpected create: id=%q err=%v", id, err)
	}
	if _, err := s.CreateTransaction(ctx, newTx("other", 5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateTransaction(ctx, newTx("main", 0)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected validation error, got %v", err)
	}

	all, _ := s.ListTransactions(ctx, "")
	main, _ := s.ListTransactions(ctx, "main")
	if len(all) != 2 || len(main) != 1 || main[0].ID != id {
		t.Fatalf("unexpected lists: all=%d main=%v", len(all), main)
	}

	accounts, _ := s.ListAccounts(ctx)
	if len(accounts) != 1 || !accounts[0].IsDefault {
		t.Fatalf("expected default account, got %+v", accounts)
	}
}

func TestMemoryStoreDeleteIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})
	a, _ := s.CreateTransaction(ctx, newTx("main", 1))
	b, _ := s.CreateTransaction(ctx, newTx("main", 2))

	if err := s.DeleteTransactions(ctx, []string{a, "missing"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if all, _ := s.ListTransactions(ctx, ""); len(all) != 2 {
		t.Fatalf("nothing should be deleted, have %d", len(all))
	}

	if err := s.DeleteTransactions(ctx, []string{a, b}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if all, _ := s.ListTransactions(ctx, ""); len(all) != 0 {
		t.Fatalf("expected empty store, have %d", len(all))
	}
}

func TestMemoryStoreRecurring(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	later := now.Add(time.Hour)

	rec := func(next time.Time) core.Transaction {
		tx := newTx("main", 10)
		tx.IsRecurring = true
		tx.RecurringInterval = core.Monthly
		tx.NextRecurringDate = &next
		return tx
	}
	s := New(Seed{})
	dueID, _ := s.CreateTransaction(ctx, rec(due))
	s.CreateTransaction(ctx, rec(later))
	s.CreateTransaction(ctx, newTx("main", 3))

	list, err := s.ListDueRecurring(ctx, now)
	if err != nil || len(list) != 1 || list[0].ID != dueID {
		t.Fatalf("unexpected due list: %v %v", list, err)
	}

	next := now.AddDate(0, 1, 0)
	if err := s.AdvanceRecurring(ctx, dueID, next); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if list, _ := s.ListDueRecurring(ctx, now); len(list) != 0 {
		t.Fatalf("expected nothing due, got %d", len(list))
	}
	if err := s.AdvanceRecurring(ctx, "missing", next); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if accs, _ := s.ListAccounts(context.Background()); len(accs) != 1 {
		t.Fatalf("expected default account")
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{
		"accounts": [{"id": "a1", "name": "Wallet", "type": "CURRENT", "balance": "10", "isDefault": true}],
		"transactions": [
			{"id": "t1", "date": "2024-01-05T10:00:00Z", "amount": 12.5, "type": "EXPENSE", "category": "groceries", "accountId": "a1"},
			{"id": "t2", "date": "2024-01-06T10:00:00Z", "amount": "oops", "type": "INCOME", "category": "salary", "accountId": "a1"}
		]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background(), "a1")
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if !txs[1].Amount.IsZero() {
		t.Fatalf("unparsable amount should load as zero, got %s", txs[1].Amount)
	}

	if err := os.WriteFile(path, []byte(`{"transactions": [{"date": "not a date"}]}`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected invalid dates to fail the whole seed")
	}
}
