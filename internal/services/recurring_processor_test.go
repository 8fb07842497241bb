package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/memory"
)

func recurring(interval core.RecurringInterval, next time.Time) core.Transaction {
	tx := expense(25)
	tx.Description = "Gym"
	tx.IsRecurring = true
	tx.RecurringInterval = interval
	tx.NextRecurringDate = &next
	return tx
}

func TestRecurringProcessor_ProcessDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	store := memory.New(memory.Seed{})

	dueID, err := store.CreateTransaction(ctx, recurring(core.Monthly, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, recurring(core.Weekly, now.Add(time.Hour)))
	require.NoError(t, err)

	p := NewRecurringProcessor(store, NewTransactionService(store, nil), core.FixedClock{T: now})
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs, _ := store.ListTransactions(ctx, "")
	require.Len(t, txs, 3)

	var copies []core.Transaction
	for _, tx := range txs {
		if tx.ID == dueID {
			require.NotNil(t, tx.NextRecurringDate)
			assert.True(t, tx.NextRecurringDate.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
		}
		if !tx.IsRecurring {
			copies = append(copies, tx)
		}
	}
	require.Len(t, copies, 1)
	assert.Equal(t, "Gym", copies[0].Description)
	assert.True(t, copies[0].Date.Equal(now))
	assert.True(t, copies[0].IsOneTime())

	// nothing due on a second run
	n, err = p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecurringProcessor_CollapsesMissedPeriods(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	store := memory.New(memory.Seed{})
	id, _ := store.CreateTransaction(ctx, recurring(core.Weekly, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	p := NewRecurringProcessor(store, NewTransactionService(store, nil), core.FixedClock{T: now})
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs, _ := store.ListTransactions(ctx, "")
	assert.Len(t, txs, 2)
	for _, tx := range txs {
		if tx.ID == id {
			assert.True(t, tx.NextRecurringDate.After(now))
			assert.True(t, tx.NextRecurringDate.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
		}
	}
}

type failingWriter struct{}

func (failingWriter) CreateTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("write failed")
}

func TestRecurringProcessor_WriterFailureLeavesTemplateDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	store := memory.New(memory.Seed{})
	store.CreateTransaction(ctx, recurring(core.Daily, now.Add(-time.Hour)))

	p := NewRecurringProcessor(store, failingWriter{}, core.FixedClock{T: now})
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	due, _ := store.ListDueRecurring(ctx, now)
	assert.Len(t, due, 1)
}

func TestRecurringProcessor_NotInitialized(t *testing.T) {
	_, err := NewRecurringProcessor(nil, nil, nil).ProcessDue(context.Background())
	assert.Error(t, err)
}
