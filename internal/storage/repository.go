package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored dates sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const transactionColumns = `id, account_id, date, amount, type, category, description,
	is_recurring, recurring_interval, next_recurring_date`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under concurrent deletes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements ports.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context, accountID string) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date DESC`

	return r.queryTransactions(ctx, query, args...)
}

// CreateTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	var interval, next sql.NullString
	if tx.IsRecurring {
		interval = sql.NullString{String: string(tx.RecurringInterval), Valid: true}
		next = sql.NullString{String: formatTime(*tx.NextRecurringDate), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.AccountID, formatTime(tx.Date), tx.Amount.String(), string(tx.Type),
		tx.Category, tx.Description, tx.IsRecurring, interval, next)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", tx.ID,
		"account_id", tx.AccountID,
		"type", tx.Type,
		"amount", tx.Amount.String())

	return tx.ID, nil
}

// DeleteTransactions implements ports.TransactionDeleter. Either every id is
// removed or none is.
func (r *SQLiteRepository) DeleteTransactions(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	for _, id := range ids {
		res, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transactions deleted from SQLite", "transaction_count", len(ids))
	return nil
}

// ListDueRecurring implements ports.RecurringStore
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE is_recurring = 1 AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?
		ORDER BY next_recurring_date`, formatTime(now))
}

// AdvanceRecurring implements ports.RecurringStore
func (r *SQLiteRepository) AdvanceRecurring(ctx context.Context, id string, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET next_recurring_date = ? WHERE id = ? AND is_recurring = 1`,
		formatTime(next), id)
	if err != nil {
		return fmt.Errorf("advance recurring %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("advance recurring %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListAccounts implements ports.AccountReader
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, balance, is_default FROM accounts ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a       core.Account
			typ     string
			balance string
		)
		if err := rows.Scan(&a.ID, &a.Name, &typ, &balance, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.Balance = core.ParseAmountLenient(balance)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAccount adds or replaces an account row. Used when seeding.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("account id required")
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO accounts (id, name, type, balance, is_default)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type,
			balance = excluded.balance, is_default = excluded.is_default`,
		a.ID, a.Name, string(a.Type), a.Balance.String(), a.IsDefault)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", a.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tx             core.Transaction
		date, amount   string
		typ            string
		interval, next sql.NullString
	)
	if err := rows.Scan(&tx.ID, &tx.AccountID, &date, &amount, &typ, &tx.Category,
		&tx.Description, &tx.IsRecurring, &interval, &next); err != nil {
		return tx, fmt.Errorf("scan transaction: %w", err)
	}

	d, err := time.Parse(timeLayout, date)
	if err != nil {
		return tx, fmt.Errorf("parse date of %s: %w", tx.ID, err)
	}
	tx.Date = d
	tx.Amount = core.ParseAmountLenient(amount)
	tx.Type = core.TransactionType(typ)

	if interval.Valid {
		tx.RecurringInterval = core.RecurringInterval(interval.String)
	}
	if next.Valid {
		n, err := time.Parse(timeLayout, next.String)
		if err != nil {
			return tx, fmt.Errorf("parse next recurring date of %s: %w", tx.ID, err)
		}
		tx.NextRecurringDate = &n
	}
	return tx, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
