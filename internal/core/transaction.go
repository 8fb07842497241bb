package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	Daily   RecurringInterval = "DAILY"
	Weekly  RecurringInterval = "WEEKLY"
	Monthly RecurringInterval = "MONTHLY"
	Yearly  RecurringInterval = "YEARLY"
)

type (
	TransactionType string

	RecurringInterval string

	Transaction struct {
		ID                string            `json:"id"`
		Date              time.Time         `json:"date"`
		Amount            decimal.Decimal   `json:"amount"`
		Type              TransactionType   `json:"type"`
		Category          string            `json:"category"`
		Description       string            `json:"description,omitempty"`
		IsRecurring       bool              `json:"isRecurring"`
		RecurringInterval RecurringInterval `json:"recurringInterval,omitempty"`
		NextRecurringDate *time.Time        `json:"nextRecurringDate,omitempty"`
		AccountID         string            `json:"accountId"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidInterval    = errors.New("invalid recurring interval")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyAccount       = errors.New("empty account id")
	ErrRecurringMismatch  = errors.New("recurring interval and next date must be set only for recurring transactions")
	ErrDescriptionTooLong = errors.New("description too long")
)

// IsIncome reports whether t is INCOME. Any other value, including unknown
// ones, is treated as an expense by the aggregation code.
func (t TransactionType) IsIncome() bool {
	return t == Income
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType parses a type filter or form value, case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (ri RecurringInterval) Valid() bool {
	switch ri {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Label returns the human readable interval name used by the table badges.
func (ri RecurringInterval) Label() string {
	switch ri {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	case Yearly:
		return "Yearly"
	}
	return "One-time"
}

// ParseRecurringInterval parses an interval name, case-insensitively.
func ParseRecurringInterval(s string) (RecurringInterval, error) {
	ri := RecurringInterval(strings.ToUpper(strings.TrimSpace(s)))
	if !ri.Valid() {
		return "", ErrInvalidInterval
	}
	return ri, nil
}

// IsOneTime reports whether the transaction should be rendered as a one-time
// entry. Missing recurrence details count as one-time even when the flag is set.
func (t Transaction) IsOneTime() bool {
	return !t.IsRecurring || t.RecurringInterval == "" || t.NextRecurringDate == nil
}

// Validate checks a transaction before it is written.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccount
	}
	if len(t.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}

	if t.IsRecurring {
		if !t.RecurringInterval.Valid() {
			return ErrInvalidInterval
		}
		if t.NextRecurringDate == nil {
			return ErrRecurringMismatch
		}
	} else if t.RecurringInterval != "" || t.NextRecurringDate != nil {
		return ErrRecurringMismatch
	}

	return nil
}

// UnmarshalJSON decodes a transaction leniently: an amount that is missing,
// null or not a number decodes as zero instead of failing the whole payload.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		Amount json.RawMessage `json:"amount"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Amount = ParseAmountLenient(strings.Trim(string(aux.Amount), `"`))
	return nil
}

// ErrNotFound is returned by stores when an id does not exist.
// MaxDescriptionLen bounds Description in bytes.
const MaxDescriptionLen = 200

var ErrNotFound = errors.New("transaction not found")
