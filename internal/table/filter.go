package table

import (
	"strings"

	"fintrack/internal/core"
)

const (
	RecurringAll  RecurringFilter = ""
	RecurringOnly RecurringFilter = "recurring"
	OneTimeOnly   RecurringFilter = "non-recurring"
)

type RecurringFilter string

func (f RecurringFilter) valid() bool {
	return f == RecurringAll || f == RecurringOnly || f == OneTimeOnly
}

// Filter combines the table predicates. Zero values match everything.
type Filter struct {
	Search    string
	Type      core.TransactionType
	Recurring RecurringFilter
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether tx passes every active predicate.
func (f Filter) Match(tx core.Transaction) bool {
	return f.matchSearch(tx) && f.matchType(tx) && f.matchRecurring(tx)
}

func (f Filter) matchSearch(tx core.Transaction) bool {
	if f.Search == "" {
		return true
	}
	if tx.Description == "" {
		return false
	}
	return strings.Contains(strings.ToLower(tx.Description), strings.ToLower(f.Search))
}

func (f Filter) matchType(tx core.Transaction) bool {
	return f.Type == "" || tx.Type == f.Type
}

func (f Filter) matchRecurring(tx core.Transaction) bool {
	switch f.Recurring {
	case RecurringOnly:
		return tx.IsRecurring
	case OneTimeOnly:
		return !tx.IsRecurring
	}
	return true
}
