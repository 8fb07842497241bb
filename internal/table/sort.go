package table

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

type (
	SortField     string
	SortDirection string
)

func (f SortField) valid() bool {
	return f == SortByDate || f == SortByAmount || f == SortByCategory
}

func (d SortDirection) valid() bool {
	return d == Asc || d == Desc
}

type Sort struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort shows the newest transactions first.
var DefaultSort = Sort{Field: SortByDate, Direction: Desc}

// Toggle returns the sort after clicking field's header: descending when the
// field is currently ascending, ascending otherwise.
func (s Sort) Toggle(field SortField) Sort {
	if s.Field == field && s.Direction == Asc {
		return Sort{Field: field, Direction: Desc}
	}
	return Sort{Field: field, Direction: Asc}
}

// Apply sorts txs in place. Equal keys keep their input order.
func (s Sort) Apply(txs []core.Transaction) {
	var cmp func(a, b core.Transaction) int
	switch s.Field {
	case SortByAmount:
		cmp = func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortByCategory:
		// collators keep internal buffers, so one per call
		col := collate.New(language.English)
		cmp = func(a, b core.Transaction) int { return col.CompareString(a.Category, b.Category) }
	default:
		cmp = func(a, b core.Transaction) int { return a.Date.Compare(b.Date) }
	}

	if s.Direction == Desc {
		slices.SortStableFunc(txs, func(a, b core.Transaction) int { return -cmp(a, b) })
		return
	}
	slices.SortStableFunc(txs, cmp)
}
