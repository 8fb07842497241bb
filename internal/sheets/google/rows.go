package google

import (
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

func transactionRow(tx core.Transaction) []any {
	recurring := "One-time"
	if !tx.IsOneTime() {
		recurring = tx.RecurringInterval.Label()
	}
	return []any{
		tx.Date.Format(dateLayout),
		string(tx.Type),
		tx.Category,
		tx.Description,
		tx.Amount.StringFixed(2),
		tx.AccountID,
		recurring,
		tx.ID,
	}
}

// rowsToDelete returns the zero-based row indexes whose first cell is one of
// ids, highest first.
func rowsToDelete(values [][]any, ids []string) []int64 {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var rows []int64
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if _, ok := want[v]; ok {
			rows = append(rows, int64(i))
		}
	}
	slices.Reverse(rows)
	return rows
}
