// Package dashboard builds the landing page summaries: recent activity and
// the current month's spending against the budget.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// RecentLimit is the number of transactions shown in the overview.
const RecentLimit = 5

// Overview summarizes one account for the dashboard.
type Overview struct {
	Account    core.Account
	HasAccount bool
	Recent     []core.Transaction
	// Breakdown holds this month's expenses per category, largest first.
	Breakdown     []core.CategoryAmount
	MonthExpenses decimal.Decimal
	Month         time.Time
}

// BuildOverview summarizes the account selectedID, or the default account when
// selectedID is empty or unknown. now is interpreted in its own location.
func BuildOverview(accounts []core.Account, txs []core.Transaction, selectedID string, now time.Time) Overview {
	ov := Overview{MonthExpenses: decimal.Zero, Month: core.StartOfMonth(now)}

	acc, ok := findAccount(accounts, selectedID)
	if !ok {
		acc, ok = core.DefaultAccount(accounts)
	}
	if !ok {
		return ov
	}
	ov.Account, ov.HasAccount = acc, true

	var own []core.Transaction
	for _, tx := range txs {
		if tx.AccountID == acc.ID {
			own = append(own, tx)
		}
	}

	recent := slices.Clone(own)
	slices.SortStableFunc(recent, func(a, b core.Transaction) int { return b.Date.Compare(a.Date) })
	ov.Recent = recent[:min(RecentLimit, len(recent))]

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range own {
		if !inMonth(tx.Date, now) || tx.Type != core.Expense {
			continue
		}
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		ov.MonthExpenses = ov.MonthExpenses.Add(tx.Amount)
	}
	for cat, amount := range byCategory {
		ov.Breakdown = append(ov.Breakdown, core.CategoryAmount{Category: cat, Amount: amount})
	}
	slices.SortFunc(ov.Breakdown, func(a, b core.CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	return ov
}

// MonthExpenses sums the EXPENSE transactions of accountID in now's month.
func MonthExpenses(txs []core.Transaction, accountID string, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.AccountID == accountID && tx.Type == core.Expense && inMonth(tx.Date, now) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

func inMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

func findAccount(accounts []core.Account, id string) (core.Account, bool) {
	if id == "" {
		return core.Account{}, false
	}
	i := slices.IndexFunc(accounts, func(a core.Account) bool { return a.ID == id })
	if i < 0 {
		return core.Account{}, false
	}
	return accounts[i], true
}
