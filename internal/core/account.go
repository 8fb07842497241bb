package core

import "github.com/shopspring/decimal"

const (
	Current AccountType = "CURRENT"
	Savings AccountType = "SAVINGS"
)

type AccountType string

// Account is a read-only registry entry. Balances are owned upstream.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"isDefault"`
}

// DefaultAccount returns the account flagged as default, falling back to the
// first one. ok is false for an empty list.
func DefaultAccount(accounts []Account) (Account, bool) {
	if len(accounts) == 0 {
		return Account{}, false
	}
	for _, a := range accounts {
		if a.IsDefault {
			return a, true
		}
	}
	return accounts[0], true
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}
