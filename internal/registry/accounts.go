package registry

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Accounts is a snapshot of the account list indexed by id.
type Accounts struct {
	list []core.Account
	byID map[string]core.Account
}

func NewAccounts(accounts []core.Account) *Accounts {
	a := &Accounts{list: accounts, byID: make(map[string]core.Account, len(accounts))}
	for _, acc := range accounts {
		a.byID[acc.ID] = acc
	}
	return a
}

// LoadAccounts snapshots the accounts exposed by r.
func LoadAccounts(ctx context.Context, r ports.AccountReader) (*Accounts, error) {
	list, err := r.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return NewAccounts(list), nil
}

func (a *Accounts) Lookup(id string) (core.Account, bool) {
	acc, ok := a.byID[id]
	return acc, ok
}

// NameOf returns the account name, or the id for unknown accounts.
func (a *Accounts) NameOf(id string) string {
	if acc, ok := a.byID[id]; ok {
		return acc.Name
	}
	return id
}

func (a *Accounts) All() []core.Account {
	return a.list
}

func (a *Accounts) Default() (core.Account, bool) {
	return core.DefaultAccount(a.list)
}
