package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Dashboard is everything the landing page renders.
type Dashboard struct {
	Accounts []core.Account
	Overview Overview
	Budget   BudgetProgress
}

// Service loads accounts and transactions concurrently and summarizes them.
type Service struct {
	accounts     ports.AccountReader
	transactions ports.TransactionLister
	clock        core.Clock
	budget       decimal.Decimal
}

func NewService(accounts ports.AccountReader, transactions ports.TransactionLister, clock core.Clock, monthlyBudget decimal.Decimal) *Service {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		clock:        clock,
		budget:       monthlyBudget,
	}
}

// Load builds the dashboard for selectedAccountID, falling back to the
// default account.
func (s *Service) Load(ctx context.Context, selectedAccountID string) (Dashboard, error) {
	var (
		accounts []core.Account
		txs      []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListTransactions(gctx, "")
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.clock.Now()
	d := Dashboard{
		Accounts: accounts,
		Overview: BuildOverview(accounts, txs, selectedAccountID, now),
	}

	spent := decimal.Zero
	if def, ok := core.DefaultAccount(accounts); ok {
		spent = MonthExpenses(txs, def.ID, now)
	}
	d.Budget = Progress(s.budget, spent)
	return d, nil
}
