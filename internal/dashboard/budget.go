package dashboard

import "github.com/shopspring/decimal"

const (
	BudgetOK      BudgetStatus = "ok"
	BudgetWarning BudgetStatus = "warning"
	BudgetDanger  BudgetStatus = "danger"
)

type BudgetStatus string

var (
	warningThreshold = decimal.NewFromInt(75)
	dangerThreshold  = decimal.NewFromInt(90)
	hundred          = decimal.NewFromInt(100)
)

type BudgetProgress struct {
	Budget      decimal.Decimal
	HasBudget   bool
	Spent       decimal.Decimal
	PercentUsed decimal.Decimal
	Status      BudgetStatus
}

// Progress computes spent/budget*100. A zero or negative budget means no
// budget is set and the percentage is 0.
func Progress(budget, spent decimal.Decimal) BudgetProgress {
	p := BudgetProgress{
		Budget:      budget,
		Spent:       spent,
		PercentUsed: decimal.Zero,
		Status:      BudgetOK,
	}
	if !budget.IsPositive() {
		return p
	}
	p.HasBudget = true
	p.PercentUsed = spent.Div(budget).Mul(hundred)

	switch {
	case p.PercentUsed.GreaterThanOrEqual(dangerThreshold):
		p.Status = BudgetDanger
	case p.PercentUsed.GreaterThanOrEqual(warningThreshold):
		p.Status = BudgetWarning
	}
	return p
}

// BarPercent clamps the percentage to [0, 100] for the progress bar width.
func (p BudgetProgress) BarPercent() int {
	pct := p.PercentUsed.IntPart()
	return int(min(max(pct, 0), 100))
}

// Remaining is the budget left, negative when overspent.
func (p BudgetProgress) Remaining() decimal.Decimal {
	return p.Budget.Sub(p.Spent)
}
