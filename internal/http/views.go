package http

import (
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	"fintrack/internal/registry"
	"fintrack/internal/table"
)

// Template data for the pages and partials under web/templates.

type tableRow struct {
	ID          string
	Date        time.Time
	Description string
	Category    string
	Type        core.TransactionType
	Income      bool
	Amount      decimal.Decimal
	Interval    string
	Recurring   bool
	Selected    bool
}

type tableView struct {
	AccountID string
	Rows      []tableRow
	Page      table.Page

	SortField  string
	SortDir    string
	Search     string
	Type       string
	Recurring  string
	HasFilters bool

	SelectedCount int
	SelectAll     bool
	PageSelected  bool
	Pending       bool

	// Query strings for links that keep the rest of the state.
	Query            string
	PrevQuery        string
	NextQuery        string
	TypeOptions      []linkOption
	RecurringOptions []linkOption
}

var (
	typeOptions = []struct {
		label string
		value core.TransactionType
	}{{"All", ""}, {"Income", core.Income}, {"Expense", core.Expense}}

	recurringOptions = []struct {
		label string
		value table.RecurringFilter
	}{{"Any", table.RecurringAll}, {"Recurring", table.RecurringOnly}, {"One-time", table.OneTimeOnly}}
)

func newTableView(accountID string, v *table.View) tableView {
	page := v.Page()
	st := v.State()

	tv := tableView{
		AccountID:     accountID,
		Page:          page,
		SortField:     string(st.Sort.Field),
		SortDir:       string(st.Sort.Direction),
		Search:        st.Filter.Search,
		Type:          string(st.Filter.Type),
		Recurring:     string(st.Filter.Recurring),
		HasFilters:    !st.Filter.IsZero(),
		SelectedCount: v.SelectedCount(),
		SelectAll:     v.SelectAllMatching(),
		PageSelected:  v.PageSelected(),
		Pending:       v.Pending(),
		Query:         tableQuery(accountID, st),
	}

	if page.HasPrev() {
		prev := st
		prev.Page = page.Number - 1
		tv.PrevQuery = tableQuery(accountID, prev)
	}
	if page.HasNext() {
		next := st
		next.Page = page.Number + 1
		tv.NextQuery = tableQuery(accountID, next)
	}

	// filter links start over on the first page
	for _, o := range typeOptions {
		next := st
		next.Page = 1
		next.Filter.Type = o.value
		tv.TypeOptions = append(tv.TypeOptions, linkOption{Label: o.label, Query: tableQuery(accountID, next), Active: st.Filter.Type == o.value})
	}
	for _, o := range recurringOptions {
		next := st
		next.Page = 1
		next.Filter.Recurring = o.value
		tv.RecurringOptions = append(tv.RecurringOptions, linkOption{Label: o.label, Query: tableQuery(accountID, next), Active: st.Filter.Recurring == o.value})
	}

	tv.Rows = make([]tableRow, 0, len(page.Rows))
	for _, tx := range page.Rows {
		tv.Rows = append(tv.Rows, tableRow{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Category:    tx.Category,
			Type:        tx.Type,
			Income:      tx.Type.IsIncome(),
			Amount:      tx.Amount,
			Interval:    tx.RecurringInterval.Label(),
			Recurring:   !tx.IsOneTime(),
			Selected:    v.IsSelected(tx.ID),
		})
	}
	return tv
}

func tableQuery(accountID string, st table.State) string {
	v := st.Encode()
	v.Set("account", accountID)
	return v.Encode()
}

type chartBar struct {
	Label         string
	Income        decimal.Decimal
	Expense       decimal.Decimal
	IncomeHeight  int
	ExpenseHeight int
}

type linkOption struct {
	Label  string
	Query  string
	Active bool
}

type chartView struct {
	Params        ChartParams
	Query         string
	Ranges        []linkOption
	Granularities []linkOption
	IncomeToggle  string
	ExpenseToggle string

	Bars        []chartBar
	Totals      chart.Totals
	Average     chart.Totals
	Net         decimal.Decimal
	NetNegative bool
	Empty       bool
}

// minBarHeight keeps tiny non-zero buckets visible.
const minBarHeight = 2

func newChartView(p ChartParams, res chart.Result) chartView {
	cv := chartView{
		Params:      p,
		Query:       p.Query().Encode(),
		Totals:      res.Totals,
		Average:     res.Average,
		Net:         res.Totals.Net(),
		NetNegative: res.Totals.Net().IsNegative(),
		Empty:       res.Empty(),
	}

	for _, preset := range chart.Presets {
		q := p
		q.Range = preset
		cv.Ranges = append(cv.Ranges, linkOption{Label: preset.Label(), Query: q.Query().Encode(), Active: preset == p.Range})
	}
	for _, g := range chart.Granularities {
		q := p
		q.Granularity = g
		cv.Granularities = append(cv.Granularities, linkOption{Label: g.Label(), Query: q.Query().Encode(), Active: g == p.Granularity})
	}
	toggled := p
	toggled.ShowIncome = !p.ShowIncome
	cv.IncomeToggle = toggled.Query().Encode()
	toggled = p
	toggled.ShowExpense = !p.ShowExpense
	cv.ExpenseToggle = toggled.Query().Encode()

	peak := decimal.Zero
	for _, b := range res.Buckets {
		if p.ShowIncome {
			peak = decimal.Max(peak, b.Income)
		}
		if p.ShowExpense {
			peak = decimal.Max(peak, b.Expense)
		}
	}
	for _, b := range res.Buckets {
		bar := chartBar{Label: b.Label, Income: b.Income, Expense: b.Expense}
		if p.ShowIncome {
			bar.IncomeHeight = barHeight(b.Income, peak)
		}
		if p.ShowExpense {
			bar.ExpenseHeight = barHeight(b.Expense, peak)
		}
		cv.Bars = append(cv.Bars, bar)
	}
	return cv
}

// barHeight scales v against peak to a 0..100 percentage.
func barHeight(v, peak decimal.Decimal) int {
	if !v.IsPositive() || !peak.IsPositive() {
		return 0
	}
	h := int(v.Mul(decimal.NewFromInt(100)).Div(peak).Round(0).IntPart())
	return min(max(h, minBarHeight), 100)
}

// chartResponse is the JSON shape of /api/chart.
type chartResponse struct {
	chart.Result
	Preset  chart.Preset    `json:"range"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Net     decimal.Decimal `json:"net"`
	IsEmpty bool            `json:"empty"`
}

// transactionsResponse is the JSON shape of /api/transactions.
type transactionsResponse struct {
	Account       string             `json:"account"`
	Rows          []core.Transaction `json:"rows"`
	Page          int                `json:"page"`
	TotalPages    int                `json:"totalPages"`
	TotalMatching int                `json:"totalMatching"`
	PageSize      int                `json:"pageSize"`
	Query         string             `json:"query"`
}

type formView struct {
	Accounts          []core.Account
	SelectedAccount   string
	IncomeCategories  []registry.Category
	ExpenseCategories []registry.Category
	Intervals         []core.RecurringInterval
	Today             string
}

func (s *Server) newFormView(accounts []core.Account, selected string) formView {
	return formView{
		Accounts:          accounts,
		SelectedAccount:   selected,
		IncomeCategories:  s.categories.ForType(core.Income),
		ExpenseCategories: s.categories.ForType(core.Expense),
		Intervals:         []core.RecurringInterval{core.Daily, core.Weekly, core.Monthly, core.Yearly},
		Today:             s.clock.Now().In(s.opts.Location).Format(dateInputLayout),
	}
}

type dashboardView struct {
	Accounts []core.Account
	Overview dashboard.Overview
	Budget   dashboard.BudgetProgress
	Form     formView
}

type accountView struct {
	Account    core.Account
	Accounts   []core.Account
	TableQuery string
	ChartQuery string
	Form       formView
}

func chartQueryFor(accountID string) string {
	p := ChartParams{AccountID: accountID, Range: DefaultChartRange, Granularity: DefaultChartGranularity, ShowIncome: true, ShowExpense: true}
	return p.Query().Encode()
}

// accountTableQuery carries the page URL's table state into the partial.
func accountTableQuery(accountID string, q url.Values) string {
	return tableQuery(accountID, table.DecodeState(q))
}
