// Package chart buckets transactions by time unit and computes income and
// expense totals for the account chart.
package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Totals holds an income/expense pair.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

type Bucket struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Timestamp time.Time       `json:"timestamp"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
}

// Result is the output of one aggregation. Buckets are ascending by
// Timestamp and only exist for time units that had transactions.
type Result struct {
	Granularity Granularity `json:"granularity"`
	Range       DateRange   `json:"-"`
	Buckets     []Bucket    `json:"buckets"`
	Totals      Totals      `json:"totals"`
	Average     Totals      `json:"average"`
}

func (r Result) Empty() bool {
	return len(r.Buckets) == 0
}

// Aggregator normalizes dates in a fixed location and optionally memoizes
// results keyed on the full input.
type Aggregator struct {
	loc   *time.Location
	cache cache.Cache[Result]
}

type Option func(*Aggregator)

func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

func WithCache(c cache.Cache[Result]) Option {
	return func(a *Aggregator) { a.cache = c }
}

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{loc: time.UTC}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate buckets every transaction in rng by g using UTC.
func Aggregate(txs []core.Transaction, rng DateRange, g Granularity) Result {
	return NewAggregator().Aggregate(txs, rng, g)
}

func (a *Aggregator) Aggregate(txs []core.Transaction, rng DateRange, g Granularity) Result {
	if a.cache == nil {
		return a.compute(txs, rng, g)
	}
	key := a.cacheKey(txs, rng, g)
	if res, ok := a.cache.Get(key); ok {
		return res
	}
	res := a.compute(txs, rng, g)
	a.cache.Set(key, res)
	return res
}

func (a *Aggregator) compute(txs []core.Transaction, rng DateRange, g Granularity) Result {
	res := Result{
		Granularity: g,
		Range:       rng,
		Buckets:     []Bucket{},
		Totals:      Totals{Income: decimal.Zero, Expense: decimal.Zero},
		Average:     Totals{Income: decimal.Zero, Expense: decimal.Zero},
	}

	index := make(map[string]int)
	for _, tx := range txs {
		if !rng.Contains(tx.Date) {
			continue
		}
		b := g.boundary(tx.Date.In(a.loc))
		key := g.key(b)
		i, ok := index[key]
		if !ok {
			i = len(res.Buckets)
			index[key] = i
			res.Buckets = append(res.Buckets, Bucket{
				Key:       key,
				Label:     g.label(b),
				Timestamp: b,
				Income:    decimal.Zero,
				Expense:   decimal.Zero,
			})
		}
		if tx.Type.IsIncome() {
			res.Buckets[i].Income = res.Buckets[i].Income.Add(tx.Amount)
			res.Totals.Income = res.Totals.Income.Add(tx.Amount)
		} else {
			res.Buckets[i].Expense = res.Buckets[i].Expense.Add(tx.Amount)
			res.Totals.Expense = res.Totals.Expense.Add(tx.Amount)
		}
	}

	slices.SortFunc(res.Buckets, func(x, y Bucket) int {
		return x.Timestamp.Compare(y.Timestamp)
	})

	n := decimal.NewFromInt(int64(max(1, len(res.Buckets))))
	res.Average.Income = res.Totals.Income.Div(n)
	res.Average.Expense = res.Totals.Expense.Div(n)
	return res
}

func (a *Aggregator) cacheKey(txs []core.Transaction, rng DateRange, g Granularity) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d|", g, a.loc, rng.Start.UnixNano(), rng.End.UnixNano())
	for _, tx := range txs {
		fmt.Fprintf(h, "%s;%d;%s;%s\n", tx.ID, tx.Date.UnixNano(), tx.Amount.String(), tx.Type)
	}
	return hex.EncodeToString(h.Sum(nil))
}
