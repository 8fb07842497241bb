package chart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

func tx(id string, date time.Time, amount int64, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		ID:        id,
		Date:      date,
		Amount:    decimal.NewFromInt(amount),
		Type:      typ,
		Category:  "other",
		AccountID: "acc",
	}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateMonthlyScenario(t *testing.T) {
	txs := []core.Transaction{
		tx("a", day(2024, time.January, 5, 9), 100, core.Expense),
		tx("b", day(2024, time.January, 5, 12), 200, core.Income),
		tx("c", day(2024, time.February, 10, 8), 50, core.Expense),
	}

	res := Aggregate(txs, DateRange{}, Monthly)

	require.Len(t, res.Buckets, 2)
	assert.Equal(t, "2024-01", res.Buckets[0].Key)
	assert.Equal(t, "Jan 2024", res.Buckets[0].Label)
	assert.True(t, res.Buckets[0].Income.Equal(dec("200")))
	assert.True(t, res.Buckets[0].Expense.Equal(dec("100")))
	assert.Equal(t, "2024-02", res.Buckets[1].Key)
	assert.True(t, res.Buckets[1].Income.IsZero())
	assert.True(t, res.Buckets[1].Expense.Equal(dec("50")))

	assert.True(t, res.Totals.Income.Equal(dec("200")))
	assert.True(t, res.Totals.Expense.Equal(dec("150")))
	assert.True(t, res.Average.Income.Equal(dec("100")))
	assert.True(t, res.Average.Expense.Equal(dec("75")))
	assert.True(t, res.Totals.Net().Equal(dec("50")))
	assert.False(t, res.Empty())
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil, DateRange{}, Daily)

	assert.True(t, res.Empty())
	assert.NotNil(t, res.Buckets)
	assert.True(t, res.Totals.Income.IsZero())
	assert.True(t, res.Totals.Expense.IsZero())
	assert.True(t, res.Average.Income.IsZero())
	assert.True(t, res.Average.Expense.IsZero())
}

func TestAggregateCoverageAndOrdering(t *testing.T) {
	txs := []core.Transaction{
		tx("1", day(2024, time.March, 10, 23), 5, core.Expense),
		tx("2", day(2024, time.March, 1, 0), 7, core.Income),
		tx("3", day(2024, time.March, 10, 1), 3, core.Expense),
		tx("4", day(2024, time.February, 28, 12), 11, core.Expense),
		// outside the range
		tx("5", day(2024, time.April, 2, 12), 1000, core.Income),
	}
	rng := DateRange{
		Start: day(2024, time.February, 1, 0),
		End:   core.EndOfDay(day(2024, time.March, 31, 0)),
	}

	for _, g := range Granularities {
		t.Run(string(g), func(t *testing.T) {
			res := Aggregate(txs, rng, g)

			income, expense := decimal.Zero, decimal.Zero
			for i, b := range res.Buckets {
				income = income.Add(b.Income)
				expense = expense.Add(b.Expense)
				if i > 0 {
					assert.True(t, res.Buckets[i-1].Timestamp.Before(b.Timestamp), "buckets must be strictly ascending")
				}
			}
			assert.True(t, income.Equal(res.Totals.Income))
			assert.True(t, expense.Equal(res.Totals.Expense))
			assert.True(t, res.Totals.Income.Equal(dec("7")))
			assert.True(t, res.Totals.Expense.Equal(dec("19")))

			n := decimal.NewFromInt(int64(len(res.Buckets)))
			assert.True(t, res.Average.Expense.Mul(n).Round(8).Equal(res.Totals.Expense))
		})
	}
}

func TestAggregateDailyBuckets(t *testing.T) {
	txs := []core.Transaction{
		tx("1", day(2024, time.January, 5, 8), 10, core.Expense),
		tx("2", day(2024, time.January, 5, 20), 15, core.Expense),
		tx("3", day(2024, time.January, 7, 8), 1, core.Income),
	}

	res := Aggregate(txs, DateRange{}, Daily)

	require.Len(t, res.Buckets, 2, "no synthesized bucket for Jan 06")
	assert.Equal(t, "2024-01-05", res.Buckets[0].Key)
	assert.Equal(t, "Jan 05", res.Buckets[0].Label)
	assert.Equal(t, day(2024, time.January, 5, 0), res.Buckets[0].Timestamp)
	assert.True(t, res.Buckets[0].Expense.Equal(dec("25")))
}

func TestAggregateWeeklyBuckets(t *testing.T) {
	txs := []core.Transaction{
		// Monday and Sunday of the same ISO week
		tx("1", day(2024, time.January, 1, 8), 10, core.Expense),
		tx("2", day(2024, time.January, 7, 22), 5, core.Expense),
		tx("3", day(2024, time.January, 8, 0), 1, core.Expense),
	}

	res := Aggregate(txs, DateRange{}, Weekly)

	require.Len(t, res.Buckets, 2)
	assert.Equal(t, "2024-W01", res.Buckets[0].Key)
	assert.Equal(t, "Jan 01 – Jan 07", res.Buckets[0].Label)
	assert.True(t, res.Buckets[0].Expense.Equal(dec("15")))
	assert.Equal(t, "2024-W02", res.Buckets[1].Key)
}

func TestAggregateWeeklyAcrossYearBoundary(t *testing.T) {
	txs := []core.Transaction{
		tx("jan", day(2024, time.January, 2, 9), 10, core.Expense),
		// Monday 2024-12-30 opens ISO week 2025-W01
		tx("dec", day(2024, time.December, 31, 9), 20, core.Expense),
		tx("new", day(2025, time.January, 3, 9), 5, core.Expense),
	}

	res := Aggregate(txs, DateRange{}, Weekly)

	require.Len(t, res.Buckets, 2)
	assert.Equal(t, "2024-W01", res.Buckets[0].Key)
	assert.Equal(t, day(2024, time.January, 1, 0), res.Buckets[0].Timestamp)
	assert.True(t, res.Buckets[0].Expense.Equal(dec("10")))

	assert.Equal(t, "2025-W01", res.Buckets[1].Key)
	assert.Equal(t, "Dec 30 – Jan 05", res.Buckets[1].Label)
	assert.Equal(t, day(2024, time.December, 30, 0), res.Buckets[1].Timestamp)
	assert.True(t, res.Buckets[1].Expense.Equal(dec("25")))
}

func TestAggregateUnknownTypeCountsAsExpense(t *testing.T) {
	txs := []core.Transaction{
		tx("1", day(2024, time.January, 1, 8), 10, core.TransactionType("TRANSFER")),
		tx("2", day(2024, time.January, 1, 9), 4, ""),
	}

	res := Aggregate(txs, DateRange{}, Daily)

	assert.True(t, res.Totals.Expense.Equal(dec("14")))
	assert.True(t, res.Totals.Income.IsZero())
}

func TestAggregateRangeIsInclusive(t *testing.T) {
	start := day(2024, time.January, 1, 0)
	end := core.EndOfDay(day(2024, time.January, 31, 0))
	txs := []core.Transaction{
		tx("start", start, 1, core.Expense),
		tx("end", end, 2, core.Expense),
		tx("before", start.Add(-time.Nanosecond), 100, core.Expense),
		tx("after", end.Add(time.Nanosecond), 100, core.Expense),
	}

	res := Aggregate(txs, DateRange{Start: start, End: end}, Monthly)

	assert.True(t, res.Totals.Expense.Equal(dec("3")))
}

func TestAggregatorLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Jan 31 is Feb 1 in IST
	txs := []core.Transaction{tx("1", day(2024, time.January, 31, 20), 10, core.Expense)}

	utc := Aggregate(txs, DateRange{}, Monthly)
	ist := NewAggregator(WithLocation(loc)).Aggregate(txs, DateRange{}, Monthly)

	assert.Equal(t, "2024-01", utc.Buckets[0].Key)
	assert.Equal(t, "2024-02", ist.Buckets[0].Key)
}

func TestAggregatorCache(t *testing.T) {
	c := cache.NewLRUCache[Result](10, time.Minute)
	agg := NewAggregator(WithCache(c))
	txs := []core.Transaction{tx("1", day(2024, time.January, 1, 8), 10, core.Expense)}

	first := agg.Aggregate(txs, DateRange{}, Daily)
	assert.Equal(t, 1, c.Size())
	second := agg.Aggregate(txs, DateRange{}, Daily)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Size())

	// any change in input is a different key
	txs[0].Amount = decimal.NewFromInt(11)
	third := agg.Aggregate(txs, DateRange{}, Daily)
	assert.Equal(t, 2, c.Size())
	assert.True(t, third.Totals.Expense.Equal(dec("11")))

	agg.Aggregate(txs, DateRange{}, Monthly)
	assert.Equal(t, 3, c.Size())
}
