// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing recurring
// transactions. Each interval (daily, weekly, monthly, yearly) has its own
// stepper that computes the next occurrence.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// IntervalStepper is the strategy interface for computing the next occurrence
// of a recurring transaction.
type IntervalStepper interface {
	// Next returns the occurrence following from.
	Next(from time.Time) time.Time
}

// DailyStepper advances by one calendar day.
type DailyStepper struct{}

func (DailyStepper) Next(from time.Time) time.Time { return from.AddDate(0, 0, 1) }

// WeeklyStepper advances by seven days.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(from time.Time) time.Time { return from.AddDate(0, 0, 7) }

// MonthlyStepper advances by one month, clamping to the last day of the
// target month (Jan 31 -> Feb 29 in a leap year).
type MonthlyStepper struct{}

func (MonthlyStepper) Next(from time.Time) time.Time { return addMonthsClamped(from, 1) }

// YearlyStepper advances by one year, clamping Feb 29 to Feb 28.
type YearlyStepper struct{}

func (YearlyStepper) Next(from time.Time) time.Time { return addMonthsClamped(from, 12) }

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, lastDay)-1)
}

// intervalSteppers maps recurring intervals to their steppers.
var intervalSteppers = map[core.RecurringInterval]IntervalStepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// GetIntervalStepper returns the stepper for interval.
func GetIntervalStepper(interval core.RecurringInterval) (IntervalStepper, error) {
	s, ok := intervalSteppers[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidInterval, interval)
	}
	return s, nil
}

// RegisterIntervalStepper installs a stepper for a new interval. Not safe to
// call concurrently with lookups.
func RegisterIntervalStepper(interval core.RecurringInterval, s IntervalStepper) {
	intervalSteppers[interval] = s
}

// NextOccurrence steps from once for interval.
func NextOccurrence(interval core.RecurringInterval, from time.Time) (time.Time, error) {
	s, err := GetIntervalStepper(interval)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(from), nil
}
