package chart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	Daily   Granularity = "DAILY"
	Weekly  Granularity = "WEEKLY"
	Monthly Granularity = "MONTHLY"
)

// Granularity selects the time unit transactions are bucketed by.
type Granularity string

var ErrInvalidGranularity = errors.New("invalid granularity")

// Granularities lists the supported values in display order.
var Granularities = []Granularity{Daily, Weekly, Monthly}

func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
}

func (g Granularity) Label() string {
	switch g {
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	}
	return "Daily"
}

// boundary returns the start of the bucket containing t. Unknown values
// bucket daily.
func (g Granularity) boundary(t time.Time) time.Time {
	switch g {
	case Weekly:
		return core.StartOfWeek(t)
	case Monthly:
		return core.StartOfMonth(t)
	}
	return core.StartOfDay(t)
}

// key renders the grouping key for a bucket boundary.
func (g Granularity) key(b time.Time) string {
	switch g {
	case Weekly:
		// ISO year, not calendar year: a Monday in late December can
		// open week 1 of the next year
		year, week := b.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return b.Format("2006-01")
	}
	return b.Format("2006-01-02")
}

// label renders the human readable caption for a bucket boundary.
func (g Granularity) label(b time.Time) string {
	switch g {
	case Weekly:
		return b.Format("Jan 02") + " – " + b.AddDate(0, 0, 6).Format("Jan 02")
	case Monthly:
		return b.Format("Jan 2006")
	}
	return b.Format("Jan 02")
}
