package chart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// DateRange is an inclusive interval. A zero Start or End leaves that side
// unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t <= End using full timestamps.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

const (
	Last7Days   Preset = "7D"
	LastMonth   Preset = "1M"
	Last3Months Preset = "3M"
	Last6Months Preset = "6M"
	AllTime     Preset = "ALL"
)

// DefaultPreset is used when a request does not name one.
const DefaultPreset = LastMonth

// Preset is a named date range resolved against a clock at call time.
type Preset string

var ErrInvalidPreset = errors.New("invalid date range")

type presetInfo struct {
	label string
	days  int
}

var presets = map[Preset]presetInfo{
	Last7Days:   {"Last 7 Days", 7},
	LastMonth:   {"Last Month", 30},
	Last3Months: {"Last 3 Months", 90},
	Last6Months: {"Last 6 Months", 180},
	AllTime:     {"All Time", 0},
}

// Presets lists the supported presets in display order.
var Presets = []Preset{Last7Days, LastMonth, Last3Months, Last6Months, AllTime}

func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := presets[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
	}
	return p, nil
}

func (p Preset) Label() string {
	return presets[p].label
}

// Days returns the window length, 0 for AllTime.
func (p Preset) Days() int {
	return presets[p].days
}

// Resolve computes [startOfDay(now-(days-1)), endOfDay(now)] in loc. AllTime
// starts at the Unix epoch. Unknown presets resolve like DefaultPreset.
func (p Preset) Resolve(clock core.Clock, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	info, ok := presets[p]
	if !ok {
		info = presets[DefaultPreset]
	}

	now := clock.Now().In(loc)
	end := core.EndOfDay(now)
	if info.days == 0 {
		return DateRange{Start: core.StartOfDay(time.Unix(0, 0).In(loc)), End: end}
	}
	return DateRange{Start: core.StartOfDay(now.AddDate(0, 0, -(info.days - 1))), End: end}
}
