package services

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestIntervalSteppers(t *testing.T) {
	tests := []struct {
		name     string
		interval core.RecurringInterval
		from     time.Time
		want     time.Time
	}{
		{"daily", core.Daily, time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{"weekly", core.Weekly, time.Date(2024, 1, 29, 9, 0, 0, 0, time.UTC), time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)},
		{"monthly", core.Monthly, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)},
		{"monthly clamps to leap day", core.Monthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"monthly clamps to april 30", core.Monthly, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"monthly across year", core.Monthly, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"yearly", core.Yearly, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"yearly clamps leap day", core.Yearly, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.interval, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetIntervalStepper_Unknown(t *testing.T) {
	if _, err := GetIntervalStepper("HOURLY"); !errors.Is(err, core.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

type fortnightly struct{}

func (fortnightly) Next(from time.Time) time.Time { return from.AddDate(0, 0, 14) }

func TestRegisterIntervalStepper(t *testing.T) {
	const biweekly core.RecurringInterval = "BIWEEKLY"
	RegisterIntervalStepper(biweekly, fortnightly{})
	t.Cleanup(func() { delete(intervalSteppers, biweekly) })

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := NextOccurrence(biweekly, from)
	if err != nil || !got.Equal(from.AddDate(0, 0, 14)) {
		t.Fatalf("got %v, %v", got, err)
	}
}
