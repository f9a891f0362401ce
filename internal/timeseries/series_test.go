package timeseries

import (
	"errors"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyFillsGapsWithZero(t *testing.T) {
	obs := []models.Observation{
		{Date: day(2024, 1, 1), Value: 10},
		{Date: day(2024, 1, 4), Value: 40},
	}

	got, err := Daily(obs)
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Daily() len = %d, want 4", len(got))
	}
	want := []float64{10, 0, 0, 40}
	for i, w := range want {
		if got[i].Value != w {
			t.Fatalf("Daily()[%d].Value = %v, want %v", i, got[i].Value, w)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Sub(got[i-1].Date) != 24*time.Hour {
			t.Fatalf("Daily() gap between %v and %v", got[i-1].Date, got[i].Date)
		}
	}
}

func TestDailyEmptyInput(t *testing.T) {
	_, err := Daily(nil)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Daily(nil) error = %v, want InsufficientDataError", err)
	}
}

func TestDailyUnsortedInput(t *testing.T) {
	obs := []models.Observation{
		{Date: day(2024, 3, 3), Value: 3},
		{Date: day(2024, 3, 1), Value: 1},
		{Date: day(2024, 3, 2), Value: 2},
	}

	got, err := Daily(obs)
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	for i, want := range []float64{1, 2, 3} {
		if got[i].Value != want {
			t.Fatalf("Daily()[%d].Value = %v, want %v", i, got[i].Value, want)
		}
	}
}

func TestDailyNormalizesTimestamps(t *testing.T) {
	obs := []models.Observation{
		{Date: time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC), Value: 7},
	}

	got, err := Daily(obs)
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	if !got[0].Date.Equal(day(2024, 5, 1)) {
		t.Fatalf("Daily()[0].Date = %v, want midnight", got[0].Date)
	}
}
