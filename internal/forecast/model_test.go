package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

// weeklySeries builds n days starting 2024-01-01 with a repeating
// weekly pattern plus a linear trend.
func weeklySeries(n int, base, slope float64) []models.Observation {
	pattern := []float64{100, 120, 110, 130, 150, 200, 180}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		out[i] = models.Observation{
			Date:  start.AddDate(0, 0, i),
			Value: base + slope*float64(i) + pattern[i%7],
		}
	}
	return out
}

func TestSeasonalTrendRequiresTwoWeeks(t *testing.T) {
	m := NewSeasonalTrend()
	err := m.Fit(weeklySeries(13, 0, 0))
	var insufficient *timeseries.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Fit on 13 days error = %v, want InsufficientDataError", err)
	}
	if insufficient.Need != 14 {
		t.Fatalf("Need = %d, want 14", insufficient.Need)
	}
}

func TestSeasonalTrendLearnsWeeklyPattern(t *testing.T) {
	series := weeklySeries(70, 1000, 0)
	m := NewSeasonalTrend()
	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	preds, err := m.Predict(7)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	// The series is perfectly periodic, so the next week should
	// reproduce it closely.
	for i, p := range preds {
		want := series[i%7].Value
		if math.Abs(p.Value-want) > 5 {
			t.Fatalf("Predict()[%d].Value = %v, want ~%v", i, p.Value, want)
		}
	}
}

func TestHoltWintersRequiresTwoWeeks(t *testing.T) {
	m := NewHoltWinters()
	err := m.Fit(weeklySeries(13, 0, 0))
	var insufficient *timeseries.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Fit on 13 days error = %v, want InsufficientDataError", err)
	}
}

func TestHoltWintersTracksTrend(t *testing.T) {
	series := weeklySeries(56, 500, 2)
	m := NewHoltWinters()
	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	preds, err := m.Predict(14)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(preds) != 14 {
		t.Fatalf("Predict() len = %d, want 14", len(preds))
	}
	// Upward trending series: late predictions should sit above the
	// training mean.
	mean := timeseries.Mean(timeseries.Values(series))
	if preds[13].Value < mean {
		t.Fatalf("Predict()[13].Value = %v, want above train mean %v", preds[13].Value, mean)
	}
}

func TestPredictionsNeverNegative(t *testing.T) {
	// Steep downward trend pushing raw forecasts below zero.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]models.Observation, 60)
	for i := range series {
		v := 300 - 6*float64(i)
		if v < 0 {
			v = 0
		}
		series[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: v}
	}

	for _, name := range Candidates() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if err := m.Fit(series); err != nil {
			t.Fatalf("Fit(%q) error = %v", name, err)
		}
		preds, err := m.Predict(30)
		if err != nil {
			t.Fatalf("Predict(%q) error = %v", name, err)
		}
		for i, p := range preds {
			if p.Value < 0 || p.Lower < 0 || p.Upper < 0 {
				t.Fatalf("%s prediction %d has negative value/bounds: %+v", name, i, p)
			}
		}
	}
}

func TestPredictionBoundsOrdered(t *testing.T) {
	series := weeklySeries(90, 1000, 1)
	for _, name := range Candidates() {
		m, _ := New(name)
		if err := m.Fit(series); err != nil {
			t.Fatalf("Fit(%q) error = %v", name, err)
		}
		preds, err := m.Predict(7)
		if err != nil {
			t.Fatalf("Predict(%q) error = %v", name, err)
		}
		for i, p := range preds {
			if p.Lower > p.Value || p.Value > p.Upper {
				t.Fatalf("%s prediction %d bounds out of order: %+v", name, i, p)
			}
		}
	}
}

func TestPredictDatesFollowTrainingRange(t *testing.T) {
	series := weeklySeries(28, 100, 0)
	m := NewHoltWinters()
	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	preds, err := m.Predict(3)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	last := series[len(series)-1].Date
	for i, p := range preds {
		want := last.AddDate(0, 0, i+1)
		if !p.Date.Equal(want) {
			t.Fatalf("Predict()[%d].Date = %v, want %v", i, p.Date, want)
		}
	}
}

func TestNewUnknownModel(t *testing.T) {
	if _, err := New("arima"); !errors.Is(err, ErrUnsupportedModel) {
		t.Fatalf("New(arima) error = %v, want ErrUnsupportedModel", err)
	}
}
