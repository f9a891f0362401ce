package forecast

import (
	"errors"
	"testing"

	"KPIPulse/internal/timeseries"
)

func TestBacktestMinimumLength(t *testing.T) {
	m := NewHoltWinters()

	_, err := Backtest("total_orders", weeklySeries(43, 100, 0), m, 14)
	var insufficient *timeseries.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Backtest on 43 days error = %v, want InsufficientDataError", err)
	}
	if insufficient.Need != 44 {
		t.Fatalf("Need = %d, want 44", insufficient.Need)
	}

	result, err := Backtest("total_orders", weeklySeries(44, 100, 0), NewHoltWinters(), 14)
	if err != nil {
		t.Fatalf("Backtest on 44 days error = %v", err)
	}
	if result.TrainSamples != 30 {
		t.Fatalf("TrainSamples = %d, want 30", result.TrainSamples)
	}
	if result.HoldoutDays != 14 {
		t.Fatalf("HoldoutDays = %d, want 14", result.HoldoutDays)
	}
}

func TestBacktestHoldoutIsTail(t *testing.T) {
	series := weeklySeries(60, 100, 0)
	result, err := Backtest("total_revenue", series, NewSeasonalTrend(), 7)
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}
	if !result.TrainEnd.Equal(series[52].Date) {
		t.Fatalf("TrainEnd = %v, want %v", result.TrainEnd, series[52].Date)
	}
	if !result.TrainStart.Equal(series[0].Date) {
		t.Fatalf("TrainStart = %v, want %v", result.TrainStart, series[0].Date)
	}
}

func TestBacktestImprovementUndefinedWhenBaselinePerfect(t *testing.T) {
	// Perfectly periodic series: the weekly naive baseline is exact,
	// so baseline MAPE is 0 and improvement must be nil.
	series := weeklySeries(90, 100, 0)
	result, err := Backtest("total_revenue", series, NewSeasonalTrend(), 7)
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}
	if result.BaselineMAPE != 0 {
		t.Fatalf("BaselineMAPE = %v, want 0", result.BaselineMAPE)
	}
	if result.ImprovementPct != nil {
		t.Fatalf("ImprovementPct = %v, want nil", *result.ImprovementPct)
	}
}

func TestBacktestRecordsParams(t *testing.T) {
	result, err := Backtest("total_orders", weeklySeries(60, 100, 1), NewHoltWinters(), 7)
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}
	if result.Params == nil {
		t.Fatal("Params is nil")
	}
	if _, ok := result.Params["alpha"]; !ok {
		t.Fatal("Params missing alpha")
	}
}
