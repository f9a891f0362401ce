package timeseries

import (
	"math"
	"testing"
)

func TestMAPEPerfectForecastIsZero(t *testing.T) {
	actual := []float64{10, 0, 30, 40}
	if got := MAPE(actual, actual); got != 0 {
		t.Fatalf("MAPE(a, a) = %v, want 0", got)
	}
}

func TestMAPESkipsZeroActuals(t *testing.T) {
	actual := []float64{0, 100}
	predicted := []float64{50, 110}
	if got := MAPE(actual, predicted); got != 10 {
		t.Fatalf("MAPE = %v, want 10", got)
	}
}

func TestMAPEAllZeroActuals(t *testing.T) {
	actual := []float64{0, 0, 0}
	predicted := []float64{1, 2, 3}
	if got := MAPE(actual, predicted); got != 0 {
		t.Fatalf("MAPE over all-zero actuals = %v, want 0", got)
	}
}

func TestSMAPESymmetry(t *testing.T) {
	a := []float64{10, 20, 0, 45.5}
	b := []float64{12, 18, 3, 40}
	if SMAPE(a, b) != SMAPE(b, a) {
		t.Fatalf("SMAPE not symmetric: %v vs %v", SMAPE(a, b), SMAPE(b, a))
	}
}

func TestRMSEAndMAE(t *testing.T) {
	actual := []float64{1, 2, 3}
	predicted := []float64{2, 2, 5}

	wantRMSE := math.Sqrt((1.0 + 0 + 4) / 3)
	if got := RMSE(actual, predicted); math.Abs(got-wantRMSE) > 1e-12 {
		t.Fatalf("RMSE = %v, want %v", got, wantRMSE)
	}
	if got := MAE(actual, predicted); got != 1 {
		t.Fatalf("MAE = %v, want 1", got)
	}
}

func TestNaiveBaselineWeeklyRepeat(t *testing.T) {
	train := []float64{10, 20, 30, 40, 50, 60, 70}
	got := NaiveBaseline(train, 7)
	for i, want := range train {
		if got[i] != want {
			t.Fatalf("NaiveBaseline[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestNaiveBaselineWrapsPastOneWeek(t *testing.T) {
	train := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	got := NaiveBaseline(train, 10)
	want := []float64{8, 9, 10, 11, 12, 13, 14, 8, 9, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NaiveBaseline[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNaiveBaselineShortTrainUsesMean(t *testing.T) {
	train := []float64{10, 20, 30}
	got := NaiveBaseline(train, 4)
	for i, v := range got {
		if v != 20 {
			t.Fatalf("NaiveBaseline[%d] = %v, want 20", i, v)
		}
	}
}

func TestStdDevSample(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	want := math.Sqrt(32.0 / 7.0)
	if got := StdDev(vals); math.Abs(got-want) > 1e-12 {
		t.Fatalf("StdDev = %v, want %v", got, want)
	}
	if got := StdDev([]float64{5}); got != 0 {
		t.Fatalf("StdDev of single value = %v, want 0", got)
	}
}
