package timeseries

import "math"

// MAPE is the mean absolute percentage error over positions where the
// actual is nonzero. Returns 0 when every actual is zero, never NaN.
func MAPE(actual, predicted []float64) float64 {
	var sum float64
	var n int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

// SMAPE is the symmetric mean absolute percentage error, masking
// positions where both actual and predicted are zero.
func SMAPE(actual, predicted []float64) float64 {
	var sum float64
	var n int
	for i := range actual {
		denom := (math.Abs(actual[i]) + math.Abs(predicted[i])) / 2
		if denom == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / denom
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

// RMSE is the root mean squared error.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// MAE is the mean absolute error.
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// NaiveBaseline produces the accuracy floor a trained model must beat.
// With at least 7 training points it repeats the last full week;
// otherwise it repeats the training mean.
func NaiveBaseline(train []float64, horizon int) []float64 {
	out := make([]float64, horizon)
	if len(train) < 7 {
		mean := Mean(train)
		for i := range out {
			out[i] = mean
		}
		return out
	}
	for i := 0; i < horizon; i++ {
		out[i] = train[len(train)-(7-i%7)]
	}
	return out
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// StdDev returns the sample standard deviation (n-1 denominator),
// 0 when fewer than two values are given.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	mean := Mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// Round2 rounds to two decimal places for boundary output.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
