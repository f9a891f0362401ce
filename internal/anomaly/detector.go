package anomaly

import (
	"math"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

// minObservations is the minimum series length for detection. Shorter
// series produce an empty result, not an error.
const minObservations = 14

const rollingWindow = 4

// Detector flags days whose value deviates from the expectation for
// their day type (weekend vs weekday). Two independent signals are
// combined with OR: an isolation-forest outlier score over the
// residuals, and a plain z-score threshold.
type Detector struct {
	contamination float64
	modelVersion  string
}

// NewDetector creates a detector. Contamination is the fraction of
// points the outlier model expects to flag; out-of-range values fall
// back to 0.1.
func NewDetector(contamination float64, modelVersion string) *Detector {
	if contamination <= 0 || contamination > 0.5 {
		contamination = 0.1
	}
	return &Detector{contamination: contamination, modelVersion: modelVersion}
}

// Detect returns only the flagged rows, carrying all computed fields.
// Gaps in the series are tolerated; no preparation is required.
func (d *Detector) Detect(metric string, series []models.Observation) []models.AnomalyRecord {
	if len(series) < minObservations {
		return nil
	}

	n := len(series)
	values := timeseries.Values(series)
	wholeStd := timeseries.StdDev(values)

	weekend := make([]bool, n)
	for i, o := range series {
		weekend[i] = isWeekend(o.Date)
	}

	// Day-type baselines over the whole series.
	var weekendSum, weekdaySum float64
	var weekendCnt, weekdayCnt int
	for i, v := range values {
		if weekend[i] {
			weekendSum += v
			weekendCnt++
		} else {
			weekdaySum += v
			weekdayCnt++
		}
	}
	weekendBase := safeDiv(weekendSum, weekendCnt)
	weekdayBase := safeDiv(weekdaySum, weekdayCnt)

	// Expected value and spread per point, from a trailing window of
	// same-day-type observations including the point itself.
	expected := make([]float64, n)
	stds := make([]float64, n)
	var weekendIdx, weekdayIdx []int
	for i := 0; i < n; i++ {
		var group *[]int
		if weekend[i] {
			group = &weekendIdx
		} else {
			group = &weekdayIdx
		}
		*group = append(*group, i)

		window := tailWindow(*group, rollingWindow)
		if len(window) >= 2 {
			vals := make([]float64, len(window))
			for j, idx := range window {
				vals[j] = values[idx]
			}
			expected[i] = timeseries.Mean(vals)
			stds[i] = timeseries.StdDev(vals)
		} else {
			if weekend[i] {
				expected[i] = weekendBase
			} else {
				expected[i] = weekdayBase
			}
			stds[i] = wholeStd
		}
		if stds[i] == 0 {
			stds[i] = 1
		}
	}

	residuals := make([]float64, n)
	for i := range values {
		residuals[i] = values[i] - expected[i]
	}

	forest := newIsolationForest()
	forest.fit(residuals, d.contamination)

	var out []models.AnomalyRecord
	for i, o := range series {
		exp := expected[i]
		z := (values[i] - exp) / stds[i]

		denom := exp
		if denom == 0 {
			denom = 1
		}
		devPct := timeseries.Round2((values[i] - exp) / denom * 100)

		if !forest.flagged(residuals[i]) && math.Abs(z) <= zFlagThreshold {
			continue
		}

		anomalyType := models.AnomalyTypeDrop
		if values[i] > exp {
			anomalyType = models.AnomalyTypeSpike
		}
		severity := severityFor(z, devPct)

		out = append(out, models.AnomalyRecord{
			MetricDate:     timeseries.Day(o.Date),
			MetricName:     metric,
			ActualValue:    values[i],
			ExpectedValue:  exp,
			DeviationPct:   devPct,
			ZScore:         z,
			AnomalyType:    anomalyType,
			Severity:       severity,
			IsWeekend:      weekend[i],
			DayOfWeek:      dayOfWeek(o.Date),
			Interpretation: interpretationFor(metric, anomalyType, weekend[i]),
			Action:         actionFor(anomalyType, weekend[i], severity),
			ModelVersion:   d.modelVersion,
		})
	}
	return out
}

// dayOfWeek maps Monday to 0 through Sunday to 6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(t time.Time) bool {
	return dayOfWeek(t) >= 5
}

func tailWindow(indices []int, size int) []int {
	if len(indices) <= size {
		return indices
	}
	return indices[len(indices)-size:]
}

func safeDiv(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
