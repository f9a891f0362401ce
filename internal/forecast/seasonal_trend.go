package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

const minSeasonalTrendObs = 14

// SeasonalTrend fits an additive decomposition: linear trend plus
// weekly day-of-week effects, plus month-of-year effects when the
// series spans at least two years. Bounds come from the empirical
// 2.5/97.5 percentiles of the fit residuals.
type SeasonalTrend struct {
	intercept float64
	slope     float64
	weekly    [7]float64
	monthly   [12]float64
	useYearly bool
	residLow  float64
	residHigh float64
	lastDate  time.Time
	n         int
}

// NewSeasonalTrend creates an unfitted seasonal-trend model.
func NewSeasonalTrend() *SeasonalTrend {
	return &SeasonalTrend{}
}

func (m *SeasonalTrend) Name() string    { return ModelSeasonalTrend }
func (m *SeasonalTrend) Version() string { return modelVersion }

// Fit estimates trend and seasonal components from a prepared daily
// series.
func (m *SeasonalTrend) Fit(series []models.Observation) error {
	if len(series) < minSeasonalTrendObs {
		return &timeseries.InsufficientDataError{Need: minSeasonalTrendObs, Have: len(series)}
	}

	n := len(series)
	y := timeseries.Values(series)

	// Ordinary least squares over t = 0..n-1.
	var sumT, sumY, sumTY, sumTT float64
	for t, v := range y {
		ft := float64(t)
		sumT += ft
		sumY += v
		sumTY += ft * v
		sumTT += ft * ft
	}
	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom == 0 {
		m.slope = 0
		m.intercept = sumY / fn
	} else {
		m.slope = (fn*sumTY - sumT*sumY) / denom
		m.intercept = (sumY - m.slope*sumT) / fn
	}

	detrended := make([]float64, n)
	for t, v := range y {
		detrended[t] = v - (m.intercept + m.slope*float64(t))
	}

	// Weekly effects: mean detrended value per day of week, centered.
	var weekSum [7]float64
	var weekCnt [7]int
	for i, o := range series {
		d := dayOfWeek(o.Date)
		weekSum[d] += detrended[i]
		weekCnt[d]++
	}
	var weekMean float64
	for d := 0; d < 7; d++ {
		if weekCnt[d] > 0 {
			m.weekly[d] = weekSum[d] / float64(weekCnt[d])
		}
		weekMean += m.weekly[d]
	}
	weekMean /= 7
	for d := 0; d < 7; d++ {
		m.weekly[d] -= weekMean
	}

	// Yearly effects need two full cycles to be distinguishable from
	// trend, mirroring the usual seasonality activation rule.
	span := series[n-1].Date.Sub(series[0].Date)
	m.useYearly = span >= 730*24*time.Hour
	if m.useYearly {
		var monSum [12]float64
		var monCnt [12]int
		for i, o := range series {
			mo := int(o.Date.Month()) - 1
			monSum[mo] += detrended[i] - m.weekly[dayOfWeek(o.Date)]
			monCnt[mo]++
		}
		var monMean float64
		for mo := 0; mo < 12; mo++ {
			if monCnt[mo] > 0 {
				m.monthly[mo] = monSum[mo] / float64(monCnt[mo])
			}
			monMean += m.monthly[mo]
		}
		monMean /= 12
		for mo := 0; mo < 12; mo++ {
			m.monthly[mo] -= monMean
		}
	}

	residuals := make([]float64, n)
	for i, o := range series {
		residuals[i] = y[i] - m.fitted(float64(i), o.Date)
	}
	m.residLow = percentile(residuals, 2.5)
	m.residHigh = percentile(residuals, 97.5)

	m.lastDate = timeseries.Day(series[n-1].Date)
	m.n = n
	return nil
}

// Predict emits horizon days following the training range.
func (m *SeasonalTrend) Predict(horizon int) ([]Prediction, error) {
	if m.n == 0 {
		return nil, fmt.Errorf("model not fitted")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	out := make([]Prediction, horizon)
	for h := 1; h <= horizon; h++ {
		date := m.lastDate.AddDate(0, 0, h)
		v := m.fitted(float64(m.n-1+h), date)
		out[h-1] = Prediction{
			Date:  date,
			Value: clipZero(v),
			Lower: clipZero(v + m.residLow),
			Upper: clipZero(v + m.residHigh),
		}
	}
	return out, nil
}

// Params returns the fitted hyperparameters for the run ledger.
func (m *SeasonalTrend) Params() map[string]interface{} {
	return map[string]interface{}{
		"trend":              "linear",
		"intercept":          m.intercept,
		"slope":              m.slope,
		"weekly_seasonality": true,
		"yearly_seasonality": m.useYearly,
		"seasonality_mode":   "additive",
		"interval_width":     0.95,
	}
}

func (m *SeasonalTrend) fitted(t float64, date time.Time) float64 {
	v := m.intercept + m.slope*t + m.weekly[dayOfWeek(date)]
	if m.useYearly {
		v += m.monthly[int(date.Month())-1]
	}
	return v
}

// dayOfWeek maps Monday to 0 through Sunday to 6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// percentile computes the p-th percentile with linear interpolation.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
