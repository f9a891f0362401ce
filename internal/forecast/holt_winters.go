package forecast

import (
	"fmt"
	"math"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

const (
	hwPeriod          = 7
	minHoltWintersObs = 2 * hwPeriod
)

// Smoothing parameter grids searched during fitting.
var (
	hwAlphas = []float64{0.2, 0.4, 0.6, 0.8}
	hwBetas  = []float64{0.05, 0.15, 0.3}
	hwGammas = []float64{0.1, 0.3, 0.5}
)

// HoltWinters is triple exponential smoothing with additive trend and
// additive weekly seasonality. Smoothing parameters are chosen by grid
// search over the in-sample sum of squared one-step errors. Bounds are
// the symmetric normal approximation forecast +/- 1.96 * residual std.
type HoltWinters struct {
	alpha     float64
	beta      float64
	gamma     float64
	level     float64
	trend     float64
	seasonals [hwPeriod]float64
	residStd  float64
	lastDate  time.Time
	n         int
}

// NewHoltWinters creates an unfitted exponential-smoothing model.
func NewHoltWinters() *HoltWinters {
	return &HoltWinters{}
}

func (m *HoltWinters) Name() string    { return ModelHoltWinters }
func (m *HoltWinters) Version() string { return modelVersion }

// Fit grid-searches smoothing parameters and keeps the state of the
// best run. Requires at least two full weekly cycles.
func (m *HoltWinters) Fit(series []models.Observation) error {
	if len(series) < minHoltWintersObs {
		return &timeseries.InsufficientDataError{Need: minHoltWintersObs, Have: len(series)}
	}

	y := timeseries.Values(series)

	best := math.Inf(1)
	for _, a := range hwAlphas {
		for _, b := range hwBetas {
			for _, g := range hwGammas {
				st, sse := smooth(y, a, b, g)
				if sse < best {
					best = sse
					m.alpha, m.beta, m.gamma = a, b, g
					m.level, m.trend = st.level, st.trend
					m.seasonals = st.seasonals
					m.residStd = math.Sqrt(sse / float64(len(y)-1))
				}
			}
		}
	}

	m.lastDate = timeseries.Day(series[len(series)-1].Date)
	m.n = len(series)
	return nil
}

// Predict emits horizon days following the training range. Interval
// width is constant across the horizon.
func (m *HoltWinters) Predict(horizon int) ([]Prediction, error) {
	if m.n == 0 {
		return nil, fmt.Errorf("model not fitted")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	margin := 1.96 * m.residStd
	out := make([]Prediction, horizon)
	for h := 1; h <= horizon; h++ {
		v := m.level + float64(h)*m.trend + m.seasonals[(m.n+h-1)%hwPeriod]
		out[h-1] = Prediction{
			Date:  m.lastDate.AddDate(0, 0, h),
			Value: clipZero(v),
			Lower: clipZero(v - margin),
			Upper: clipZero(v + margin),
		}
	}
	return out, nil
}

// Params returns the fitted hyperparameters for the run ledger.
func (m *HoltWinters) Params() map[string]interface{} {
	return map[string]interface{}{
		"trend":            "additive",
		"seasonal":         "additive",
		"seasonal_periods": hwPeriod,
		"alpha":            m.alpha,
		"beta":             m.beta,
		"gamma":            m.gamma,
	}
}

type hwState struct {
	level     float64
	trend     float64
	seasonals [hwPeriod]float64
}

// smooth runs the additive Holt-Winters recursion over y and returns
// the final state plus the sum of squared one-step-ahead errors.
func smooth(y []float64, alpha, beta, gamma float64) (hwState, float64) {
	var st hwState

	var firstWeek, secondWeek float64
	for i := 0; i < hwPeriod; i++ {
		firstWeek += y[i]
		secondWeek += y[hwPeriod+i]
	}
	firstWeek /= hwPeriod
	secondWeek /= hwPeriod

	st.level = firstWeek
	st.trend = (secondWeek - firstWeek) / hwPeriod
	for i := 0; i < hwPeriod; i++ {
		st.seasonals[i] = y[i] - firstWeek
	}

	var sse float64
	for t := 0; t < len(y); t++ {
		idx := t % hwPeriod
		fitted := st.level + st.trend + st.seasonals[idx]
		err := y[t] - fitted
		sse += err * err

		newLevel := alpha*(y[t]-st.seasonals[idx]) + (1-alpha)*(st.level+st.trend)
		st.trend = beta*(newLevel-st.level) + (1-beta)*st.trend
		st.seasonals[idx] = gamma*(y[t]-newLevel) + (1-gamma)*st.seasonals[idx]
		st.level = newLevel
	}

	return st, sse
}
