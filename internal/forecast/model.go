package forecast

import (
	"errors"
	"time"

	"KPIPulse/internal/domain/models"
)

// Model identifiers accepted by the API. ModelAuto triggers selection
// over all registered variants.
const (
	ModelAuto          = "auto"
	ModelSeasonalTrend = "seasonal_trend"
	ModelHoltWinters   = "holt_winters"
)

// modelVersion tags every forecast and ledger row produced by this
// generation of the models.
const modelVersion = "2.0.0"

var (
	// ErrUnsupportedModel is returned when an unknown model identifier
	// is requested explicitly.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrNoUsableModel is returned when every candidate failed during
	// selection.
	ErrNoUsableModel = errors.New("no usable model")
)

// Prediction is one forecasted day with uncertainty bounds. Values are
// clipped at zero but not rounded; rounding happens at the boundary.
type Prediction struct {
	Date  time.Time
	Value float64
	Lower float64
	Upper float64
}

// Model is a forecasting variant. Fit trains on a prepared daily
// series; Predict emits bounded predictions for the days following the
// training range.
type Model interface {
	Name() string
	Version() string
	Fit(series []models.Observation) error
	Predict(horizon int) ([]Prediction, error)
	Params() map[string]interface{}
}

// registered lists the candidate variants in selection tie-break order.
var registered = []string{ModelSeasonalTrend, ModelHoltWinters}

// New returns a fresh model for the given identifier.
func New(name string) (Model, error) {
	switch name {
	case ModelSeasonalTrend:
		return NewSeasonalTrend(), nil
	case ModelHoltWinters:
		return NewHoltWinters(), nil
	default:
		return nil, ErrUnsupportedModel
	}
}

// Candidates returns the registered variant identifiers in order.
func Candidates() []string {
	out := make([]string, len(registered))
	copy(out, registered)
	return out
}

// KnownModel reports whether name is a registered variant or "auto".
func KnownModel(name string) bool {
	if name == ModelAuto {
		return true
	}
	for _, r := range registered {
		if r == name {
			return true
		}
	}
	return false
}

func clipZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
