package forecast

import (
	"errors"
	"fmt"
	"testing"

	"KPIPulse/internal/domain/models"
	applogger "KPIPulse/pkg/logger"
)

// failingModel always errors during fit.
type failingModel struct{}

func (failingModel) Name() string                      { return "failing" }
func (failingModel) Version() string                   { return "0.0.0" }
func (failingModel) Fit([]models.Observation) error    { return fmt.Errorf("fit blew up") }
func (failingModel) Predict(int) ([]Prediction, error) { return nil, fmt.Errorf("not fitted") }
func (failingModel) Params() map[string]interface{}    { return nil }

func TestSelectSurvivesFailingCandidate(t *testing.T) {
	series := weeklySeries(60, 100, 1)
	candidates := []Model{failingModel{}, NewHoltWinters()}

	sel, err := selectFrom("total_orders", series, 7, candidates, applogger.Nop())
	if err != nil {
		t.Fatalf("selectFrom() error = %v", err)
	}
	if sel.Winner.ModelName != ModelHoltWinters {
		t.Fatalf("Winner = %s, want %s", sel.Winner.ModelName, ModelHoltWinters)
	}
	if len(sel.Results) != 1 {
		t.Fatalf("Results len = %d, want 1", len(sel.Results))
	}
}

func TestSelectAllCandidatesFail(t *testing.T) {
	series := weeklySeries(60, 100, 0)
	candidates := []Model{failingModel{}, failingModel{}}

	_, err := selectFrom("total_orders", series, 7, candidates, applogger.Nop())
	if !errors.Is(err, ErrNoUsableModel) {
		t.Fatalf("selectFrom() error = %v, want ErrNoUsableModel", err)
	}
}

func TestSelectPicksLowestMAPE(t *testing.T) {
	series := weeklySeries(90, 500, 2)

	sel, err := Select("total_revenue", series, 14, applogger.Nop())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(sel.Results) != 2 {
		t.Fatalf("Results len = %d, want 2", len(sel.Results))
	}
	for _, r := range sel.Results {
		if r.MAPE < sel.Winner.MAPE {
			t.Fatalf("winner MAPE %v is not minimal, %s has %v", sel.Winner.MAPE, r.ModelName, r.MAPE)
		}
	}
}
