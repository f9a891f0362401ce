package forecast

import (
	"KPIPulse/internal/domain/models"
	applogger "KPIPulse/pkg/logger"
)

// Selection is the outcome of running every candidate through a
// backtest: the winner plus every successful bundle, so the ledger can
// record why it won.
type Selection struct {
	Winner  *models.BacktestResult
	Results []*models.BacktestResult
}

// Select backtests every registered variant on the same series and
// holdout and picks the lowest MAPE. A candidate that fails is logged
// and excluded, not fatal; ErrNoUsableModel is returned only when all
// candidates fail. Ties keep the first-registered candidate.
func Select(metric string, series []models.Observation, holdout int, l *applogger.Logger) (*Selection, error) {
	candidates := make([]Model, 0, len(registered))
	for _, name := range registered {
		m, err := New(name)
		if err != nil {
			continue
		}
		candidates = append(candidates, m)
	}
	return selectFrom(metric, series, holdout, candidates, l)
}

func selectFrom(metric string, series []models.Observation, holdout int, candidates []Model, l *applogger.Logger) (*Selection, error) {
	sel := &Selection{}

	for _, m := range candidates {
		result, err := Backtest(metric, series, m, holdout)
		if err != nil {
			l.Warn("candidate model excluded",
				applogger.String("model", m.Name()),
				applogger.String("metric", metric),
				applogger.Error(err),
			)
			continue
		}
		sel.Results = append(sel.Results, result)
		if sel.Winner == nil || result.MAPE < sel.Winner.MAPE {
			sel.Winner = result
		}
	}

	if sel.Winner == nil {
		return nil, ErrNoUsableModel
	}
	return sel, nil
}
