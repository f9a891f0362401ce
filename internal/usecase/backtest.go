package usecase

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/forecast"
	"KPIPulse/internal/timeseries"
)

// BacktestParams selects what to evaluate.
type BacktestParams struct {
	Metric      string
	Model       string
	HoldoutDays int
}

// Backtest evaluates one model (or the auto-selected winner) on the
// most recent holdout of the metric's series.
func (s *Service) Backtest(ctx context.Context, p BacktestParams) (*models.BacktestResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("backtest", time.Since(start).Seconds()) }()

	if p.HoldoutDays <= 0 {
		p.HoldoutDays = s.opts.HoldoutDays
	}
	if p.Model == "" {
		p.Model = forecast.ModelAuto
	}
	if !forecast.KnownModel(p.Model) {
		return nil, fmt.Errorf("%w: %s", forecast.ErrUnsupportedModel, p.Model)
	}

	raw, err := s.series(ctx, p.Metric)
	if err != nil {
		return nil, err
	}
	prepared, err := timeseries.Daily(raw)
	if err != nil {
		return nil, err
	}

	var result *models.BacktestResult
	if p.Model == forecast.ModelAuto {
		sel, err := forecast.Select(p.Metric, prepared, p.HoldoutDays, s.logger)
		if err != nil {
			return nil, err
		}
		result = sel.Winner
	} else {
		m, err := forecast.New(p.Model)
		if err != nil {
			return nil, err
		}
		result, err = forecast.Backtest(p.Metric, prepared, m, p.HoldoutDays)
		if err != nil {
			return nil, err
		}
	}

	s.metrics.RecordBacktestMAPE(result.ModelName, p.Metric, result.MAPE)
	return result, nil
}
