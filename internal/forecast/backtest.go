package forecast

import (
	"fmt"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

// backtestMinTrainDays is the training data required beyond the
// holdout itself.
const backtestMinTrainDays = 30

// Backtest evaluates a model on the most recent holdout days of a
// prepared series, against test actuals and the naive baseline. The
// holdout is always the tail of the series; ordering is preserved.
func Backtest(metric string, series []models.Observation, m Model, holdout int) (*models.BacktestResult, error) {
	if holdout <= 0 {
		return nil, fmt.Errorf("holdout must be positive, got %d", holdout)
	}
	need := holdout + backtestMinTrainDays
	if len(series) < need {
		return nil, &timeseries.InsufficientDataError{Need: need, Have: len(series)}
	}

	split := len(series) - holdout
	train, test := series[:split], series[split:]

	if err := m.Fit(train); err != nil {
		return nil, fmt.Errorf("fit %s: %w", m.Name(), err)
	}
	preds, err := m.Predict(holdout)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", m.Name(), err)
	}

	actual := timeseries.Values(test)
	predicted := make([]float64, holdout)
	for i, p := range preds {
		predicted[i] = p.Value
	}

	trainVals := timeseries.Values(train)
	baseline := timeseries.NaiveBaseline(trainVals, holdout)

	result := &models.BacktestResult{
		ModelName:    m.Name(),
		MetricName:   metric,
		HoldoutDays:  holdout,
		TrainStart:   train[0].Date,
		TrainEnd:     train[len(train)-1].Date,
		TrainSamples: len(train),
		MAPE:         timeseries.MAPE(actual, predicted),
		SMAPE:        timeseries.SMAPE(actual, predicted),
		RMSE:         timeseries.RMSE(actual, predicted),
		MAE:          timeseries.MAE(actual, predicted),
		BaselineMAPE: timeseries.MAPE(actual, baseline),
		BaselineRMSE: timeseries.RMSE(actual, baseline),
		Params:       m.Params(),
	}

	if result.BaselineMAPE > 0 {
		imp := (result.BaselineMAPE - result.MAPE) / result.BaselineMAPE * 100
		result.ImprovementPct = &imp
	}

	return result, nil
}
