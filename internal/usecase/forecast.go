package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/forecast"
	"KPIPulse/internal/timeseries"
	applogger "KPIPulse/pkg/logger"
)

// ForecastParams selects what to forecast. Model may name a variant
// explicitly or "auto" to run model selection.
type ForecastParams struct {
	Metric  string
	Horizon int
	Model   string
}

// ForecastResult is the ordered forecast plus the model that produced
// it.
type ForecastResult struct {
	Metric       string                  `json:"metric"`
	Model        string                  `json:"model"`
	ModelVersion string                  `json:"model_version"`
	Horizon      int                     `json:"horizon_days"`
	Records      []models.ForecastRecord `json:"records"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// Forecast trains the requested (or auto-selected) model on the full
// prepared series, persists the bounded predictions via upsert and
// returns them. Auto selection also records the winning backtest in
// the run ledger so the rows carry a reproducibility anchor.
func (s *Service) Forecast(ctx context.Context, p ForecastParams) (*ForecastResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("forecast", time.Since(start).Seconds()) }()

	if p.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", p.Horizon)
	}
	if p.Model == "" {
		p.Model = forecast.ModelAuto
	}
	if !forecast.KnownModel(p.Model) {
		return nil, fmt.Errorf("%w: %s", forecast.ErrUnsupportedModel, p.Model)
	}

	cacheKey := fmt.Sprintf("forecast:%s:%d:%s", p.Metric, p.Horizon, p.Model)
	if cached, ok := s.cached(cacheKey); ok {
		var result ForecastResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	}

	raw, err := s.series(ctx, p.Metric)
	if err != nil {
		return nil, err
	}
	prepared, err := timeseries.Daily(raw)
	if err != nil {
		return nil, err
	}

	modelName := p.Model
	var winner *models.BacktestResult
	if modelName == forecast.ModelAuto {
		sel, err := forecast.Select(p.Metric, prepared, s.opts.HoldoutDays, s.logger)
		if err != nil {
			return nil, err
		}
		winner = sel.Winner
		modelName = winner.ModelName
	}

	m, err := forecast.New(modelName)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(prepared); err != nil {
		return nil, err
	}
	preds, err := m.Predict(p.Horizon)
	if err != nil {
		return nil, err
	}

	var runID *int64
	if winner != nil {
		id, err := s.runs.RecordRun(ctx, s.runFromBacktest(winner))
		if err != nil {
			s.metrics.RecordError("record_run")
			return nil, fmt.Errorf("record run: %w", err)
		}
		runID = &id
		s.metrics.RecordModelRun(winner.ModelName, p.Metric)
		s.metrics.RecordBacktestMAPE(winner.ModelName, p.Metric, winner.MAPE)
	}

	records := s.toForecastRecords(p.Metric, m.Name(), m.Version(), runID, preds)
	written, err := s.forecasts.UpsertForecasts(ctx, records)
	if err != nil {
		s.metrics.RecordError("persist_forecasts")
		return nil, fmt.Errorf("persist forecasts: %w", err)
	}
	s.metrics.RecordRowsPersisted("ml_forecasts", p.Metric, written)

	result := &ForecastResult{
		Metric:       p.Metric,
		Model:        m.Name(),
		ModelVersion: m.Version(),
		Horizon:      p.Horizon,
		Records:      records,
		GeneratedAt:  time.Now().UTC(),
	}

	s.cacheSet(cacheKey, result)
	s.logger.Info("forecast generated",
		applogger.String("metric", p.Metric),
		applogger.String("model", m.Name()),
		applogger.Int("horizon", p.Horizon),
	)
	return result, nil
}

// LatestForecasts returns persisted forecasts for a metric from today
// onwards.
func (s *Service) LatestForecasts(ctx context.Context, metric string) ([]models.ForecastRecord, error) {
	if !s.validMetric(metric) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
	}
	return s.forecasts.LatestForecasts(ctx, metric, timeseries.Day(time.Now().UTC()))
}

// toForecastRecords converts predictions to boundary records; numeric
// fields are rounded here, not inside the models, to avoid compounding
// rounding error across computations.
func (s *Service) toForecastRecords(metric, modelName, version string, runID *int64, preds []forecast.Prediction) []models.ForecastRecord {
	out := make([]models.ForecastRecord, len(preds))
	for i, p := range preds {
		out[i] = models.ForecastRecord{
			ForecastDate:   p.Date,
			MetricName:     metric,
			PredictedValue: timeseries.Round2(p.Value),
			LowerBound:     timeseries.Round2(p.Lower),
			UpperBound:     timeseries.Round2(p.Upper),
			ModelName:      modelName,
			ModelVersion:   version,
			RunID:          runID,
		}
	}
	return out
}

func (s *Service) cached(key string) ([]byte, bool) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(key)
	if err != nil {
		s.logger.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (s *Service) cacheSet(key string, v interface{}) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetBytes(key, b, s.opts.CacheTTL); err != nil {
		s.logger.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
