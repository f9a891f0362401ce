package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"KPIPulse/internal/anomaly"
	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/forecast"
	"KPIPulse/internal/timeseries"
	applogger "KPIPulse/pkg/logger"

	"github.com/google/uuid"
)

// anomalyRunType names the ledger rows for anomaly-only runs, which
// carry no holdout scores.
const anomalyRunType = "anomaly_detector"

// TrainAll runs model selection, multi-horizon forecasting and anomaly
// detection for every metric, persisting everything. Metrics are
// independent, so they are trained concurrently; one metric failing
// never blocks the others.
func (s *Service) TrainAll(ctx context.Context, metricNames []string) (*models.TrainSummary, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("train_all", time.Since(start).Seconds()) }()

	if len(metricNames) == 0 {
		metricNames = s.Metrics()
	}
	for _, m := range metricNames {
		if !s.validMetric(m) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, m)
		}
	}

	summary := &models.TrainSummary{
		JobID:     uuid.NewString(),
		StartedAt: start.UTC(),
	}
	s.logger.Info("training job started",
		applogger.String("job_id", summary.JobID),
		applogger.Strings("metrics", metricNames),
	)

	outcomes := make(chan models.TrainMetricOutcome, len(metricNames))
	var wg sync.WaitGroup
	for _, metric := range metricNames {
		wg.Add(1)
		go func(metric string) {
			defer wg.Done()
			outcomes <- s.trainMetric(ctx, metric)
		}(metric)
	}
	wg.Wait()
	close(outcomes)

	byName := make(map[string]models.TrainMetricOutcome, len(metricNames))
	for o := range outcomes {
		byName[o.MetricName] = o
	}
	// Preserve the requested metric order in the summary.
	for _, name := range metricNames {
		o := byName[name]
		summary.Metrics = append(summary.Metrics, o)
		summary.TotalForecasts += o.ForecastRows
		summary.TotalAnomalies += o.AnomalyRows
		if o.RunID != nil {
			summary.TotalRuns++
		}
		if o.Error != "" {
			summary.Failures++
		}
	}
	summary.FinishedAt = time.Now().UTC()

	s.logger.Info("training job finished",
		applogger.String("job_id", summary.JobID),
		applogger.Int("forecasts", summary.TotalForecasts),
		applogger.Int("anomalies", summary.TotalAnomalies),
		applogger.Int("failures", summary.Failures),
		applogger.Duration("duration_ms", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

func (s *Service) trainMetric(ctx context.Context, metric string) models.TrainMetricOutcome {
	outcome := models.TrainMetricOutcome{MetricName: metric}

	raw, err := s.series(ctx, metric)
	if err != nil {
		outcome.Error = err.Error()
		s.metrics.RecordError("train_read")
		return outcome
	}
	prepared, err := timeseries.Daily(raw)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	sel, err := forecast.Select(metric, prepared, s.opts.HoldoutDays, s.logger)
	if err != nil {
		outcome.Error = err.Error()
		s.metrics.RecordError("model_selection")
		s.recordFailedRun(ctx, metric, err)
		return outcome
	}
	winner := sel.Winner

	m, err := forecast.New(winner.ModelName)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if err := m.Fit(prepared); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	preds, err := m.Predict(maxInt(s.opts.ForecastHorizons))
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	runID, err := s.runs.RecordRun(ctx, s.runFromBacktest(winner))
	if err != nil {
		outcome.Error = err.Error()
		s.metrics.RecordError("record_run")
		return outcome
	}
	s.metrics.RecordModelRun(winner.ModelName, metric)
	s.metrics.RecordBacktestMAPE(winner.ModelName, metric, winner.MAPE)

	records := s.toForecastRecords(metric, m.Name(), m.Version(), &runID, preds)
	written, err := s.forecasts.UpsertForecasts(ctx, records)
	if err != nil {
		outcome.Error = err.Error()
		s.metrics.RecordError("persist_forecasts")
		return outcome
	}
	s.metrics.RecordRowsPersisted("ml_forecasts", metric, written)

	outcome.ModelName = winner.ModelName
	outcome.RunID = &runID
	outcome.ForecastRows = written
	mape := winner.MAPE
	outcome.MAPE = &mape

	anomalyRows, err := s.detectAndPersist(ctx, metric, raw)
	if err != nil {
		// Forecasting already succeeded; keep its output and report the
		// anomaly leg separately.
		outcome.Error = err.Error()
		return outcome
	}
	outcome.AnomalyRows = anomalyRows
	return outcome
}

// detectAndPersist runs the anomaly leg of a training job: record an
// anomaly-only ledger row, detect over the lookback window, persist
// and alert.
func (s *Service) detectAndPersist(ctx context.Context, metric string, raw []models.Observation) (int, error) {
	window := lookbackWindow(raw, s.opts.LookbackDays)

	metricName := metric
	run := models.ModelRun{
		ModelType:    anomalyRunType,
		MetricName:   &metricName,
		TrainSamples: len(window),
		Params: map[string]interface{}{
			"contamination": s.opts.Contamination,
			"z_threshold":   2.5,
		},
		ModelVersion: s.opts.ModelVersion,
		CodeVersion:  s.opts.CodeVersion,
		Status:       models.RunStatusCompleted,
	}
	if len(window) > 0 {
		first := timeseries.Day(window[0].Date)
		last := timeseries.Day(window[len(window)-1].Date)
		run.TrainStart = &first
		run.TrainEnd = &last
	}
	runID, err := s.runs.RecordRun(ctx, run)
	if err != nil {
		s.metrics.RecordError("record_run")
		return 0, fmt.Errorf("record anomaly run: %w", err)
	}
	s.metrics.RecordModelRun(anomalyRunType, metric)

	detector := anomaly.NewDetector(s.opts.Contamination, s.opts.ModelVersion)
	flagged := detector.Detect(metric, window)
	for i := range flagged {
		roundAnomaly(&flagged[i])
		flagged[i].RunID = &runID
	}
	if len(flagged) == 0 {
		return 0, nil
	}

	written, err := s.anomalies.UpsertAnomalies(ctx, flagged)
	if err != nil {
		s.metrics.RecordError("persist_anomalies")
		return written, fmt.Errorf("persist anomalies: %w", err)
	}
	s.metrics.RecordRowsPersisted("ml_anomalies", metric, written)
	for _, r := range flagged {
		s.metrics.RecordAnomaly(r.MetricName, r.Severity)
	}
	s.publishAlerts(ctx, flagged)
	return written, nil
}

func (s *Service) runFromBacktest(b *models.BacktestResult) models.ModelRun {
	metricName := b.MetricName
	trainStart := b.TrainStart
	trainEnd := b.TrainEnd
	mape, smape, rmse, mae := b.MAPE, b.SMAPE, b.RMSE, b.MAE
	baseMAPE, baseRMSE := b.BaselineMAPE, b.BaselineRMSE
	return models.ModelRun{
		ModelType:      b.ModelName,
		MetricName:     &metricName,
		TrainStart:     &trainStart,
		TrainEnd:       &trainEnd,
		TrainSamples:   b.TrainSamples,
		Params:         b.Params,
		MAPE:           &mape,
		SMAPE:          &smape,
		RMSE:           &rmse,
		MAE:            &mae,
		BaselineMAPE:   &baseMAPE,
		BaselineRMSE:   &baseRMSE,
		ImprovementPct: b.ImprovementPct,
		ModelVersion:   s.opts.ModelVersion,
		CodeVersion:    s.opts.CodeVersion,
		Status:         models.RunStatusCompleted,
	}
}

func (s *Service) recordFailedRun(ctx context.Context, metric string, cause error) {
	metricName := metric
	_, err := s.runs.RecordRun(ctx, models.ModelRun{
		ModelType:    forecast.ModelAuto,
		MetricName:   &metricName,
		Params:       map[string]interface{}{"error": cause.Error()},
		ModelVersion: s.opts.ModelVersion,
		CodeVersion:  s.opts.CodeVersion,
		Status:       models.RunStatusFailed,
	})
	if err != nil {
		s.logger.Warn("failed-run ledger write failed",
			applogger.String("metric", metric),
			applogger.Error(err),
		)
	}
}

func maxInt(vals []int) int {
	max := 0
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}
