package usecase

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/anomaly"
	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
	applogger "KPIPulse/pkg/logger"
)

// AnomalyParams selects the detection window. Zero values fall back to
// the configured defaults.
type AnomalyParams struct {
	Metric        string
	LookbackDays  int
	Contamination float64
}

// DetectAnomalies runs seasonality-aware detection over the lookback
// window, persists the flagged rows and publishes alerts for the
// severe ones. Acknowledgment fields on existing rows survive the
// upsert.
func (s *Service) DetectAnomalies(ctx context.Context, p AnomalyParams) ([]models.AnomalyRecord, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("detect_anomalies", time.Since(start).Seconds()) }()

	if p.LookbackDays <= 0 {
		p.LookbackDays = s.opts.LookbackDays
	}
	if p.Contamination <= 0 {
		p.Contamination = s.opts.Contamination
	}

	raw, err := s.series(ctx, p.Metric)
	if err != nil {
		return nil, err
	}
	window := lookbackWindow(raw, p.LookbackDays)

	detector := anomaly.NewDetector(p.Contamination, s.opts.ModelVersion)
	flagged := detector.Detect(p.Metric, window)
	for i := range flagged {
		roundAnomaly(&flagged[i])
	}

	if len(flagged) > 0 {
		written, err := s.anomalies.UpsertAnomalies(ctx, flagged)
		if err != nil {
			s.metrics.RecordError("persist_anomalies")
			return nil, fmt.Errorf("persist anomalies: %w", err)
		}
		s.metrics.RecordRowsPersisted("ml_anomalies", p.Metric, written)
		for _, r := range flagged {
			s.metrics.RecordAnomaly(r.MetricName, r.Severity)
		}
		s.publishAlerts(ctx, flagged)
	}

	s.logger.Info("anomaly detection finished",
		applogger.String("metric", p.Metric),
		applogger.Int("window_days", len(window)),
		applogger.Int("flagged", len(flagged)),
	)
	return flagged, nil
}

// Acknowledge marks one anomaly as acknowledged. The returned count is
// zero when no matching record exists.
func (s *Service) Acknowledge(ctx context.Context, date time.Time, metric, who string) (int64, error) {
	if !s.validMetric(metric) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
	}
	n, err := s.anomalies.Acknowledge(ctx, timeseries.Day(date), metric, who)
	if err != nil {
		return 0, err
	}
	s.logger.Info("anomaly acknowledged",
		applogger.Date("date", date),
		applogger.String("metric", metric),
		applogger.String("by", who),
		applogger.Int64("rows", n),
	)
	return n, nil
}

// LatestAnomalies returns persisted anomalies for a metric within the
// configured lookback.
func (s *Service) LatestAnomalies(ctx context.Context, metric string) ([]models.AnomalyRecord, error) {
	if !s.validMetric(metric) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
	}
	since := timeseries.Day(time.Now().UTC()).AddDate(0, 0, -s.opts.LookbackDays)
	return s.anomalies.LatestAnomalies(ctx, metric, since)
}

// ActiveAnomalies returns unacknowledged anomalies at or above the
// given severity.
func (s *Service) ActiveAnomalies(ctx context.Context, minSeverity string) ([]models.AnomalyRecord, error) {
	if minSeverity == "" {
		minSeverity = models.SeverityLow
	}
	if models.SeverityRank(minSeverity) == 0 {
		return nil, fmt.Errorf("unknown severity: %s", minSeverity)
	}
	return s.anomalies.ActiveAnomalies(ctx, minSeverity)
}

// RecentRuns exposes the model run ledger.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]models.ModelRun, error) {
	return s.runs.RecentRuns(ctx, limit)
}

func (s *Service) publishAlerts(ctx context.Context, records []models.AnomalyRecord) {
	if s.alerts == nil {
		return
	}
	minRank := models.SeverityRank(s.opts.MinAlertSeverity)
	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		if models.SeverityRank(r.Severity) < minRank {
			continue
		}
		alert := models.AnomalyAlert{
			MetricDate:     r.MetricDate.Format("2006-01-02"),
			MetricName:     r.MetricName,
			AnomalyType:    r.AnomalyType,
			Severity:       r.Severity,
			ActualValue:    r.ActualValue,
			ExpectedValue:  r.ExpectedValue,
			DeviationPct:   r.DeviationPct,
			ZScore:         r.ZScore,
			Interpretation: r.Interpretation,
			Action:         r.Action,
			EmittedAt:      now,
		}
		if err := s.alerts.PublishAlert(ctx, alert); err != nil {
			s.metrics.RecordError("publish_alert")
			s.logger.Warn("alert publish failed",
				applogger.String("metric", r.MetricName),
				applogger.Error(err),
			)
		}
	}
}

// lookbackWindow keeps only observations within days of the most
// recent observation.
func lookbackWindow(obs []models.Observation, days int) []models.Observation {
	if len(obs) == 0 {
		return obs
	}
	cutoff := timeseries.Day(obs[len(obs)-1].Date).AddDate(0, 0, -days)
	for i, o := range obs {
		if !o.Date.Before(cutoff) {
			return obs[i:]
		}
	}
	return nil
}

func roundAnomaly(r *models.AnomalyRecord) {
	r.ActualValue = timeseries.Round2(r.ActualValue)
	r.ExpectedValue = timeseries.Round2(r.ExpectedValue)
	r.ZScore = timeseries.Round2(r.ZScore)
}
