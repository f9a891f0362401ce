package repository

import (
	"context"
	"time"

	"KPIPulse/internal/domain/models"
)

// SeriesReader reads the raw daily KPI rows, sorted by date ascending.
type SeriesReader interface {
	ReadAll(ctx context.Context) ([]models.KPIRow, error)

	// Freshness reports the newest KPI date and the total row count of
	// the source table.
	Freshness(ctx context.Context) (models.Freshness, error)
}

// ForecastStore persists and reads forecast rows keyed by
// (forecast_date, metric_name).
type ForecastStore interface {
	// UpsertForecasts writes records with merge-on-conflict semantics
	// and returns the number of rows written.
	UpsertForecasts(ctx context.Context, records []models.ForecastRecord) (int, error)

	// LatestForecasts returns forecast rows for a metric on or after
	// the given date, ordered by date ascending.
	LatestForecasts(ctx context.Context, metric string, from time.Time) ([]models.ForecastRecord, error)
}

// AnomalyStore persists and reads anomaly rows keyed by
// (metric_date, metric_name). Upserts never clobber acknowledgment
// fields.
type AnomalyStore interface {
	UpsertAnomalies(ctx context.Context, records []models.AnomalyRecord) (int, error)

	// Acknowledge marks one anomaly as acknowledged. Returns the number
	// of rows affected; zero means no matching record existed.
	Acknowledge(ctx context.Context, date time.Time, metric, who string) (int64, error)

	// LatestAnomalies returns anomalies for a metric since the given
	// date, ordered by date descending.
	LatestAnomalies(ctx context.Context, metric string, since time.Time) ([]models.AnomalyRecord, error)

	// ActiveAnomalies returns unacknowledged anomalies at or above the
	// given severity, ordered by date descending.
	ActiveAnomalies(ctx context.Context, minSeverity string) ([]models.AnomalyRecord, error)
}

// RunLedger is the append-only record of model training attempts.
type RunLedger interface {
	// RecordRun inserts one immutable run row and returns its
	// generated id.
	RecordRun(ctx context.Context, run models.ModelRun) (int64, error)

	// RecentRuns returns the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]models.ModelRun, error)
}

// AlertPublisher pushes high-severity anomalies to an external channel.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.AnomalyAlert) error
}

// Metrics records operational counters and latencies.
type Metrics interface {
	RecordModelRun(model, metric string)
	RecordRowsPersisted(table, metric string, n int)
	RecordAnomaly(metric, severity string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordBacktestMAPE(model, metric string, mape float64)
}
