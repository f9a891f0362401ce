package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	modelRuns      *prometheus.CounterVec
	rowsPersisted  *prometheus.CounterVec
	anomaliesFound *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	lastMAPE       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		modelRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpipulse_model_runs_total",
				Help: "Total number of recorded model training runs",
			},
			[]string{"model", "metric"},
		),
		rowsPersisted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpipulse_rows_persisted_total",
				Help: "Total number of rows written through upserts",
			},
			[]string{"table", "metric"},
		),
		anomaliesFound: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpipulse_anomalies_total",
				Help: "Total number of anomalies flagged",
			},
			[]string{"metric", "severity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpipulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kpipulse_operation_duration_seconds",
				Help:    "Duration of core operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		lastMAPE: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kpipulse_backtest_mape",
				Help: "MAPE of the most recent backtest per model and metric",
			},
			[]string{"model", "metric"},
		),
	}
}

// RecordModelRun records a completed model training run.
func (r *Recorder) RecordModelRun(model, metric string) {
	r.modelRuns.WithLabelValues(model, metric).Inc()
}

// RecordRowsPersisted records rows written to a table.
func (r *Recorder) RecordRowsPersisted(table, metric string, n int) {
	r.rowsPersisted.WithLabelValues(table, metric).Add(float64(n))
}

// RecordAnomaly records a flagged anomaly.
func (r *Recorder) RecordAnomaly(metric, severity string) {
	r.anomaliesFound.WithLabelValues(metric, severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBacktestMAPE records the latest backtest MAPE for a model/metric pair.
func (r *Recorder) RecordBacktestMAPE(model, metric string, mape float64) {
	r.lastMAPE.WithLabelValues(model, metric).Set(mape)
}
