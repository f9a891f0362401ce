package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/domain/repository"
	"KPIPulse/internal/service/cache"
	applogger "KPIPulse/pkg/logger"
)

var (
	// ErrInvalidMetric is returned for unsupported metric names,
	// before any computation.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrNoData is returned when the series reader has nothing.
	ErrNoData = errors.New("no data")
)

// Options configures the ML service behavior.
type Options struct {
	Metrics          []string
	ForecastHorizons []int
	HoldoutDays      int
	LookbackDays     int
	Contamination    float64
	ModelVersion     string
	CodeVersion      string
	CacheTTL         time.Duration
	MinAlertSeverity string
}

// Service orchestrates series preparation, model selection, anomaly
// detection and persistence.
type Service struct {
	reader    repository.SeriesReader
	forecasts repository.ForecastStore
	anomalies repository.AnomalyStore
	runs      repository.RunLedger
	alerts    repository.AlertPublisher
	metrics   repository.Metrics
	cache     cache.BytesCache
	logger    *applogger.Logger
	opts      Options
}

// NewService wires the service. alerts and resultCache may be nil when
// alerting or caching is disabled.
func NewService(
	reader repository.SeriesReader,
	forecasts repository.ForecastStore,
	anomalies repository.AnomalyStore,
	runs repository.RunLedger,
	alerts repository.AlertPublisher,
	metrics repository.Metrics,
	resultCache cache.BytesCache,
	l *applogger.Logger,
	opts Options,
) *Service {
	if opts.HoldoutDays <= 0 {
		opts.HoldoutDays = 14
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 90
	}
	if opts.Contamination <= 0 || opts.Contamination > 0.5 {
		opts.Contamination = 0.1
	}
	if len(opts.ForecastHorizons) == 0 {
		opts.ForecastHorizons = []int{7, 30}
	}
	if opts.MinAlertSeverity == "" {
		opts.MinAlertSeverity = models.SeverityHigh
	}
	return &Service{
		reader:    reader,
		forecasts: forecasts,
		anomalies: anomalies,
		runs:      runs,
		alerts:    alerts,
		metrics:   metrics,
		cache:     resultCache,
		logger:    l,
		opts:      opts,
	}
}

// Freshness reports how current the KPI source data is.
func (s *Service) Freshness(ctx context.Context) (models.Freshness, error) {
	return s.reader.Freshness(ctx)
}

// Metrics returns the configured metric names.
func (s *Service) Metrics() []string {
	out := make([]string, len(s.opts.Metrics))
	copy(out, s.opts.Metrics)
	return out
}

func (s *Service) validMetric(name string) bool {
	if !models.ValidMetric(name) {
		return false
	}
	if len(s.opts.Metrics) == 0 {
		return true
	}
	for _, m := range s.opts.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// series reads the raw observations of one metric, sorted by date
// ascending. The metric is validated before any I/O happens.
func (s *Service) series(ctx context.Context, metric string) ([]models.Observation, error) {
	if !s.validMetric(metric) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetric, metric)
	}

	rows, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.Observation, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Value(metric)
		if !ok {
			continue
		}
		out = append(out, models.Observation{Date: r.Date, Value: v})
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
