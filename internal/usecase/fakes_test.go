package usecase

import (
	"context"
	"sync"
	"time"

	"KPIPulse/internal/domain/models"
)

type fakeReader struct {
	rows []models.KPIRow
	err  error
}

func (f *fakeReader) ReadAll(ctx context.Context) ([]models.KPIRow, error) {
	return f.rows, f.err
}

func (f *fakeReader) Freshness(ctx context.Context) (models.Freshness, error) {
	if f.err != nil {
		return models.Freshness{}, f.err
	}
	fr := models.Freshness{TotalRecords: int64(len(f.rows))}
	if len(f.rows) > 0 {
		last := f.rows[len(f.rows)-1].Date
		fr.LastDataDate = &last
	}
	return fr, nil
}

type forecastKey struct {
	date   string
	metric string
}

type fakeForecastStore struct {
	mu   sync.Mutex
	rows map[forecastKey]models.ForecastRecord
}

func newFakeForecastStore() *fakeForecastStore {
	return &fakeForecastStore{rows: make(map[forecastKey]models.ForecastRecord)}
}

func (f *fakeForecastStore) UpsertForecasts(ctx context.Context, records []models.ForecastRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.rows[forecastKey{r.ForecastDate.Format("2006-01-02"), r.MetricName}] = r
	}
	return len(records), nil
}

func (f *fakeForecastStore) LatestForecasts(ctx context.Context, metric string, from time.Time) ([]models.ForecastRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ForecastRecord
	for _, r := range f.rows {
		if r.MetricName == metric && !r.ForecastDate.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeForecastStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeAnomalyStore struct {
	mu   sync.Mutex
	rows map[forecastKey]models.AnomalyRecord
}

func newFakeAnomalyStore() *fakeAnomalyStore {
	return &fakeAnomalyStore{rows: make(map[forecastKey]models.AnomalyRecord)}
}

func (f *fakeAnomalyStore) UpsertAnomalies(ctx context.Context, records []models.AnomalyRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		key := forecastKey{r.MetricDate.Format("2006-01-02"), r.MetricName}
		if prev, ok := f.rows[key]; ok {
			// Acknowledgment survives re-detection.
			r.Acknowledged = prev.Acknowledged
			r.AcknowledgedBy = prev.AcknowledgedBy
			r.AcknowledgedAt = prev.AcknowledgedAt
		}
		f.rows[key] = r
	}
	return len(records), nil
}

func (f *fakeAnomalyStore) Acknowledge(ctx context.Context, date time.Time, metric, who string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := forecastKey{date.Format("2006-01-02"), metric}
	r, ok := f.rows[key]
	if !ok {
		return 0, nil
	}
	now := time.Now()
	r.Acknowledged = true
	r.AcknowledgedBy = &who
	r.AcknowledgedAt = &now
	f.rows[key] = r
	return 1, nil
}

func (f *fakeAnomalyStore) LatestAnomalies(ctx context.Context, metric string, since time.Time) ([]models.AnomalyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AnomalyRecord
	for _, r := range f.rows {
		if r.MetricName == metric && !r.MetricDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAnomalyStore) ActiveAnomalies(ctx context.Context, minSeverity string) ([]models.AnomalyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	minRank := models.SeverityRank(minSeverity)
	var out []models.AnomalyRecord
	for _, r := range f.rows {
		if !r.Acknowledged && models.SeverityRank(r.Severity) >= minRank {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeRunLedger struct {
	mu   sync.Mutex
	next int64
	runs []models.ModelRun
}

func (f *fakeRunLedger) RecordRun(ctx context.Context, run models.ModelRun) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	run.RunID = f.next
	run.CreatedAt = time.Now()
	f.runs = append(f.runs, run)
	return run.RunID, nil
}

func (f *fakeRunLedger) RecentRuns(ctx context.Context, limit int) ([]models.ModelRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ModelRun, 0, limit)
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.runs[i])
	}
	return out, nil
}

func (f *fakeRunLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []models.AnomalyAlert
	err    error
}

func (f *fakeAlerts) PublishAlert(ctx context.Context, alert models.AnomalyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlerts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

type nopMetrics struct{}

func (nopMetrics) RecordModelRun(model, metric string)                   {}
func (nopMetrics) RecordRowsPersisted(table, metric string, n int)       {}
func (nopMetrics) RecordAnomaly(metric, severity string)                 {}
func (nopMetrics) RecordError(kind string)                               {}
func (nopMetrics) RecordLatency(op string, seconds float64)              {}
func (nopMetrics) RecordBacktestMAPE(model, metric string, mape float64) {}

// seedRows builds n days of KPI rows with a weekly revenue pattern.
func seedRows(n int) []models.KPIRow {
	pattern := []float64{1000, 1200, 1100, 1300, 1500, 2000, 1800}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.KPIRow, n)
	for i := 0; i < n; i++ {
		rev := pattern[i%7]
		rows[i] = models.KPIRow{
			Date:            start.AddDate(0, 0, i),
			TotalRevenue:    rev,
			TotalOrders:     rev / 10,
			UniqueCustomers: rev / 20,
			AvgOrderValue:   10,
			TotalItemsSold:  rev / 5,
		}
	}
	return rows
}

func testOptions() Options {
	return Options{
		Metrics: []string{
			models.MetricTotalRevenue, models.MetricTotalOrders,
			models.MetricUniqueCustomers, models.MetricAvgOrderValue,
			models.MetricTotalItemsSold,
		},
		ForecastHorizons: []int{7, 30},
		HoldoutDays:      14,
		LookbackDays:     90,
		Contamination:    0.1,
		ModelVersion:     "2.0.0",
		CodeVersion:      "2024.01.1",
		MinAlertSeverity: models.SeverityHigh,
	}
}
