package repository

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	applogger "KPIPulse/pkg/logger"
)

const upsertForecastSQL = `
	INSERT INTO ml_forecasts
		(forecast_date, metric_name, predicted_value, lower_bound,
		 upper_bound, model_name, model_version, run_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (forecast_date, metric_name) DO UPDATE SET
		predicted_value = EXCLUDED.predicted_value,
		lower_bound = EXCLUDED.lower_bound,
		upper_bound = EXCLUDED.upper_bound,
		model_name = EXCLUDED.model_name,
		model_version = EXCLUDED.model_version,
		run_id = EXCLUDED.run_id,
		updated_at = CURRENT_TIMESTAMP`

// UpsertForecasts writes records one statement per row so conflict
// resolution stays atomic under concurrent writers.
func (s *PostgresStore) UpsertForecasts(ctx context.Context, records []models.ForecastRecord) (int, error) {
	written := 0
	for _, r := range records {
		_, err := s.db.ExecContext(ctx, upsertForecastSQL,
			r.ForecastDate, r.MetricName, r.PredictedValue, r.LowerBound,
			r.UpperBound, r.ModelName, r.ModelVersion, r.RunID)
		if err != nil {
			return written, fmt.Errorf("upsert forecast %s/%s: %w",
				r.ForecastDate.Format("2006-01-02"), r.MetricName, err)
		}
		written++
	}
	s.logger.Debug("forecasts upserted", applogger.Int("rows", written))
	return written, nil
}

// LatestForecasts returns forecast rows for a metric on or after the
// given date, ordered by date ascending.
func (s *PostgresStore) LatestForecasts(ctx context.Context, metric string, from time.Time) ([]models.ForecastRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT forecast_date, metric_name, predicted_value, lower_bound,
		       upper_bound, model_name, model_version, run_id
		FROM ml_forecasts
		WHERE metric_name = $1 AND forecast_date >= $2
		ORDER BY forecast_date ASC`, metric, from)
	if err != nil {
		return nil, fmt.Errorf("read forecasts: %w", err)
	}
	defer rows.Close()

	var out []models.ForecastRecord
	for rows.Next() {
		var r models.ForecastRecord
		if err := rows.Scan(&r.ForecastDate, &r.MetricName, &r.PredictedValue,
			&r.LowerBound, &r.UpperBound, &r.ModelName, &r.ModelVersion, &r.RunID); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
