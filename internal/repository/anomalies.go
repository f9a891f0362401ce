package repository

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	applogger "KPIPulse/pkg/logger"

	"github.com/lib/pq"
)

// The conflict clause deliberately leaves acknowledged,
// acknowledged_by and acknowledged_at untouched so re-detection never
// clobbers a human acknowledgment.
const upsertAnomalySQL = `
	INSERT INTO ml_anomalies
		(metric_date, metric_name, actual_value, expected_value,
		 deviation_pct, z_score, anomaly_type, severity, is_weekend,
		 day_of_week, interpretation, suggested_action, model_version, run_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (metric_date, metric_name) DO UPDATE SET
		actual_value = EXCLUDED.actual_value,
		expected_value = EXCLUDED.expected_value,
		deviation_pct = EXCLUDED.deviation_pct,
		z_score = EXCLUDED.z_score,
		anomaly_type = EXCLUDED.anomaly_type,
		severity = EXCLUDED.severity,
		is_weekend = EXCLUDED.is_weekend,
		day_of_week = EXCLUDED.day_of_week,
		interpretation = EXCLUDED.interpretation,
		suggested_action = EXCLUDED.suggested_action,
		model_version = EXCLUDED.model_version,
		run_id = EXCLUDED.run_id,
		updated_at = CURRENT_TIMESTAMP`

// UpsertAnomalies writes records with merge-on-conflict semantics.
func (s *PostgresStore) UpsertAnomalies(ctx context.Context, records []models.AnomalyRecord) (int, error) {
	written := 0
	for _, r := range records {
		_, err := s.db.ExecContext(ctx, upsertAnomalySQL,
			r.MetricDate, r.MetricName, r.ActualValue, r.ExpectedValue,
			r.DeviationPct, r.ZScore, r.AnomalyType, r.Severity, r.IsWeekend,
			r.DayOfWeek, r.Interpretation, r.Action, r.ModelVersion, r.RunID)
		if err != nil {
			return written, fmt.Errorf("upsert anomaly %s/%s: %w",
				r.MetricDate.Format("2006-01-02"), r.MetricName, err)
		}
		written++
	}
	s.logger.Debug("anomalies upserted", applogger.Int("rows", written))
	return written, nil
}

// Acknowledge marks one anomaly as acknowledged and returns the rows
// affected. Zero rows means no matching record exists; that is the
// caller's signal, not an error.
func (s *PostgresStore) Acknowledge(ctx context.Context, date time.Time, metric, who string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ml_anomalies
		SET acknowledged = TRUE,
		    acknowledged_by = $3,
		    acknowledged_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE metric_date = $1 AND metric_name = $2`, date, metric, who)
	if err != nil {
		return 0, fmt.Errorf("acknowledge anomaly: %w", err)
	}
	return res.RowsAffected()
}

// LatestAnomalies returns anomalies for a metric since the given date,
// newest first.
func (s *PostgresStore) LatestAnomalies(ctx context.Context, metric string, since time.Time) ([]models.AnomalyRecord, error) {
	rows, err := s.db.QueryContext(ctx, anomalySelect+`
		WHERE metric_name = $1 AND metric_date >= $2
		ORDER BY metric_date DESC`, metric, since)
	if err != nil {
		return nil, fmt.Errorf("read anomalies: %w", err)
	}
	defer rows.Close()
	return scanAnomalies(rows)
}

// ActiveAnomalies returns unacknowledged anomalies at or above the
// given severity, newest first.
func (s *PostgresStore) ActiveAnomalies(ctx context.Context, minSeverity string) ([]models.AnomalyRecord, error) {
	severities := severitiesAtOrAbove(minSeverity)
	rows, err := s.db.QueryContext(ctx, anomalySelect+`
		WHERE acknowledged = FALSE AND severity = ANY($1)
		ORDER BY metric_date DESC`, pq.Array(severities))
	if err != nil {
		return nil, fmt.Errorf("read active anomalies: %w", err)
	}
	defer rows.Close()
	return scanAnomalies(rows)
}

const anomalySelect = `
	SELECT metric_date, metric_name, actual_value, expected_value,
	       deviation_pct, z_score, anomaly_type, severity, is_weekend,
	       day_of_week, interpretation, suggested_action, model_version,
	       run_id, acknowledged, acknowledged_by, acknowledged_at
	FROM ml_anomalies`

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanAnomalies(rows rowScanner) ([]models.AnomalyRecord, error) {
	var out []models.AnomalyRecord
	for rows.Next() {
		var r models.AnomalyRecord
		if err := rows.Scan(&r.MetricDate, &r.MetricName, &r.ActualValue,
			&r.ExpectedValue, &r.DeviationPct, &r.ZScore, &r.AnomalyType,
			&r.Severity, &r.IsWeekend, &r.DayOfWeek, &r.Interpretation,
			&r.Action, &r.ModelVersion, &r.RunID, &r.Acknowledged,
			&r.AcknowledgedBy, &r.AcknowledgedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func severitiesAtOrAbove(min string) []string {
	rank := models.SeverityRank(min)
	all := []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if models.SeverityRank(s) >= rank {
			out = append(out, s)
		}
	}
	return out
}
