package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"KPIPulse/internal/domain/models"
	applogger "KPIPulse/pkg/logger"
)

// RecordRun inserts one immutable ledger row and returns its generated
// id. There is deliberately no update path for this table.
func (s *PostgresStore) RecordRun(ctx context.Context, run models.ModelRun) (int64, error) {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return 0, fmt.Errorf("marshal run params: %w", err)
	}

	var runID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO ml_model_runs
			(model_type, metric_name, train_start, train_end, train_samples,
			 params, mape, smape, rmse, mae, baseline_mape, baseline_rmse,
			 improvement_pct, model_version, code_version, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING run_id`,
		run.ModelType, run.MetricName, run.TrainStart, run.TrainEnd,
		run.TrainSamples, params, run.MAPE, run.SMAPE, run.RMSE, run.MAE,
		run.BaselineMAPE, run.BaselineRMSE, run.ImprovementPct,
		run.ModelVersion, run.CodeVersion, run.Status,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("record model run: %w", err)
	}

	s.logger.Debug("model run recorded",
		applogger.Int64("run_id", runID),
		applogger.String("model", run.ModelType),
	)
	return runID, nil
}

// RecentRuns returns the most recent ledger rows, newest first.
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]models.ModelRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, model_type, metric_name, train_start, train_end,
		       train_samples, params, mape, smape, rmse, mae,
		       baseline_mape, baseline_rmse, improvement_pct,
		       model_version, code_version, status, created_at
		FROM ml_model_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("read model runs: %w", err)
	}
	defer rows.Close()

	var out []models.ModelRun
	for rows.Next() {
		var r models.ModelRun
		var params []byte
		if err := rows.Scan(&r.RunID, &r.ModelType, &r.MetricName,
			&r.TrainStart, &r.TrainEnd, &r.TrainSamples, &params,
			&r.MAPE, &r.SMAPE, &r.RMSE, &r.MAE, &r.BaselineMAPE,
			&r.BaselineRMSE, &r.ImprovementPct, &r.ModelVersion,
			&r.CodeVersion, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan model run: %w", err)
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &r.Params); err != nil {
				return nil, fmt.Errorf("unmarshal run params: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
