package models

import "time"

// ForecastRecord is one forecasted day for one metric. Uniqueness is
// (ForecastDate, MetricName); later writes overwrite earlier ones.
type ForecastRecord struct {
	ForecastDate   time.Time `json:"forecast_date"`
	MetricName     string    `json:"metric_name"`
	PredictedValue float64   `json:"predicted_value"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
	ModelName      string    `json:"model_name"`
	ModelVersion   string    `json:"model_version"`
	RunID          *int64    `json:"run_id,omitempty"`
}

// BacktestResult is the evaluation bundle produced by a holdout
// backtest of one model on one metric.
type BacktestResult struct {
	ModelName      string                 `json:"model_name"`
	MetricName     string                 `json:"metric_name"`
	HoldoutDays    int                    `json:"holdout_days"`
	TrainStart     time.Time              `json:"train_start"`
	TrainEnd       time.Time              `json:"train_end"`
	TrainSamples   int                    `json:"train_samples"`
	MAPE           float64                `json:"mape"`
	SMAPE          float64                `json:"smape"`
	RMSE           float64                `json:"rmse"`
	MAE            float64                `json:"mae"`
	BaselineMAPE   float64                `json:"baseline_mape"`
	BaselineRMSE   float64                `json:"baseline_rmse"`
	ImprovementPct *float64               `json:"improvement_pct"`
	Params         map[string]interface{} `json:"params"`
}

// ModelRun is an append-only ledger row recording one training attempt.
// Evaluation scores are nil for runs that produced no holdout score
// (anomaly-only runs).
type ModelRun struct {
	RunID          int64                  `json:"run_id"`
	ModelType      string                 `json:"model_type"`
	MetricName     *string                `json:"metric_name,omitempty"`
	TrainStart     *time.Time             `json:"train_start,omitempty"`
	TrainEnd       *time.Time             `json:"train_end,omitempty"`
	TrainSamples   int                    `json:"train_samples"`
	Params         map[string]interface{} `json:"params"`
	MAPE           *float64               `json:"mape,omitempty"`
	SMAPE          *float64               `json:"smape,omitempty"`
	RMSE           *float64               `json:"rmse,omitempty"`
	MAE            *float64               `json:"mae,omitempty"`
	BaselineMAPE   *float64               `json:"baseline_mape,omitempty"`
	BaselineRMSE   *float64               `json:"baseline_rmse,omitempty"`
	ImprovementPct *float64               `json:"improvement_pct,omitempty"`
	ModelVersion   string                 `json:"model_version"`
	CodeVersion    string                 `json:"code_version"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Model run statuses.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// TrainMetricOutcome summarizes what trainAll produced for one metric.
type TrainMetricOutcome struct {
	MetricName   string   `json:"metric_name"`
	ModelName    string   `json:"model_name,omitempty"`
	RunID        *int64   `json:"run_id,omitempty"`
	ForecastRows int      `json:"forecast_rows"`
	AnomalyRows  int      `json:"anomaly_rows"`
	MAPE         *float64 `json:"mape,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// TrainSummary is the aggregate result of a trainAll job.
type TrainSummary struct {
	JobID          string               `json:"job_id"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
	Metrics        []TrainMetricOutcome `json:"metrics"`
	TotalForecasts int                  `json:"total_forecasts"`
	TotalAnomalies int                  `json:"total_anomalies"`
	TotalRuns      int                  `json:"total_runs"`
	Failures       int                  `json:"failures"`
}
