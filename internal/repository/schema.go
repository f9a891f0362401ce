package repository

// Schema returns idempotent DDL for the output tables. The daily_kpis
// source table is owned by the ETL pipeline; it is created here only so
// local development works against an empty database.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS daily_kpis (
			date DATE PRIMARY KEY,
			total_revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_orders DOUBLE PRECISION NOT NULL DEFAULT 0,
			unique_customers DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_order_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_items_sold DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ml_forecasts (
			forecast_date DATE NOT NULL,
			metric_name TEXT NOT NULL,
			predicted_value DOUBLE PRECISION NOT NULL,
			lower_bound DOUBLE PRECISION NOT NULL,
			upper_bound DOUBLE PRECISION NOT NULL,
			model_name TEXT NOT NULL,
			model_version TEXT NOT NULL,
			run_id BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (forecast_date, metric_name)
		)`,
		`CREATE TABLE IF NOT EXISTS ml_anomalies (
			metric_date DATE NOT NULL,
			metric_name TEXT NOT NULL,
			actual_value DOUBLE PRECISION NOT NULL,
			expected_value DOUBLE PRECISION NOT NULL,
			deviation_pct DOUBLE PRECISION NOT NULL,
			z_score DOUBLE PRECISION NOT NULL,
			anomaly_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			is_weekend BOOLEAN NOT NULL,
			day_of_week SMALLINT NOT NULL,
			interpretation TEXT NOT NULL DEFAULT '',
			suggested_action TEXT NOT NULL DEFAULT '',
			model_version TEXT NOT NULL,
			run_id BIGINT,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
			acknowledged_by TEXT,
			acknowledged_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (metric_date, metric_name)
		)`,
		`CREATE TABLE IF NOT EXISTS ml_model_runs (
			run_id BIGSERIAL PRIMARY KEY,
			model_type TEXT NOT NULL,
			metric_name TEXT,
			train_start DATE,
			train_end DATE,
			train_samples INTEGER NOT NULL DEFAULT 0,
			params JSONB,
			mape DOUBLE PRECISION,
			smape DOUBLE PRECISION,
			rmse DOUBLE PRECISION,
			mae DOUBLE PRECISION,
			baseline_mape DOUBLE PRECISION,
			baseline_rmse DOUBLE PRECISION,
			improvement_pct DOUBLE PRECISION,
			model_version TEXT NOT NULL,
			code_version TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ml_anomalies_severity
			ON ml_anomalies (severity, acknowledged)`,
		`CREATE INDEX IF NOT EXISTS idx_ml_model_runs_created
			ON ml_model_runs (created_at DESC)`,
	}
}
