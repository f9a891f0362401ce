package api

// ForecastRequest asks for a forecast of one metric.
type ForecastRequest struct {
	Metric      string `json:"metric" query:"metric" validate:"required"`
	HorizonDays int    `json:"horizon_days" query:"horizon_days" default:"30" validate:"gte=1,lte=365"`
	Model       string `json:"model" query:"model" default:"auto"`
}

// AnomalyDetectRequest triggers detection over a lookback window.
type AnomalyDetectRequest struct {
	Metric        string  `json:"metric" query:"metric" validate:"required"`
	LookbackDays  int     `json:"lookback_days" query:"lookback_days" default:"90" validate:"gte=14,lte=730"`
	Contamination float64 `json:"contamination" query:"contamination" default:"0.1" validate:"gt=0,lte=0.5"`
}

// BacktestRequest evaluates one model on a holdout.
type BacktestRequest struct {
	Metric      string `json:"metric" query:"metric" validate:"required"`
	Model       string `json:"model" query:"model" default:"auto"`
	HoldoutDays int    `json:"holdout_days" query:"holdout_days" default:"14" validate:"gte=1,lte=90"`
}

// TrainRequest runs the full pipeline; empty metrics means all
// configured metrics.
type TrainRequest struct {
	Metrics []string `json:"metrics"`
}

// AcknowledgeRequest marks an anomaly as seen.
type AcknowledgeRequest struct {
	Date           string `json:"date" param:"date" validate:"required,datetime=2006-01-02"`
	Metric         string `json:"metric" param:"metric" validate:"required"`
	AcknowledgedBy string `json:"acknowledged_by" validate:"required,min=1,max=100"`
}

// ActiveAnomaliesRequest filters unacknowledged anomalies by severity.
type ActiveAnomaliesRequest struct {
	MinSeverity string `json:"min_severity" query:"min_severity" default:"low" validate:"oneof=low medium high critical"`
}

// RunsRequest pages the model run ledger.
type RunsRequest struct {
	Limit int `json:"limit" query:"limit" default:"50" validate:"gte=1,lte=500"`
}
