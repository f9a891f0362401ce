package models

import "time"

// Anomaly types.
const (
	AnomalyTypeSpike = "spike"
	AnomalyTypeDrop  = "drop"
)

// Severity levels, ordered least to most severe.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SeverityRank maps a severity to its ordering; unknown severities rank
// below low.
func SeverityRank(s string) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AnomalyRecord is one flagged day for one metric. Uniqueness is
// (MetricDate, MetricName). Acknowledgment fields survive upserts
// unless explicitly written.
type AnomalyRecord struct {
	MetricDate     time.Time  `json:"metric_date"`
	MetricName     string     `json:"metric_name"`
	ActualValue    float64    `json:"actual_value"`
	ExpectedValue  float64    `json:"expected_value"`
	DeviationPct   float64    `json:"deviation_pct"`
	ZScore         float64    `json:"z_score"`
	AnomalyType    string     `json:"anomaly_type"`
	Severity       string     `json:"severity"`
	IsWeekend      bool       `json:"is_weekend"`
	DayOfWeek      int        `json:"day_of_week"`
	Interpretation string     `json:"interpretation"`
	Action         string     `json:"suggested_action"`
	ModelVersion   string     `json:"model_version"`
	RunID          *int64     `json:"run_id,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// AnomalyAlert is the payload published to the alert topic for
// anomalies at or above the configured minimum severity.
type AnomalyAlert struct {
	MetricDate     string  `json:"metric_date"`
	MetricName     string  `json:"metric_name"`
	AnomalyType    string  `json:"anomaly_type"`
	Severity       string  `json:"severity"`
	ActualValue    float64 `json:"actual_value"`
	ExpectedValue  float64 `json:"expected_value"`
	DeviationPct   float64 `json:"deviation_pct"`
	ZScore         float64 `json:"z_score"`
	Interpretation string  `json:"interpretation"`
	Action         string  `json:"suggested_action"`
	EmittedAt      string  `json:"emitted_at"`
}
