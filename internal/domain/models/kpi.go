package models

import "time"

// Metric names the system knows how to forecast and monitor.
const (
	MetricTotalRevenue    = "total_revenue"
	MetricTotalOrders     = "total_orders"
	MetricUniqueCustomers = "unique_customers"
	MetricAvgOrderValue   = "avg_order_value"
	MetricTotalItemsSold  = "total_items_sold"
)

// KPIRow is one day of aggregated business metrics as read from the
// daily_kpis source table.
type KPIRow struct {
	Date            time.Time `json:"date"`
	TotalRevenue    float64   `json:"total_revenue"`
	TotalOrders     float64   `json:"total_orders"`
	UniqueCustomers float64   `json:"unique_customers"`
	AvgOrderValue   float64   `json:"avg_order_value"`
	TotalItemsSold  float64   `json:"total_items_sold"`
}

// Value returns the named metric from the row, or false if the name is
// not a known metric.
func (r KPIRow) Value(metric string) (float64, bool) {
	switch metric {
	case MetricTotalRevenue:
		return r.TotalRevenue, true
	case MetricTotalOrders:
		return r.TotalOrders, true
	case MetricUniqueCustomers:
		return r.UniqueCustomers, true
	case MetricAvgOrderValue:
		return r.AvgOrderValue, true
	case MetricTotalItemsSold:
		return r.TotalItemsSold, true
	default:
		return 0, false
	}
}

// ValidMetric reports whether name is a supported metric.
func ValidMetric(name string) bool {
	switch name {
	case MetricTotalRevenue, MetricTotalOrders, MetricUniqueCustomers,
		MetricAvgOrderValue, MetricTotalItemsSold:
		return true
	}
	return false
}

// Observation is a single (date, value) point of one metric's series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Freshness summarizes how current the KPI source data is.
// LastDataDate is nil when the source table is empty.
type Freshness struct {
	LastDataDate *time.Time `json:"last_data_date,omitempty"`
	TotalRecords int64      `json:"total_records"`
}
