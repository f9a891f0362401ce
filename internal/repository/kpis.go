package repository

import (
	"context"
	"database/sql"
	"fmt"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/timeseries"
)

// ReadAll returns every daily KPI row sorted by date ascending.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]models.KPIRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, total_revenue, total_orders, unique_customers,
		       avg_order_value, total_items_sold
		FROM daily_kpis
		ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("read daily kpis: %w", err)
	}
	defer rows.Close()

	var out []models.KPIRow
	for rows.Next() {
		var r models.KPIRow
		if err := rows.Scan(&r.Date, &r.TotalRevenue, &r.TotalOrders,
			&r.UniqueCustomers, &r.AvgOrderValue, &r.TotalItemsSold); err != nil {
			return nil, fmt.Errorf("scan daily kpi: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Freshness reports the newest KPI date and the total row count of the
// source table. MAX over an empty table is NULL, not an error.
func (s *PostgresStore) Freshness(ctx context.Context) (models.Freshness, error) {
	var f models.Freshness
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date), COUNT(*) FROM daily_kpis`,
	).Scan(&last, &f.TotalRecords)
	if err != nil {
		return f, fmt.Errorf("read freshness: %w", err)
	}
	if last.Valid {
		d := timeseries.Day(last.Time)
		f.LastDataDate = &d
	}
	return f, nil
}
