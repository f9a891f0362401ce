package timeseries

import (
	"fmt"
	"sort"
	"time"

	"KPIPulse/internal/domain/models"
)

// InsufficientDataError reports that a series is too short for the
// requested operation, with the exact minimum required.
type InsufficientDataError struct {
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d observations, have %d", e.Need, e.Have)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Daily normalizes sparse (date, value) pairs into a gap-free daily
// series spanning min..max date. Missing days are filled with zero,
// never dropped. Duplicate dates keep the last value seen.
func Daily(obs []models.Observation) ([]models.Observation, error) {
	if len(obs) == 0 {
		return nil, &InsufficientDataError{Need: 1, Have: 0}
	}

	byDay := make(map[time.Time]float64, len(obs))
	for _, o := range obs {
		byDay[Day(o.Date)] = o.Value
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, last := days[0], days[len(days)-1]
	n := int(last.Sub(first).Hours()/24) + 1

	out := make([]models.Observation, 0, n)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, models.Observation{Date: d, Value: byDay[d]})
	}
	return out, nil
}

// Values extracts the value column of a series.
func Values(obs []models.Observation) []float64 {
	vals := make([]float64, len(obs))
	for i, o := range obs {
		vals[i] = o.Value
	}
	return vals
}
