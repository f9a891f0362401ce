package anomaly

import (
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
)

func constantSeries(n int, value float64) []models.Observation {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Observation, n)
	for i := range out {
		out[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: value}
	}
	return out
}

func TestDetectShortSeriesReturnsEmpty(t *testing.T) {
	for _, contamination := range []float64{0.01, 0.1, 0.5} {
		d := NewDetector(contamination, "2.0.0")
		if got := d.Detect("total_orders", constantSeries(13, 100)); len(got) != 0 {
			t.Fatalf("Detect on 13 days with contamination %v = %d rows, want 0", contamination, len(got))
		}
	}
}

func TestDetectFlatSeriesNoFlags(t *testing.T) {
	d := NewDetector(0.1, "2.0.0")
	got := d.Detect("total_revenue", constantSeries(60, 100))
	if len(got) != 0 {
		t.Fatalf("Detect on flat series = %d rows, want 0", len(got))
	}
}

func TestDetectSingleSpikeFlaggedCritical(t *testing.T) {
	series := constantSeries(60, 100)
	series[30].Value = 1000

	d := NewDetector(0.1, "2.0.0")
	got := d.Detect("total_revenue", series)
	if len(got) == 0 {
		t.Fatal("Detect returned no rows, want the spike flagged")
	}

	var spike *models.AnomalyRecord
	for i := range got {
		if got[i].MetricDate.Equal(series[30].Date) {
			spike = &got[i]
			break
		}
	}
	if spike == nil {
		t.Fatal("spike day not among flagged rows")
	}
	if spike.AnomalyType != models.AnomalyTypeSpike {
		t.Fatalf("AnomalyType = %s, want spike", spike.AnomalyType)
	}
	if spike.Severity != models.SeverityCritical {
		t.Fatalf("Severity = %s, want critical", spike.Severity)
	}
	if spike.ActualValue != 1000 {
		t.Fatalf("ActualValue = %v, want 1000", spike.ActualValue)
	}
	if spike.DeviationPct <= 50 {
		t.Fatalf("DeviationPct = %v, want > 50", spike.DeviationPct)
	}
}

func TestDetectDeterministic(t *testing.T) {
	series := constantSeries(90, 200)
	series[40].Value = 950
	series[70].Value = 10

	first := NewDetector(0.1, "2.0.0").Detect("total_orders", series)
	second := NewDetector(0.1, "2.0.0").Detect("total_orders", series)
	if len(first) != len(second) {
		t.Fatalf("runs differ: %d vs %d rows", len(first), len(second))
	}
	for i := range first {
		if !first[i].MetricDate.Equal(second[i].MetricDate) || first[i].Severity != second[i].Severity {
			t.Fatalf("row %d differs between runs", i)
		}
	}
}

func TestDetectDropGetsDropType(t *testing.T) {
	series := constantSeries(60, 500)
	series[45].Value = 5

	got := NewDetector(0.1, "2.0.0").Detect("total_orders", series)
	var drop *models.AnomalyRecord
	for i := range got {
		if got[i].MetricDate.Equal(series[45].Date) {
			drop = &got[i]
			break
		}
	}
	if drop == nil {
		t.Fatal("drop day not flagged")
	}
	if drop.AnomalyType != models.AnomalyTypeDrop {
		t.Fatalf("AnomalyType = %s, want drop", drop.AnomalyType)
	}
}

func TestDayOfWeekMapping(t *testing.T) {
	// 2024-01-01 is a Monday.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := dayOfWeek(monday); got != 0 {
		t.Fatalf("dayOfWeek(Monday) = %d, want 0", got)
	}
	sunday := monday.AddDate(0, 0, 6)
	if got := dayOfWeek(sunday); got != 6 {
		t.Fatalf("dayOfWeek(Sunday) = %d, want 6", got)
	}
	if !isWeekend(sunday) || isWeekend(monday) {
		t.Fatal("weekend tagging wrong")
	}
}

func TestSeverityTiers(t *testing.T) {
	cases := []struct {
		z, dev float64
		want   string
	}{
		{4.5, 0, models.SeverityCritical},
		{0, 60, models.SeverityCritical},
		{3.5, 0, models.SeverityHigh},
		{0, 35, models.SeverityHigh},
		{2.2, 0, models.SeverityMedium},
		{0, 20, models.SeverityMedium},
		{1.0, 10, models.SeverityLow},
		{-4.5, 0, models.SeverityCritical},
		{0, -60, models.SeverityCritical},
	}
	for _, tc := range cases {
		if got := severityFor(tc.z, tc.dev); got != tc.want {
			t.Fatalf("severityFor(%v, %v) = %s, want %s", tc.z, tc.dev, got, tc.want)
		}
	}
}

func TestActionUrgencyForWeekdayDrop(t *testing.T) {
	urgent := actionFor(models.AnomalyTypeDrop, false, models.SeverityCritical)
	monitor := actionFor(models.AnomalyTypeDrop, false, models.SeverityLow)
	if urgent == monitor {
		t.Fatal("urgent weekday drop should not share wording with low severity")
	}
}
