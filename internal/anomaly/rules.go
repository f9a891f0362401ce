package anomaly

import (
	"fmt"
	"math"

	"KPIPulse/internal/domain/models"
)

// Flagging thresholds. Either signal alone triggers a flag.
const zFlagThreshold = 2.5

// severityFor buckets an anomaly by z-score or deviation percent,
// whichever lands in a higher tier. The two scales are not
// commensurable; either alone is sufficient for a tier.
func severityFor(zScore, deviationPct float64) string {
	absZ := math.Abs(zScore)
	absDev := math.Abs(deviationPct)
	switch {
	case absZ > 4 || absDev > 50:
		return models.SeverityCritical
	case absZ > 3 || absDev > 30:
		return models.SeverityHigh
	case absZ > 2 || absDev > 15:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// interpretationFor produces the business reading of a flagged day,
// keyed by direction and day type.
func interpretationFor(metric, anomalyType string, isWeekend bool) string {
	switch {
	case anomalyType == models.AnomalyTypeSpike && isWeekend:
		return fmt.Sprintf("Unusual weekend spike in %s; a promotion, event or seasonal surge may be driving demand.", metric)
	case anomalyType == models.AnomalyTypeSpike:
		return fmt.Sprintf("Unexpected weekday spike in %s above the typical weekday pattern.", metric)
	case isWeekend:
		return fmt.Sprintf("Weekend drop in %s below the usual weekend level.", metric)
	default:
		return fmt.Sprintf("Weekday drop in %s below the expected baseline.", metric)
	}
}

// actionFor recommends a response. Weekday drops of high or critical
// severity get the urgent operational check; everything else is
// monitoring guidance.
func actionFor(anomalyType string, isWeekend bool, severity string) string {
	urgent := severity == models.SeverityHigh || severity == models.SeverityCritical
	switch {
	case anomalyType == models.AnomalyTypeDrop && !isWeekend && urgent:
		return "Urgent: verify order pipeline, payment processing and site availability immediately."
	case anomalyType == models.AnomalyTypeDrop && urgent:
		return "Investigate the drop; compare against recent weekends and check for outages."
	case anomalyType == models.AnomalyTypeSpike && urgent:
		return "Confirm the spike is genuine demand and not duplicated or corrupted data; check inventory capacity."
	default:
		return "Monitor over the coming days and acknowledge if the deviation is expected."
	}
}
