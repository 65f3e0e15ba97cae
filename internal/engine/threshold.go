package engine

import (
	"github.com/pmmstack/pmm-engine/internal/models"
)

// ThresholdEvaluator compares metric points against their configured bands.
// It emits at most one alert per evaluation and performs no deduplication
// against existing active alerts; that policy belongs to the caller.
type ThresholdEvaluator struct {
	bands map[string]models.MetricBand
}

// severityTier pairs a band threshold with the severity it maps to. Tiers
// are checked in order, most severe first.
type severityTier struct {
	threshold func(models.MetricBand) float64
	severity  models.Severity
	alertType string
}

var severityTiers = []severityTier{
	{func(b models.MetricBand) float64 { return b.CriticalThreshold }, models.SeverityCritical, "critical_threshold_breach"},
	{func(b models.MetricBand) float64 { return b.AlertThreshold }, models.SeverityHigh, "threshold_breach"},
}

// NewThresholdEvaluator indexes the configured bands by metric name.
func NewThresholdEvaluator(bands []models.MetricBand) *ThresholdEvaluator {
	indexed := make(map[string]models.MetricBand, len(bands))
	for _, b := range bands {
		indexed[b.MetricName] = b
	}
	return &ThresholdEvaluator{bands: indexed}
}

// Band returns the configured band for a metric, if any.
func (e *ThresholdEvaluator) Band(metricName string) (models.MetricBand, bool) {
	b, ok := e.bands[metricName]
	return b, ok
}

// Evaluate checks a point against its band. The returned alert carries no
// identifier; the caller assigns one when recording it. ok is false when the
// metric has no band or the value stays inside it.
func (e *ThresholdEvaluator) Evaluate(point models.MetricPoint) (models.Alert, bool) {
	band, found := e.bands[point.MetricName]
	if !found {
		return models.Alert{}, false
	}

	for _, tier := range severityTiers {
		if !breaches(point.Value, tier.threshold(band), band.Direction) {
			continue
		}
		return models.Alert{
			Timestamp:    point.Timestamp,
			Severity:     tier.severity,
			AlertType:    tier.alertType,
			MetricName:   point.MetricName,
			CurrentValue: point.Value,
			Threshold:    tier.threshold(band),
		}, true
	}
	return models.Alert{}, false
}

// breaches is direction-aware: lower-is-better metrics breach above the
// threshold, higher-is-better metrics breach below it.
func breaches(value, threshold float64, direction models.BandDirection) bool {
	if direction == models.HigherIsBetter {
		return value < threshold
	}
	return value > threshold
}
