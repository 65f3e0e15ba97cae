package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// DetectorFunc is an extension hook for additional signal algorithms
// (drift, external threshold sweeps). All hooks run on the same window as
// the built-in detectors.
type DetectorFunc func(metricName string, points []models.MetricPoint) []models.Signal

// SignalDetector runs the anomaly, trend-change, and pattern algorithms over
// a metric window. The three algorithms are independent; each may emit a
// signal on the same pass. The detector is stateless and safe for concurrent
// use across metrics.
type SignalDetector struct {
	anomalyZ       float64
	trendChangePct float64
	patternRun     int
	extra          []DetectorFunc
	now            func() time.Time
}

// NewSignalDetector creates a detector with the given thresholds. Zero
// values fall back to the defaults: z-score 2.0, trend change 15%, pattern
// run length 4.
func NewSignalDetector(anomalyZ, trendChangePct float64, patternRun int) *SignalDetector {
	if anomalyZ <= 0 {
		anomalyZ = 2.0
	}
	if trendChangePct <= 0 {
		trendChangePct = 0.15
	}
	if patternRun <= 0 {
		patternRun = 4
	}
	return &SignalDetector{
		anomalyZ:       anomalyZ,
		trendChangePct: trendChangePct,
		patternRun:     patternRun,
		now:            time.Now,
	}
}

// Register adds an extension detector. Not safe to call concurrently with
// Detect.
func (d *SignalDetector) Register(fn DetectorFunc) {
	d.extra = append(d.extra, fn)
}

// Detect runs every algorithm over the chronological window and returns the
// emitted signals. Undersized windows silently produce nothing.
func (d *SignalDetector) Detect(metricName string, points []models.MetricPoint) []models.Signal {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	var signals []models.Signal
	if sig, ok := d.detectAnomaly(metricName, values); ok {
		signals = append(signals, sig)
	}
	if sig, ok := d.detectTrendChange(metricName, values); ok {
		signals = append(signals, sig)
	}
	if sig, ok := d.detectPattern(metricName, values); ok {
		signals = append(signals, sig)
	}
	for _, fn := range d.extra {
		signals = append(signals, fn(metricName, points)...)
	}
	return signals
}

// detectAnomaly compares the latest value against the distribution of the
// preceding window using a z-score. Zero variance means no anomaly is
// possible.
func (d *SignalDetector) detectAnomaly(metricName string, values []float64) (models.Signal, bool) {
	if len(values) < 3 {
		return models.Signal{}, false
	}

	latest := values[len(values)-1]
	historical := values[:len(values)-1]

	mu := mean(historical)
	sigma := sampleStd(historical)
	if sigma == 0 {
		return models.Signal{}, false
	}

	z := math.Abs(latest-mu) / sigma
	if z <= d.anomalyZ {
		return models.Signal{}, false
	}

	severity := models.SeverityMedium
	if z > 3.0 {
		severity = models.SeverityHigh
	}
	deviation := 0.0
	if mu != 0 {
		deviation = (latest - mu) / mu * 100
	}

	return models.Signal{
		Timestamp:     d.now().UTC(),
		Type:          models.SignalAnomaly,
		Severity:      severity,
		MetricName:    metricName,
		DetectedValue: latest,
		ExpectedValue: mu,
		DeviationPct:  deviation,
		Confidence:    clamp(z/4, 0, 1),
		Status:        models.SignalActive,
		Description: fmt.Sprintf("anomaly: %s = %.4f (expected ~%.4f, z-score %.2f)",
			metricName, latest, mu, z),
	}, true
}

// detectTrendChange splits the window into two contiguous halves by count
// and compares their means.
func (d *SignalDetector) detectTrendChange(metricName string, values []float64) (models.Signal, bool) {
	pct, ok := halfSplitChange(values)
	if !ok || math.Abs(pct) <= d.trendChangePct {
		return models.Signal{}, false
	}

	direction := models.TrendIncreasing
	if pct < 0 {
		direction = models.TrendDecreasing
	}

	mid := len(values) / 2
	earlier := mean(values[:mid])
	later := mean(values[mid:])

	return models.Signal{
		Timestamp:     d.now().UTC(),
		Type:          models.SignalTrendChange,
		Severity:      models.SeverityMedium,
		MetricName:    metricName,
		DetectedValue: later,
		ExpectedValue: earlier,
		DeviationPct:  pct * 100,
		Confidence:    clamp(math.Abs(pct)/0.5, 0, 1),
		Status:        models.SignalActive,
		Description: fmt.Sprintf("trend change: %s is %s (%+.1f%% between window halves)",
			metricName, direction, pct*100),
	}, true
}

// detectPattern scans for a monotonic decline: a run of patternRun or more
// consecutive drops, each point strictly below its predecessor.
func (d *SignalDetector) detectPattern(metricName string, values []float64) (models.Signal, bool) {
	bestLen, bestEnd := 0, 0
	run := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			run++
			if run > bestLen {
				bestLen, bestEnd = run, i
			}
		} else {
			run = 0
		}
	}
	if bestLen < d.patternRun {
		return models.Signal{}, false
	}

	start := values[bestEnd-bestLen]
	end := values[bestEnd]
	deviation := 0.0
	if start != 0 {
		deviation = (end - start) / start * 100
	}

	return models.Signal{
		Timestamp:     d.now().UTC(),
		Type:          models.SignalPatternDetected,
		Severity:      models.SeverityMedium,
		MetricName:    metricName,
		DetectedValue: end,
		ExpectedValue: start,
		DeviationPct:  deviation,
		Confidence:    0.8,
		Status:        models.SignalActive,
		Description: fmt.Sprintf("pattern: %s declining for %d consecutive readings (%.4f -> %.4f)",
			metricName, bestLen, start, end),
	}, true
}
