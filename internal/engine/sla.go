package engine

import (
	"fmt"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

// SLATargets holds the fixed service-level targets per performance
// dimension. Latencies are upper bounds, availability and throughput lower
// bounds, error rate an upper bound.
type SLATargets struct {
	ResponseTimeAvgMs float64 `yaml:"responseTimeAvgMs"`
	ResponseTimeP95Ms float64 `yaml:"responseTimeP95Ms"`
	AvailabilityPct   float64 `yaml:"availabilityPct"`
	ErrorRatePct      float64 `yaml:"errorRatePct"`
	ThroughputRPS     float64 `yaml:"throughputRPS"`
}

// DefaultSLATargets returns the standard service-level targets.
func DefaultSLATargets() SLATargets {
	return SLATargets{
		ResponseTimeAvgMs: 200,
		ResponseTimeP95Ms: 500,
		AvailabilityPct:   99.9,
		ErrorRatePct:      1.0,
		ThroughputRPS:     100,
	}
}

// SLAEvaluator checks period aggregates of performance snapshots against the
// configured targets.
type SLAEvaluator struct {
	targets   SLATargets
	snapshots *store.SnapshotStore
	now       func() time.Time
}

// NewSLAEvaluator wires the evaluator to its snapshot store. Zero-valued
// targets are replaced with the defaults.
func NewSLAEvaluator(targets SLATargets, snapshots *store.SnapshotStore) *SLAEvaluator {
	if targets == (SLATargets{}) {
		targets = DefaultSLATargets()
	}
	return &SLAEvaluator{targets: targets, snapshots: snapshots, now: time.Now}
}

// slaDimension evaluates one aggregate against its target.
type slaDimension struct {
	name      string
	value     func([]models.PerformanceSnapshot) float64
	target    float64
	compliant func(value, target float64) bool
}

func atMost(value, target float64) bool  { return value <= target }
func atLeast(value, target float64) bool { return value >= target }

// Status aggregates snapshots over the period and reports compliance. A
// period without samples yields status "no_data".
func (e *SLAEvaluator) Status(period time.Duration) models.SLAStatus {
	if period <= 0 {
		period = 24 * time.Hour
	}
	snapshots := e.snapshots.Since(e.now().Add(-period))

	status := models.SLAStatus{
		Period:   formatPeriod(period),
		Metrics:  make(map[string]models.SLAMetric),
		Breaches: []models.SLABreach{},
		Samples:  len(snapshots),
	}
	if len(snapshots) == 0 {
		status.Status = "no_data"
		return status
	}

	dimensions := []slaDimension{
		{"response_time_avg", avgOf(func(s models.PerformanceSnapshot) float64 { return s.ResponseTimeAvg }), e.targets.ResponseTimeAvgMs, atMost},
		{"response_time_p95", avgOf(func(s models.PerformanceSnapshot) float64 { return s.ResponseTimeP95 }), e.targets.ResponseTimeP95Ms, atMost},
		{"availability", avgOf(func(s models.PerformanceSnapshot) float64 { return s.Availability }), e.targets.AvailabilityPct, atLeast},
		{"error_rate", avgOf(func(s models.PerformanceSnapshot) float64 { return s.ErrorRate }), e.targets.ErrorRatePct, atMost},
		{"throughput", avgOf(func(s models.PerformanceSnapshot) float64 { return s.Throughput }), e.targets.ThroughputRPS, atLeast},
	}

	status.Status = "compliant"
	for _, dim := range dimensions {
		value := dim.value(snapshots)
		compliant := dim.compliant(value, dim.target)
		status.Metrics[dim.name] = models.SLAMetric{
			Value:     value,
			Target:    dim.target,
			Compliant: compliant,
		}
		if !compliant {
			status.Status = "breach"
			status.Breaches = append(status.Breaches, models.SLABreach{
				Dimension: dim.name,
				Value:     value,
				Target:    dim.target,
			})
		}
	}
	return status
}

func avgOf(field func(models.PerformanceSnapshot) float64) func([]models.PerformanceSnapshot) float64 {
	return func(snapshots []models.PerformanceSnapshot) float64 {
		values := make([]float64, len(snapshots))
		for i, s := range snapshots {
			values[i] = field(s)
		}
		return mean(values)
	}
}

func formatPeriod(period time.Duration) string {
	if period%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dh", int(period.Hours()))
	}
	return period.String()
}
