package engine

import (
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

// Health score deductions per active signal/alert severity, and the status
// breakpoints. The breakpoints are a documented policy choice: >=90 healthy,
// >=70 warning, >=50 degraded, below that critical.
const (
	signalCriticalPenalty = 15
	signalHighPenalty     = 10
	signalOtherPenalty    = 5

	alertCriticalPenalty = 20
	alertHighPenalty     = 10

	healthyFloor  = 90
	warningFloor  = 70
	degradedFloor = 50
)

// HealthAggregator combines active signals, alerts, complaints, and metric
// trends into dashboard summaries. The score is recomputed from current
// state on every call and never persisted.
type HealthAggregator struct {
	metrics      *store.MetricStore
	signals      *store.SignalStore
	alerts       *store.AlertStore
	complaints   *store.ComplaintStore
	interactions *store.InteractionStore
	feedback     *store.FeedbackStore
	trends       *TrendAnalyzer
	trendWindow  time.Duration
	now          func() time.Time
}

// NewHealthAggregator wires the aggregator to its record stores.
func NewHealthAggregator(
	metrics *store.MetricStore,
	signals *store.SignalStore,
	alerts *store.AlertStore,
	complaints *store.ComplaintStore,
	interactions *store.InteractionStore,
	feedback *store.FeedbackStore,
	trends *TrendAnalyzer,
	trendWindow time.Duration,
) *HealthAggregator {
	if trends == nil {
		trends = NewTrendAnalyzer(0)
	}
	if trendWindow <= 0 {
		trendWindow = 24 * time.Hour
	}
	return &HealthAggregator{
		metrics:      metrics,
		signals:      signals,
		alerts:       alerts,
		complaints:   complaints,
		interactions: interactions,
		feedback:     feedback,
		trends:       trends,
		trendWindow:  trendWindow,
		now:          time.Now,
	}
}

// Score computes the bounded health score from the given active sets.
func Score(signals []models.Signal, alerts []models.Alert) int {
	score := 100
	for _, sig := range signals {
		switch sig.Severity {
		case models.SeverityCritical:
			score -= signalCriticalPenalty
		case models.SeverityHigh:
			score -= signalHighPenalty
		default:
			score -= signalOtherPenalty
		}
	}
	for _, a := range alerts {
		switch a.Severity {
		case models.SeverityCritical:
			score -= alertCriticalPenalty
		case models.SeverityHigh:
			score -= alertHighPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// StatusFor maps a score onto the ordered status breakpoints.
func StatusFor(score int) models.HealthStatus {
	switch {
	case score >= healthyFloor:
		return models.HealthHealthy
	case score >= warningFloor:
		return models.HealthWarning
	case score >= degradedFloor:
		return models.HealthDegraded
	default:
		return models.HealthCritical
	}
}

// Overview builds the dashboard summary from the current record stores.
func (h *HealthAggregator) Overview() models.Overview {
	now := h.now().UTC()

	activeSignals := h.signals.Active()
	activeAlerts := h.alerts.Active()
	score := Score(activeSignals, activeAlerts)

	names := h.metrics.Names()
	trendsSummary := make(map[string]models.TrendSummary, len(names))
	for _, name := range names {
		window := h.metrics.Window(name, h.trendWindow)
		if len(window) == 0 {
			continue
		}
		analysis := h.trends.Analyze(name, window)
		trendsSummary[name] = models.TrendSummary{
			Direction: analysis.Direction,
			Current:   analysis.CurrentValue,
		}
	}

	return models.Overview{
		Timestamp:      now,
		HealthScore:    score,
		HealthStatus:   StatusFor(score),
		ActiveSignals:  len(activeSignals),
		ActiveAlerts:   len(activeAlerts),
		OpenComplaints: h.complaints.OpenCount(),
		FeedbackToday:  len(h.feedback.Since(now.Add(-24 * time.Hour))),
		MetricsTracked: len(names),
		TrendsSummary:  trendsSummary,
	}
}

// KPIs compiles the rolling-window key performance indicators.
func (h *HealthAggregator) KPIs() models.KPIReport {
	now := h.now().UTC()
	last24h := now.Add(-24 * time.Hour)
	last7d := now.Add(-7 * 24 * time.Hour)

	interactions7d := h.interactions.CountSince(last7d)
	feedback7d := h.feedback.Since(last7d)

	var ratingSum, satisfied int
	for _, fb := range feedback7d {
		ratingSum += fb.Rating
		if fb.Rating >= 4 {
			satisfied++
		}
	}
	var avgRating, satisfactionRate float64
	if len(feedback7d) > 0 {
		avgRating = float64(ratingSum) / float64(len(feedback7d))
		satisfactionRate = float64(satisfied) / float64(len(feedback7d)) * 100
	}

	currentMetrics := make(map[string]float64)
	for _, name := range h.metrics.Names() {
		if latest, ok := h.metrics.Latest(name); ok {
			currentMetrics[name] = latest.Value
		}
	}

	return models.KPIReport{
		Timestamp: now,
		Interactions: models.InteractionKPIs{
			Last24h:   h.interactions.CountSince(last24h),
			Last7d:    interactions7d,
			AvgPerDay: float64(interactions7d) / 7,
		},
		Feedback: models.FeedbackKPIs{
			Count7d:          len(feedback7d),
			AvgRating:        avgRating,
			SatisfactionRate: satisfactionRate,
		},
		Metrics: currentMetrics,
		Alerts: models.AlertKPIs{
			Active:  len(h.alerts.Active()),
			Last24h: len(h.alerts.Since(last24h)),
		},
		Signals: models.SignalKPIs{
			Active:     len(h.signals.Active()),
			Detected7d: len(h.signals.List("", last7d)),
		},
	}
}
