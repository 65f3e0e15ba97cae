package engine

import (
	"testing"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

func signalWith(severity models.Severity) models.Signal {
	return models.Signal{Type: models.SignalAnomaly, Severity: severity, MetricName: "m"}
}

func alertWith(severity models.Severity) models.Alert {
	return models.Alert{Severity: severity, AlertType: "threshold_breach", MetricName: "m"}
}

func TestScoreDeductions(t *testing.T) {
	signals := []models.Signal{signalWith(models.SeverityCritical)}
	alerts := []models.Alert{alertWith(models.SeverityHigh)}

	if got := Score(signals, alerts); got != 75 {
		t.Fatalf("score = %d, want 75", got)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	var signals []models.Signal
	for i := 0; i < 10; i++ {
		signals = append(signals, signalWith(models.SeverityCritical))
	}
	if got := Score(signals, nil); got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestScoreEmptyState(t *testing.T) {
	if got := Score(nil, nil); got != 100 {
		t.Fatalf("score = %d, want 100", got)
	}
}

func TestScoreLowSeveritySignal(t *testing.T) {
	signals := []models.Signal{signalWith(models.SeverityLow), signalWith(models.SeverityMedium)}
	if got := Score(signals, nil); got != 90 {
		t.Fatalf("score = %d, want 90", got)
	}
}

func TestStatusForBreakpoints(t *testing.T) {
	cases := []struct {
		score int
		want  models.HealthStatus
	}{
		{100, models.HealthHealthy},
		{90, models.HealthHealthy},
		{89, models.HealthWarning},
		{70, models.HealthWarning},
		{69, models.HealthDegraded},
		{50, models.HealthDegraded},
		{49, models.HealthCritical},
		{0, models.HealthCritical},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.score); got != tc.want {
			t.Fatalf("StatusFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func newTestAggregator() (*HealthAggregator, *store.MetricStore, *store.SignalStore, *store.AlertStore, *store.FeedbackStore) {
	metrics := store.NewMetricStore(24 * time.Hour)
	signals := store.NewSignalStore()
	alerts := store.NewAlertStore(24 * time.Hour)
	complaints := store.NewComplaintStore()
	interactions := store.NewInteractionStore(100)
	feedback := store.NewFeedbackStore(100)

	h := NewHealthAggregator(metrics, signals, alerts, complaints, interactions, feedback,
		NewTrendAnalyzer(0), 24*time.Hour)
	return h, metrics, signals, alerts, feedback
}

func TestOverviewReflectsActiveState(t *testing.T) {
	h, metrics, signals, alerts, _ := newTestAggregator()

	now := time.Now().UTC()
	metrics.Append("response_time", 120, now.Add(-2*time.Minute))
	metrics.Append("response_time", 130, now.Add(-time.Minute))

	signals.Insert(signalWith(models.SeverityCritical))
	alerts.Insert(alertWith(models.SeverityHigh))

	overview := h.Overview()
	if overview.HealthScore != 75 {
		t.Fatalf("health score = %d, want 75", overview.HealthScore)
	}
	if overview.HealthStatus != models.HealthWarning {
		t.Fatalf("health status = %s", overview.HealthStatus)
	}
	if overview.ActiveSignals != 1 || overview.ActiveAlerts != 1 {
		t.Fatalf("active counts = %d/%d", overview.ActiveSignals, overview.ActiveAlerts)
	}
	if overview.MetricsTracked != 1 {
		t.Fatalf("metrics tracked = %d", overview.MetricsTracked)
	}
	if _, ok := overview.TrendsSummary["response_time"]; !ok {
		t.Fatalf("missing trend summary for response_time")
	}
}

func TestOverviewAcknowledgedSignalRestoresScore(t *testing.T) {
	h, _, signals, _, _ := newTestAggregator()

	stored := signals.Insert(signalWith(models.SeverityCritical))
	if h.Overview().HealthScore != 85 {
		t.Fatalf("expected deduction while active")
	}

	signals.Acknowledge(stored.ID, "oncall")
	if got := h.Overview().HealthScore; got != 100 {
		t.Fatalf("score after acknowledge = %d, want 100", got)
	}
}

func TestKPIs(t *testing.T) {
	h, _, _, _, feedback := newTestAggregator()

	now := time.Now().UTC()
	ratings := []int{5, 4, 2, 5}
	for i, r := range ratings {
		feedback.Add(models.Feedback{
			ID:        "fb",
			Rating:    r,
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	kpis := h.KPIs()
	if kpis.Feedback.Count7d != 4 {
		t.Fatalf("feedback count = %d", kpis.Feedback.Count7d)
	}
	if kpis.Feedback.AvgRating != 4 {
		t.Fatalf("avg rating = %f", kpis.Feedback.AvgRating)
	}
	if kpis.Feedback.SatisfactionRate != 75 {
		t.Fatalf("satisfaction rate = %f", kpis.Feedback.SatisfactionRate)
	}
}
