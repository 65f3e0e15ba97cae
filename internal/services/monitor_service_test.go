package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pmmstack/pmm-engine/internal/cache"
	"github.com/pmmstack/pmm-engine/internal/config"
	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

// memoryCache is an in-process Provider used to exercise the cache paths.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if data, ok := m.entries[key]; ok {
		return data, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func newTestService(t *testing.T) *MonitorService {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMonitorService(cfg, logger, nil)
}

func TestLogInteractionRequiresID(t *testing.T) {
	s := newTestService(t)
	if _, err := s.LogInteraction(models.Interaction{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLogInteractionRecordsMetricsAndAlerts(t *testing.T) {
	s := newTestService(t)

	summary, err := s.LogInteraction(models.Interaction{
		ID:           "int-1",
		Prompt:       "hello",
		Response:     "hi",
		ResponseTime: 2500,
		Metadata:     map[string]any{"response_accuracy": 0.96, "note": "ignored"},
	})
	if err != nil {
		t.Fatalf("log interaction: %v", err)
	}

	if len(summary.MetricsRecorded) != 2 {
		t.Fatalf("metrics recorded = %v", summary.MetricsRecorded)
	}
	if len(summary.Alerts) != 1 {
		t.Fatalf("alerts = %+v", summary.Alerts)
	}
	if summary.Alerts[0].Severity != models.SeverityCritical {
		t.Fatalf("2500ms should breach the critical response_time band, got %s", summary.Alerts[0].Severity)
	}

	current := s.CurrentMetrics()
	if current["response_time"].CurrentValue != 2500 {
		t.Fatalf("current metrics = %+v", current)
	}
	if current["response_accuracy"].CurrentValue != 0.96 {
		t.Fatalf("metadata metric not promoted: %+v", current)
	}
}

func TestSubmitFeedback(t *testing.T) {
	s := newTestService(t)

	if _, err := s.SubmitFeedback(models.Feedback{Rating: 0}); err == nil {
		t.Fatalf("expected rating validation error")
	}

	fb, err := s.SubmitFeedback(models.Feedback{InteractionID: "int-1", Rating: 5})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if fb.ID == "" {
		t.Fatalf("feedback id not assigned")
	}

	current := s.CurrentMetrics()
	if current["user_satisfaction"].CurrentValue != 5 {
		t.Fatalf("satisfaction metric = %+v", current)
	}
}

func TestSubmitFeedbackLowRatingTriggersAlert(t *testing.T) {
	s := newTestService(t)

	if _, err := s.SubmitFeedback(models.Feedback{InteractionID: "int-1", Rating: 1}); err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	alerts := s.ActiveAlerts()
	if len(alerts) != 1 || alerts[0].MetricName != "user_satisfaction" {
		t.Fatalf("alerts = %+v", alerts)
	}
}

func TestRunDetection(t *testing.T) {
	s := newTestService(t)

	now := time.Now().UTC()
	for i, v := range []float64{10, 9, 8, 7, 6} {
		s.RecordMetric("custom_quality", v, now.Add(time.Duration(i-5)*time.Minute))
	}

	detected := s.RunDetection()
	if len(detected) == 0 {
		t.Fatalf("expected signals from a declining series")
	}

	var pattern bool
	for _, sig := range detected {
		if sig.ID == "" {
			t.Fatalf("signal without id: %+v", sig)
		}
		if sig.Type == models.SignalPatternDetected {
			pattern = true
		}
	}
	if !pattern {
		t.Fatalf("expected pattern signal, got %+v", detected)
	}

	if got := s.ActiveSignals(); len(got) != len(detected) {
		t.Fatalf("active = %d, detected = %d", len(got), len(detected))
	}
}

func TestSignalLifecycle(t *testing.T) {
	s := newTestService(t)

	now := time.Now().UTC()
	for i, v := range []float64{10, 9, 8, 7, 6} {
		s.RecordMetric("custom_quality", v, now.Add(time.Duration(i-5)*time.Minute))
	}
	detected := s.RunDetection()
	if len(detected) == 0 {
		t.Fatalf("expected signals")
	}

	sig, err := s.AcknowledgeSignal(detected[0].ID, "oncall")
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if sig.Status != models.SignalAcknowledged {
		t.Fatalf("status = %s", sig.Status)
	}

	sig, err = s.ResolveSignal(detected[0].ID, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sig.Status != models.SignalResolved {
		t.Fatalf("status = %s", sig.Status)
	}

	if _, err := s.AcknowledgeSignal("SIG-missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestComplaintLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.CreateComplaint(ctx, models.Complaint{}); err == nil {
		t.Fatalf("expected subject validation error")
	}

	created, err := s.CreateComplaint(ctx, models.Complaint{Subject: "bad answer", Category: "accuracy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := s.UpdateComplaint(ctx, created.ID, store.ComplaintUpdateRequest{
		Status: models.ComplaintResolved, Resolution: "fixed prompt",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ResolvedAt == nil {
		t.Fatalf("resolved_at not set")
	}

	if _, err := s.GetComplaint("CMP-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestComplaintAnalyticsUsesCache(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cacheProvider := newMemoryCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewMonitorService(cfg, logger, cacheProvider)
	ctx := context.Background()

	if _, err := s.CreateComplaint(ctx, models.Complaint{Subject: "slow"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := s.ComplaintAnalytics(ctx, 30)
	if first.Total != 1 {
		t.Fatalf("analytics = %+v", first)
	}
	if cacheProvider.sets != 1 {
		t.Fatalf("expected one cache fill, got %d", cacheProvider.sets)
	}

	second := s.ComplaintAnalytics(ctx, 30)
	if second.Total != first.Total {
		t.Fatalf("cached analytics diverged: %+v vs %+v", second, first)
	}
	if cacheProvider.sets != 1 {
		t.Fatalf("cache refilled unexpectedly: %d sets", cacheProvider.sets)
	}
}

func TestCapturePerformanceSnapshotFillsLatencies(t *testing.T) {
	s := newTestService(t)

	for _, ms := range []float64{100, 200, 300} {
		if _, err := s.LogInteraction(models.Interaction{ID: "i", ResponseTime: ms}); err != nil {
			t.Fatalf("log interaction: %v", err)
		}
	}

	snap := s.CapturePerformanceSnapshot(models.PerformanceSnapshot{Availability: 99.95, Throughput: 120})
	if snap.ResponseTimeAvg != 200 {
		t.Fatalf("avg = %f, want 200", snap.ResponseTimeAvg)
	}
	if snap.ResponseTimeP95 == 0 {
		t.Fatalf("p95 not filled")
	}

	status := s.SLAStatus(context.Background(), 24*time.Hour)
	if status.Samples != 1 {
		t.Fatalf("sla samples = %d", status.Samples)
	}
}

func TestOverviewPublishesHealth(t *testing.T) {
	s := newTestService(t)

	overview := s.Overview()
	if overview.HealthScore != 100 || overview.HealthStatus != models.HealthHealthy {
		t.Fatalf("fresh overview = %+v", overview)
	}

	// A critical breach drags the score down.
	s.RecordMetric("error_rate", 10, time.Now().UTC())
	overview = s.Overview()
	if overview.HealthScore != 80 {
		t.Fatalf("score after critical alert = %d, want 80", overview.HealthScore)
	}
	if overview.ActiveAlerts != 1 {
		t.Fatalf("active alerts = %d", overview.ActiveAlerts)
	}
}

func TestRegulatoryReportFlow(t *testing.T) {
	s := newTestService(t)

	rep := s.GenerateReport(models.ReportPeriodic, 7)
	if rep.ID == "" {
		t.Fatalf("report id missing")
	}

	if got := s.Reports("", ""); len(got) != 1 {
		t.Fatalf("reports = %d", len(got))
	}
	fetched, err := s.Report(rep.ID)
	if err != nil || fetched.ID != rep.ID {
		t.Fatalf("report fetch = %+v err=%v", fetched, err)
	}
	if _, err := s.Report("REG-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	status := s.ComplianceStatus()
	if status.OverallStatus != "compliant" {
		t.Fatalf("compliance = %+v", status)
	}
}
