package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pmmstack/pmm-engine/internal/cache"
	"github.com/pmmstack/pmm-engine/internal/config"
	"github.com/pmmstack/pmm-engine/internal/engine"
	"github.com/pmmstack/pmm-engine/internal/metrics"
	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/report"
	"github.com/pmmstack/pmm-engine/internal/store"
	"github.com/pmmstack/pmm-engine/internal/utils"
)

// IngestSummary reports what one ingested interaction produced.
type IngestSummary struct {
	InteractionID   string          `json:"interaction_id"`
	MetricsRecorded []string        `json:"metrics_recorded"`
	Alerts          []models.Alert  `json:"alerts_triggered"`
	Signals         []models.Signal `json:"signals,omitempty"`
}

// ErrNotFound is wrapped by lookup failures so handlers can map them to
// the right response code.
var ErrNotFound = errors.New("not found")

// MonitorService is the facade over the record stores and analysis engines.
// API handlers and the detection scheduler call into it; it owns no
// goroutines of its own.
type MonitorService struct {
	cfg    *config.Config
	logger *slog.Logger

	metricStore  *store.MetricStore
	signals      *store.SignalStore
	alerts       *store.AlertStore
	complaints   *store.ComplaintStore
	interactions *store.InteractionStore
	feedback     *store.FeedbackStore
	snapshots    *store.SnapshotStore

	thresholds        *engine.ThresholdEvaluator
	detector          *engine.SignalDetector
	trends            *engine.TrendAnalyzer
	health            *engine.HealthAggregator
	complaintAnalyzer *engine.ComplaintAnalyzer
	sla               *engine.SLAEvaluator
	reporter          *report.Reporter

	latencies *utils.LatencyTracker
	cache     cache.Provider

	now func() time.Time
}

// NewMonitorService assembles the stores and engines from configuration.
// The cache provider may be nil, in which case caching is disabled.
func NewMonitorService(cfg *config.Config, logger *slog.Logger, cacheProvider cache.Provider) *MonitorService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}

	metricStore := store.NewMetricStore(cfg.Retention.MetricWindow)
	signals := store.NewSignalStore()
	alerts := store.NewAlertStore(cfg.Retention.AlertWindow)
	complaints := store.NewComplaintStore()
	interactions := store.NewInteractionStore(cfg.Retention.ActivityLimit)
	feedback := store.NewFeedbackStore(cfg.Retention.ActivityLimit)
	snapshots := store.NewSnapshotStore(cfg.Retention.SnapshotLimit)

	trends := engine.NewTrendAnalyzer(cfg.Detection.TrendChangePct)

	return &MonitorService{
		cfg:          cfg,
		logger:       logger,
		metricStore:  metricStore,
		signals:      signals,
		alerts:       alerts,
		complaints:   complaints,
		interactions: interactions,
		feedback:     feedback,
		snapshots:    snapshots,
		thresholds:   engine.NewThresholdEvaluator(cfg.Bands),
		detector: engine.NewSignalDetector(
			cfg.Detection.AnomalyZScore,
			cfg.Detection.TrendChangePct,
			cfg.Detection.PatternRunLength,
		),
		trends: trends,
		health: engine.NewHealthAggregator(
			metricStore, signals, alerts, complaints, interactions, feedback,
			trends, cfg.Retention.MetricWindow,
		),
		complaintAnalyzer: engine.NewComplaintAnalyzer(complaints),
		sla:               engine.NewSLAEvaluator(cfg.SLA, snapshots),
		reporter:          report.NewReporter(metricStore, alerts),
		latencies:         utils.NewLatencyTracker(cfg.Retention.ActivityLimit),
		cache:             cacheProvider,
		now:               time.Now,
	}
}

// RegisterDetector adds an extension detector to the detection pass. Must be
// called before the service starts serving.
func (s *MonitorService) RegisterDetector(fn engine.DetectorFunc) {
	s.detector.Register(fn)
}

// LogInteraction records one monitored exchange, derives metric points from
// it, and evaluates thresholds on every derived point. When detection on
// ingest is enabled, a detection pass over the affected metrics runs
// synchronously.
func (s *MonitorService) LogInteraction(in models.Interaction) (IngestSummary, error) {
	if in.ID == "" {
		return IngestSummary{}, utils.NewAppError("LogInteraction", "interaction_id is required", nil)
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = s.now().UTC()
	}

	s.interactions.Add(in)
	s.latencies.Observe(in.ResponseTime)
	metrics.ObserveIngest("interaction")

	summary := IngestSummary{InteractionID: in.ID}

	record := func(name string, value float64) {
		summary.MetricsRecorded = append(summary.MetricsRecorded, name)
		summary.Alerts = append(summary.Alerts, s.RecordMetric(name, value, in.Timestamp)...)
	}

	record("response_time", in.ResponseTime)
	for key, raw := range in.Metadata {
		if value, ok := numericValue(raw); ok {
			record(key, value)
		}
	}

	if s.cfg.Detection.OnIngest {
		for _, name := range summary.MetricsRecorded {
			summary.Signals = append(summary.Signals, s.detectMetric(name)...)
		}
	}
	return summary, nil
}

// SubmitFeedback records a user rating and feeds it into the
// user_satisfaction series.
func (s *MonitorService) SubmitFeedback(fb models.Feedback) (models.Feedback, error) {
	if fb.Rating < 1 || fb.Rating > 5 {
		return models.Feedback{}, utils.NewAppError("SubmitFeedback",
			fmt.Sprintf("rating must be 1-5, got %d", fb.Rating), nil)
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = s.now().UTC()
	}

	s.feedback.Add(fb)
	metrics.ObserveIngest("feedback")
	s.RecordMetric("user_satisfaction", float64(fb.Rating), fb.Timestamp)
	return fb, nil
}

// RecordMetric appends a point to the named series and evaluates its
// threshold band. Triggered alerts are recorded and returned.
func (s *MonitorService) RecordMetric(name string, value float64, ts time.Time) []models.Alert {
	if ts.IsZero() {
		ts = s.now().UTC()
	}
	s.metricStore.Append(name, value, ts)
	metrics.ObserveIngest("metric")

	point := models.MetricPoint{MetricName: name, Value: value, Timestamp: ts}
	alert, breached := s.thresholds.Evaluate(point)
	if !breached {
		return nil
	}

	stored := s.alerts.Insert(alert)
	metrics.ObserveAlert(string(stored.Severity))
	s.logger.Warn("threshold alert triggered",
		"alert_id", stored.ID,
		"metric", stored.MetricName,
		"value", stored.CurrentValue,
		"threshold", stored.Threshold,
		"severity", stored.Severity,
	)
	return []models.Alert{stored}
}

// CapturePerformanceSnapshot appends a snapshot to the performance series.
// Zero latency fields are filled from the live latency tracker.
func (s *MonitorService) CapturePerformanceSnapshot(snap models.PerformanceSnapshot) models.PerformanceSnapshot {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now().UTC()
	}
	if snap.ResponseTimeAvg == 0 {
		snap.ResponseTimeAvg = s.latencies.Average()
	}
	if snap.ResponseTimeP95 == 0 {
		snap.ResponseTimeP95 = s.latencies.Percentile(95)
	}

	s.snapshots.Add(snap)
	metrics.ObserveIngest("snapshot")
	return snap
}

// RunDetection runs one detection pass over every tracked metric and records
// the emitted signals.
func (s *MonitorService) RunDetection() []models.Signal {
	started := s.now()

	var detected []models.Signal
	for _, name := range s.metricStore.Names() {
		detected = append(detected, s.detectMetric(name)...)
	}

	metrics.ObserveDetectionPass(s.now().Sub(started))
	if len(detected) > 0 {
		s.logger.Info("detection pass complete", "signals", len(detected))
	}
	return detected
}

func (s *MonitorService) detectMetric(name string) []models.Signal {
	window := s.metricStore.Window(name, s.cfg.Detection.Window)
	raw := s.detector.Detect(name, window)

	out := make([]models.Signal, 0, len(raw))
	for _, sig := range raw {
		stored := s.signals.Insert(sig)
		metrics.ObserveSignal(string(stored.Type), string(stored.Severity))
		s.logger.Info("signal detected",
			"signal_id", stored.ID,
			"type", stored.Type,
			"metric", stored.MetricName,
			"severity", stored.Severity,
			"confidence", stored.Confidence,
		)
		out = append(out, stored)
	}
	return out
}

// CurrentMetrics returns the latest value and recent average per tracked
// metric.
func (s *MonitorService) CurrentMetrics() map[string]models.CurrentMetric {
	out := make(map[string]models.CurrentMetric)
	for _, name := range s.metricStore.Names() {
		latest, ok := s.metricStore.Latest(name)
		if !ok {
			continue
		}
		window := s.metricStore.Window(name, time.Hour)
		var sum float64
		for _, p := range window {
			sum += p.Value
		}
		avg := 0.0
		if len(window) > 0 {
			avg = sum / float64(len(window))
		}
		out[name] = models.CurrentMetric{
			CurrentValue:  latest.Value,
			RecentAverage: avg,
			Samples:       len(window),
		}
	}
	return out
}

// MetricWindow returns the stored points for one metric over the duration.
func (s *MonitorService) MetricWindow(name string, period time.Duration) []models.MetricPoint {
	return s.metricStore.Window(name, period)
}

// ActiveSignals returns signals still in the active state.
func (s *MonitorService) ActiveSignals() []models.Signal {
	return s.signals.Active()
}

// SignalHistory returns signals matching the optional status and window
// filters.
func (s *MonitorService) SignalHistory(status models.SignalStatus, since time.Time) []models.Signal {
	return s.signals.List(status, since)
}

// AcknowledgeSignal transitions a signal to acknowledged for the actor.
func (s *MonitorService) AcknowledgeSignal(id, actor string) (models.Signal, error) {
	if !s.signals.Acknowledge(id, actor) {
		return models.Signal{}, utils.NewAppError("AcknowledgeSignal",
			fmt.Sprintf("signal %s not found", id), ErrNotFound)
	}
	sig, _ := s.signals.Get(id)
	return sig, nil
}

// ResolveSignal transitions a signal to resolved or false positive.
func (s *MonitorService) ResolveSignal(id string, falsePositive bool) (models.Signal, error) {
	status := models.SignalResolved
	if falsePositive {
		status = models.SignalFalsePositive
	}
	if !s.signals.SetStatus(id, status) {
		return models.Signal{}, utils.NewAppError("ResolveSignal",
			fmt.Sprintf("signal %s not found", id), ErrNotFound)
	}
	sig, _ := s.signals.Get(id)
	return sig, nil
}

// ActiveAlerts returns unresolved alerts within the activity window.
func (s *MonitorService) ActiveAlerts() []models.Alert {
	return s.alerts.Active()
}

// ResolveAlert marks an alert resolved.
func (s *MonitorService) ResolveAlert(id string) error {
	if !s.alerts.Resolve(id) {
		return utils.NewAppError("ResolveAlert", fmt.Sprintf("alert %s not found", id), ErrNotFound)
	}
	return nil
}

// TrendAll analyses every tracked metric over the retention window.
func (s *MonitorService) TrendAll() map[string]models.TrendAnalysis {
	out := make(map[string]models.TrendAnalysis)
	for _, name := range s.metricStore.Names() {
		out[name] = s.trends.Analyze(name, s.metricStore.Window(name, s.cfg.Retention.MetricWindow))
	}
	return out
}

// TrendFor analyses one metric. ok is false for unknown metrics.
func (s *MonitorService) TrendFor(name string) (models.TrendAnalysis, bool) {
	window := s.metricStore.Window(name, s.cfg.Retention.MetricWindow)
	if len(window) == 0 {
		return models.TrendAnalysis{}, false
	}
	return s.trends.Analyze(name, window), true
}

// Overview builds the dashboard summary and publishes the health score
// gauge.
func (s *MonitorService) Overview() models.Overview {
	overview := s.health.Overview()
	metrics.SetHealthScore(overview.HealthScore)
	return overview
}

// KPIs compiles the rolling-window key performance indicators.
func (s *MonitorService) KPIs() models.KPIReport {
	return s.health.KPIs()
}

// CreateComplaint registers a complaint and invalidates cached analytics.
func (s *MonitorService) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	if c.Subject == "" {
		return models.Complaint{}, utils.NewAppError("CreateComplaint", "subject is required", nil)
	}
	created := s.complaints.Create(c)
	metrics.ObserveIngest("complaint")
	s.invalidateComplaintAnalytics(ctx)
	return created, nil
}

// GetComplaint returns one complaint by id.
func (s *MonitorService) GetComplaint(id string) (models.Complaint, error) {
	c, ok := s.complaints.Get(id)
	if !ok {
		return models.Complaint{}, utils.NewAppError("GetComplaint",
			fmt.Sprintf("complaint %s not found", id), ErrNotFound)
	}
	return c, nil
}

// ListComplaints returns complaints matching the optional filters.
func (s *MonitorService) ListComplaints(status models.ComplaintStatus, priority models.ComplaintPriority, since time.Time) []models.Complaint {
	return s.complaints.List(status, priority, since)
}

// UpdateComplaint applies an update and invalidates cached analytics.
func (s *MonitorService) UpdateComplaint(ctx context.Context, id string, req store.ComplaintUpdateRequest) (models.Complaint, error) {
	if !s.complaints.Update(id, req) {
		return models.Complaint{}, utils.NewAppError("UpdateComplaint",
			fmt.Sprintf("complaint %s not found", id), ErrNotFound)
	}
	s.invalidateComplaintAnalytics(ctx)
	c, _ := s.complaints.Get(id)
	return c, nil
}

// ComplaintAnalytics aggregates complaints over the period, served from
// cache when fresh.
func (s *MonitorService) ComplaintAnalytics(ctx context.Context, periodDays int) models.ComplaintAnalytics {
	if periodDays <= 0 {
		periodDays = 30
	}
	key := complaintAnalyticsKey(periodDays)

	var cached models.ComplaintAnalytics
	if s.cacheGet(ctx, key, &cached) {
		return cached
	}

	analytics := s.complaintAnalyzer.Analytics(periodDays)
	s.cacheSet(ctx, key, analytics, s.cfg.Cache.AnalyticsTTL)
	return analytics
}

// PerformanceRealtime returns the latest snapshot, synthesising one from
// live trackers when the series is empty.
func (s *MonitorService) PerformanceRealtime() models.PerformanceSnapshot {
	if snap, ok := s.snapshots.Latest(); ok {
		return snap
	}
	return models.PerformanceSnapshot{
		Timestamp:       s.now().UTC(),
		ResponseTimeAvg: s.latencies.Average(),
		ResponseTimeP95: s.latencies.Percentile(95),
	}
}

// PerformanceHistory returns snapshots captured within the period.
func (s *MonitorService) PerformanceHistory(period time.Duration) []models.PerformanceSnapshot {
	if period <= 0 {
		period = 24 * time.Hour
	}
	return s.snapshots.Since(s.now().Add(-period))
}

// SLAStatus evaluates the service-level targets over the period, served
// from cache when fresh.
func (s *MonitorService) SLAStatus(ctx context.Context, period time.Duration) models.SLAStatus {
	if period <= 0 {
		period = 24 * time.Hour
	}
	key := fmt.Sprintf("sla:status:%s", period)

	var cached models.SLAStatus
	if s.cacheGet(ctx, key, &cached) {
		return cached
	}

	status := s.sla.Status(period)
	s.cacheSet(ctx, key, status, s.cfg.Cache.SLATTL)
	return status
}

// ComplianceStatus compiles the regulatory requirement checklist.
func (s *MonitorService) ComplianceStatus() models.ComplianceStatus {
	return s.reporter.ComplianceStatus()
}

// GenerateReport compiles and stores a regulatory report.
func (s *MonitorService) GenerateReport(reportType models.ReportType, periodDays int) models.RegulatoryReport {
	rep := s.reporter.Generate(reportType, periodDays)
	s.logger.Info("regulatory report generated", "report_id", rep.ID, "type", rep.Type)
	return rep
}

// Reports lists stored regulatory reports.
func (s *MonitorService) Reports(reportType models.ReportType, status models.ReportStatus) []models.RegulatoryReport {
	return s.reporter.List(reportType, status)
}

// Report returns one regulatory report by id.
func (s *MonitorService) Report(id string) (models.RegulatoryReport, error) {
	rep, ok := s.reporter.Get(id)
	if !ok {
		return models.RegulatoryReport{}, utils.NewAppError("Report",
			fmt.Sprintf("report %s not found", id), ErrNotFound)
	}
	return rep, nil
}

func (s *MonitorService) cacheGet(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Debug("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *MonitorService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

func (s *MonitorService) invalidateComplaintAnalytics(ctx context.Context) {
	// Default query period; other periods age out via TTL.
	if err := s.cache.Del(ctx, complaintAnalyticsKey(30)); err != nil {
		s.logger.Debug("cache invalidation failed", "error", err)
	}
}

func complaintAnalyticsKey(periodDays int) string {
	return fmt.Sprintf("analytics:complaints:%d", periodDays)
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
