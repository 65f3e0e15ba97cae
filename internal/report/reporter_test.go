package report

import (
	"strings"
	"testing"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

func newTestReporter() (*Reporter, *store.MetricStore, *store.AlertStore) {
	metrics := store.NewMetricStore(30 * 24 * time.Hour)
	alerts := store.NewAlertStore(24 * time.Hour)
	return NewReporter(metrics, alerts), metrics, alerts
}

func TestGenerateReport(t *testing.T) {
	r, metrics, alerts := newTestReporter()

	now := time.Now().UTC()
	metrics.Append("response_time", 120, now.Add(-2*time.Hour))
	metrics.Append("response_time", 180, now.Add(-time.Hour))
	alerts.Insert(models.Alert{Severity: models.SeverityCritical, AlertType: "critical_threshold_breach", MetricName: "response_time"})
	alerts.Insert(models.Alert{Severity: models.SeverityHigh, AlertType: "threshold_breach", MetricName: "error_rate"})

	rep := r.Generate(models.ReportPeriodic, 30)

	if !strings.HasPrefix(rep.ID, "REG-") {
		t.Fatalf("id = %q", rep.ID)
	}
	if rep.Status != models.ReportDraft {
		t.Fatalf("status = %s", rep.Status)
	}

	summary, ok := rep.MetricsSummary["response_time"]
	if !ok {
		t.Fatalf("metrics summary missing response_time: %+v", rep.MetricsSummary)
	}
	if summary.Count != 2 || summary.Avg != 150 {
		t.Fatalf("summary = %+v", summary)
	}

	if rep.IncidentsSummary.TotalAlerts != 2 || rep.IncidentsSummary.CriticalCount != 1 {
		t.Fatalf("incidents = %+v", rep.IncidentsSummary)
	}
	if len(rep.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}
	if rep.Compliance.OverallStatus != "compliant" {
		t.Fatalf("compliance = %+v", rep.Compliance)
	}
}

func TestGenerateDefaults(t *testing.T) {
	r, _, _ := newTestReporter()
	rep := r.Generate("", 0)

	if rep.Type != models.ReportPeriodic {
		t.Fatalf("type = %s", rep.Type)
	}
	if got := rep.PeriodEnd.Sub(rep.PeriodStart); got != 30*24*time.Hour {
		t.Fatalf("period = %s", got)
	}
}

func TestListAndGet(t *testing.T) {
	r, _, _ := newTestReporter()
	first := r.Generate(models.ReportPeriodic, 7)
	r.Generate(models.ReportIncident, 7)

	if got := r.List(models.ReportPeriodic, ""); len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("filtered list = %+v", got)
	}
	if got := r.List("", ""); len(got) != 2 {
		t.Fatalf("full list = %d", len(got))
	}

	rep, ok := r.Get(first.ID)
	if !ok || rep.ID != first.ID {
		t.Fatalf("get = %+v ok=%v", rep, ok)
	}
	if _, ok := r.Get("REG-missing"); ok {
		t.Fatalf("unknown id must miss")
	}
}

func TestComplianceChecklist(t *testing.T) {
	r, _, _ := newTestReporter()
	status := r.ComplianceStatus()

	if len(status.Articles) != 5 {
		t.Fatalf("articles = %d", len(status.Articles))
	}
	if _, ok := status.Articles["article_72_1"]; !ok {
		t.Fatalf("missing article_72_1: %+v", status.Articles)
	}
	if status.NextAuditDue.Before(time.Now()) {
		t.Fatalf("next audit due in the past")
	}
}
