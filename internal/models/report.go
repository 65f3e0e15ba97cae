package models

import "time"

// ReportType enumerates regulatory report categories.
type ReportType string

const (
	ReportPeriodic   ReportType = "periodic"
	ReportIncident   ReportType = "incident"
	ReportCompliance ReportType = "compliance"
	ReportAudit      ReportType = "audit"
)

// ReportStatus tracks a report through review.
type ReportStatus string

const (
	ReportDraft         ReportStatus = "draft"
	ReportPendingReview ReportStatus = "pending_review"
	ReportApproved      ReportStatus = "approved"
	ReportSubmitted     ReportStatus = "submitted"
)

// MetricSummary is the per-metric aggregate block inside a report.
type MetricSummary struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Std   float64 `json:"std"`
}

// IncidentsSummary aggregates alert activity for the report period.
type IncidentsSummary struct {
	TotalAlerts   int            `json:"total_alerts"`
	BySeverity    map[string]int `json:"by_severity"`
	ByType        map[string]int `json:"by_type"`
	CriticalCount int            `json:"critical_count"`
	HighCount     int            `json:"high_count"`
}

// ArticleStatus records the compliance state of a single requirement.
type ArticleStatus struct {
	Requirement  string    `json:"requirement"`
	Status       string    `json:"status"`
	LastVerified time.Time `json:"last_verified"`
}

// ComplianceStatus is the compiled requirement checklist.
type ComplianceStatus struct {
	OverallStatus string                   `json:"overall_status"`
	Articles      map[string]ArticleStatus `json:"articles"`
	NextAuditDue  time.Time                `json:"next_audit_due"`
}

// RegulatoryReport is the compiled monitoring report. Downstream document
// assembly (PDF, spreadsheets) consumes this structure; it is not produced
// here.
type RegulatoryReport struct {
	ID               string                   `json:"report_id"`
	CreatedAt        time.Time                `json:"created_at"`
	Type             ReportType               `json:"report_type"`
	PeriodStart      time.Time                `json:"period_start"`
	PeriodEnd        time.Time                `json:"period_end"`
	Status           ReportStatus             `json:"status"`
	Title            string                   `json:"title"`
	Summary          string                   `json:"summary"`
	MetricsSummary   map[string]MetricSummary `json:"metrics_summary"`
	IncidentsSummary IncidentsSummary         `json:"incidents_summary"`
	Compliance       ComplianceStatus         `json:"compliance_status"`
	Recommendations  []string                 `json:"recommendations"`
}
