package models

import "time"

// HealthStatus is the step classification of the health score.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
)

// TrendSummary is the condensed per-metric trend shown on the dashboard.
type TrendSummary struct {
	Direction TrendDirection `json:"direction"`
	Current   float64        `json:"current"`
}

// Overview is the dashboard summary. The health score is recomputed from
// the current signal and alert sets on every request, never cached as a
// source of truth.
type Overview struct {
	Timestamp      time.Time               `json:"timestamp"`
	HealthScore    int                     `json:"health_score"`
	HealthStatus   HealthStatus            `json:"health_status"`
	ActiveSignals  int                     `json:"active_signals"`
	ActiveAlerts   int                     `json:"active_alerts"`
	OpenComplaints int                     `json:"open_complaints"`
	FeedbackToday  int                     `json:"feedback_today"`
	MetricsTracked int                     `json:"metrics_tracked"`
	TrendsSummary  map[string]TrendSummary `json:"trends_summary"`
}

// InteractionKPIs counts interactions over rolling windows.
type InteractionKPIs struct {
	Last24h   int     `json:"last_24h"`
	Last7d    int     `json:"last_7d"`
	AvgPerDay float64 `json:"avg_per_day"`
}

// FeedbackKPIs summarises recent feedback. SatisfactionRate is the
// percentage of feedback with rating >= 4.
type FeedbackKPIs struct {
	Count7d          int     `json:"count_7d"`
	AvgRating        float64 `json:"avg_rating"`
	SatisfactionRate float64 `json:"satisfaction_rate"`
}

// AlertKPIs counts alert activity.
type AlertKPIs struct {
	Active  int `json:"active"`
	Last24h int `json:"last_24h"`
}

// SignalKPIs counts signal activity.
type SignalKPIs struct {
	Active     int `json:"active"`
	Detected7d int `json:"detected_7d"`
}

// KPIReport collects the key performance indicators for the dashboard.
type KPIReport struct {
	Timestamp    time.Time          `json:"timestamp"`
	Interactions InteractionKPIs    `json:"interactions"`
	Feedback     FeedbackKPIs       `json:"feedback"`
	Metrics      map[string]float64 `json:"metrics"`
	Alerts       AlertKPIs          `json:"alerts"`
	Signals      SignalKPIs         `json:"signals"`
}

// CurrentMetric is the latest state of one tracked metric.
type CurrentMetric struct {
	CurrentValue  float64 `json:"current_value"`
	RecentAverage float64 `json:"recent_average"`
	Samples       int     `json:"samples"`
}
