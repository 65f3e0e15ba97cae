package models

import "time"

// PerformanceSnapshot is one point in the append-only performance series.
// Latencies are milliseconds, availability and error rate percentages,
// throughput requests per second.
type PerformanceSnapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	ResponseTimeAvg float64   `json:"response_time_avg"`
	ResponseTimeP95 float64   `json:"response_time_p95"`
	Throughput      float64   `json:"throughput"`
	ErrorRate       float64   `json:"error_rate"`
	Availability    float64   `json:"availability"`
	ActiveUsers     int       `json:"active_users"`
}

// SLAMetric compares a period aggregate against its fixed target.
type SLAMetric struct {
	Value     float64 `json:"value"`
	Target    float64 `json:"target"`
	Compliant bool    `json:"compliant"`
}

// SLABreach names a non-compliant dimension with actual vs target values.
type SLABreach struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Target    float64 `json:"target"`
}

// SLAStatus is the result of evaluating tracked performance dimensions
// against service-level targets over a period.
type SLAStatus struct {
	Status   string               `json:"status"`
	Period   string               `json:"period"`
	Metrics  map[string]SLAMetric `json:"metrics"`
	Breaches []SLABreach          `json:"breaches"`
	Samples  int                  `json:"samples"`
}
