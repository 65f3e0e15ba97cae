package models

import "time"

// MetricPoint is a single timestamped observation of a named metric.
// Points are immutable once appended to a series.
type MetricPoint struct {
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// BandDirection states which side of a threshold counts as a breach.
type BandDirection string

const (
	HigherIsBetter BandDirection = "higher-is-better"
	LowerIsBetter  BandDirection = "lower-is-better"
)

// MetricBand is the static per-metric threshold configuration. Loaded once
// from config and read-only at runtime.
type MetricBand struct {
	MetricName        string        `json:"metric_name" yaml:"metric"`
	Target            float64       `json:"target" yaml:"target"`
	AlertThreshold    float64       `json:"alert_threshold" yaml:"alertThreshold"`
	CriticalThreshold float64       `json:"critical_threshold" yaml:"criticalThreshold"`
	Direction         BandDirection `json:"direction" yaml:"direction"`
}

// Alert is a direct threshold-crossing notification tied to a MetricBand.
type Alert struct {
	ID           string     `json:"alert_id"`
	Timestamp    time.Time  `json:"timestamp"`
	Severity     Severity   `json:"severity"`
	AlertType    string     `json:"alert_type"`
	MetricName   string     `json:"metric_name"`
	CurrentValue float64    `json:"current_value"`
	Threshold    float64    `json:"threshold"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}
