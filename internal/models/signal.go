package models

import "time"

// Severity captures impact levels for signals and alerts.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SignalType enumerates the categories of detected statistical events.
type SignalType string

const (
	SignalAnomaly         SignalType = "anomaly"
	SignalTrendChange     SignalType = "trend_change"
	SignalThresholdBreach SignalType = "threshold_breach"
	SignalPatternDetected SignalType = "pattern_detected"
	SignalDriftDetected   SignalType = "drift_detected"
)

// SignalStatus tracks the lifecycle of a detected signal. Signals never
// auto-expire; transitions happen only through explicit operator actions.
type SignalStatus string

const (
	SignalActive        SignalStatus = "active"
	SignalAcknowledged  SignalStatus = "acknowledged"
	SignalResolved      SignalStatus = "resolved"
	SignalFalsePositive SignalStatus = "false_positive"
)

// Signal is an automatically detected statistical event about a metric,
// distinct from a threshold Alert.
type Signal struct {
	ID             string       `json:"signal_id"`
	Timestamp      time.Time    `json:"timestamp"`
	Type           SignalType   `json:"type"`
	Severity       Severity     `json:"severity"`
	MetricName     string       `json:"metric_name"`
	DetectedValue  float64      `json:"detected_value"`
	ExpectedValue  float64      `json:"expected_value"`
	DeviationPct   float64      `json:"deviation_pct"`
	Confidence     float64      `json:"confidence"`
	Description    string       `json:"description"`
	Status         SignalStatus `json:"status"`
	AcknowledgedBy string       `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time   `json:"acknowledged_at,omitempty"`
}
