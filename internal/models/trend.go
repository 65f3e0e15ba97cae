package models

import "time"

// TrendDirection classifies how a metric is moving over a window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendStable     TrendDirection = "stable"
	TrendDecreasing TrendDirection = "decreasing"
)

// Forecast projects a metric one and three steps beyond its window.
type Forecast struct {
	NextValue  float64 `json:"next_value"`
	Next3      float64 `json:"next_3"`
	Confidence float64 `json:"confidence"`
}

// TrendAnalysis is a derived, non-persistent view over one metric window.
type TrendAnalysis struct {
	MetricName   string         `json:"metric_name"`
	CurrentValue float64        `json:"current_value"`
	Mean         float64        `json:"mean"`
	Std          float64        `json:"std"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Direction    TrendDirection `json:"trend_direction"`
	Strength     float64        `json:"trend_strength"`
	DataPoints   int            `json:"data_points"`
	Forecast     *Forecast      `json:"forecast,omitempty"`
	AnalysisTime time.Time      `json:"analysis_time"`
}
