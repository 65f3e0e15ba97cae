package engine

import (
	"math"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// TrendAnalyzer computes descriptive statistics, trend classification, and
// short-horizon forecasts over a metric window. Stateless and safe for
// concurrent use.
type TrendAnalyzer struct {
	stablePct float64
	now       func() time.Time
}

// NewTrendAnalyzer creates an analyzer. Changes within stablePct between
// window halves classify as stable; zero falls back to 15%.
func NewTrendAnalyzer(stablePct float64) *TrendAnalyzer {
	if stablePct <= 0 {
		stablePct = 0.15
	}
	return &TrendAnalyzer{stablePct: stablePct, now: time.Now}
}

// Analyze produces the trend view for one metric window. Windows with fewer
// than two points yield a stable, forecast-free analysis.
func (a *TrendAnalyzer) Analyze(metricName string, points []models.MetricPoint) models.TrendAnalysis {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	analysis := models.TrendAnalysis{
		MetricName:   metricName,
		Direction:    models.TrendStable,
		DataPoints:   len(values),
		AnalysisTime: a.now().UTC(),
	}
	if len(values) == 0 {
		return analysis
	}

	analysis.CurrentValue = values[len(values)-1]
	analysis.Mean = mean(values)
	analysis.Std = sampleStd(values)
	analysis.Min, analysis.Max = minMax(values)

	if pct, ok := halfSplitChange(values); ok {
		switch {
		case math.Abs(pct) <= a.stablePct:
			analysis.Direction = models.TrendStable
		case pct > 0:
			analysis.Direction = models.TrendIncreasing
		default:
			analysis.Direction = models.TrendDecreasing
		}
		analysis.Strength = clamp(math.Abs(pct), 0, 1)
	}

	if len(values) >= 3 {
		analysis.Forecast = forecast(values)
	}
	return analysis
}

// forecast fits a least-squares line over index-value pairs and projects one
// and three steps beyond the window. Confidence grows with the number of
// points and shrinks with residual variance, always inside [0,1].
func forecast(values []float64) *models.Forecast {
	n := float64(len(values))

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var residVar float64
	for i, v := range values {
		r := v - (intercept + slope*float64(i))
		residVar += r * r
	}
	residVar /= n

	confidence := (n / (n + 5)) / (1 + residVar)

	return &models.Forecast{
		NextValue:  intercept + slope*n,
		Next3:      intercept + slope*(n+2),
		Confidence: clamp(confidence, 0, 1),
	}
}
