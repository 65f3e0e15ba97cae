package engine

import (
	"testing"

	"github.com/pmmstack/pmm-engine/internal/models"
)

func TestAnalyzeEmptyWindow(t *testing.T) {
	a := NewTrendAnalyzer(0)
	analysis := a.Analyze("m", nil)

	if analysis.Direction != models.TrendStable {
		t.Fatalf("empty window direction = %s", analysis.Direction)
	}
	if analysis.Forecast != nil {
		t.Fatalf("empty window must not forecast")
	}
	if analysis.DataPoints != 0 {
		t.Fatalf("data points = %d", analysis.DataPoints)
	}
}

func TestAnalyzeDirections(t *testing.T) {
	a := NewTrendAnalyzer(0)

	cases := []struct {
		name   string
		values []float64
		want   models.TrendDirection
	}{
		{"increasing", []float64{1, 1, 1, 2, 2, 2}, models.TrendIncreasing},
		{"decreasing", []float64{2, 2, 2, 1, 1, 1}, models.TrendDecreasing},
		{"stable", []float64{100, 101, 99, 100, 102, 100}, models.TrendStable},
	}
	for _, tc := range cases {
		analysis := a.Analyze(tc.name, points(tc.values...))
		if analysis.Direction != tc.want {
			t.Fatalf("%s: direction = %s, want %s", tc.name, analysis.Direction, tc.want)
		}
	}
}

func TestAnalyzeStats(t *testing.T) {
	a := NewTrendAnalyzer(0)
	analysis := a.Analyze("m", points(1, 2, 3, 4, 5))

	if analysis.CurrentValue != 5 {
		t.Fatalf("current = %f", analysis.CurrentValue)
	}
	if analysis.Mean != 3 {
		t.Fatalf("mean = %f", analysis.Mean)
	}
	if analysis.Min != 1 || analysis.Max != 5 {
		t.Fatalf("min/max = %f/%f", analysis.Min, analysis.Max)
	}
}

func TestForecastLinearSeries(t *testing.T) {
	a := NewTrendAnalyzer(0)
	analysis := a.Analyze("m", points(1, 2, 3, 4, 5))

	if analysis.Forecast == nil {
		t.Fatalf("expected forecast for 5 points")
	}
	fc := analysis.Forecast
	if fc.NextValue < 5.99 || fc.NextValue > 6.01 {
		t.Fatalf("next value = %f, want ~6", fc.NextValue)
	}
	if fc.Next3 < 7.99 || fc.Next3 > 8.01 {
		t.Fatalf("next-3 value = %f, want ~8", fc.Next3)
	}
	if fc.Confidence <= 0 || fc.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", fc.Confidence)
	}
}

func TestForecastConfidenceGrowsWithPoints(t *testing.T) {
	short := forecast([]float64{1, 2, 3, 4, 5})
	long := forecast([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	if short == nil || long == nil {
		t.Fatalf("expected forecasts")
	}
	if long.Confidence <= short.Confidence {
		t.Fatalf("more points should raise confidence: %f vs %f", long.Confidence, short.Confidence)
	}
}

func TestForecastConfidenceShrinksWithNoise(t *testing.T) {
	clean := forecast([]float64{1, 2, 3, 4, 5})
	noisy := forecast([]float64{1, 5, 2, 8, 3})

	if noisy.Confidence >= clean.Confidence {
		t.Fatalf("noise should lower confidence: %f vs %f", noisy.Confidence, clean.Confidence)
	}
	if noisy.Confidence < 0 || noisy.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", noisy.Confidence)
	}
}

func TestForecastConstantSeries(t *testing.T) {
	fc := forecast([]float64{7, 7, 7, 7})
	if fc == nil {
		t.Fatalf("constant series should still forecast")
	}
	if fc.NextValue != 7 {
		t.Fatalf("next value = %f, want 7", fc.NextValue)
	}
}
