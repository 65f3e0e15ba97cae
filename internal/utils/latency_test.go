package utils

import "testing"

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(10)
	samples := []float64{10, 20, 30, 40, 50}
	for _, s := range samples {
		tracker.Observe(s)
	}

	if tracker.Count() != len(samples) {
		t.Fatalf("expected count %d, got %d", len(samples), tracker.Count())
	}

	p95 := tracker.Percentile(95)
	if p95 < 40 {
		t.Fatalf("expected percentile >= 40ms, got %v", p95)
	}
	if avg := tracker.Average(); avg != 30 {
		t.Fatalf("expected average 30ms, got %v", avg)
	}
}

func TestLatencyTrackerBoundedSize(t *testing.T) {
	tracker := NewLatencyTracker(3)
	for i := 0; i < 10; i++ {
		tracker.Observe(float64(i))
	}
	if tracker.Count() != 3 {
		t.Fatalf("expected tracker size 3, got %d", tracker.Count())
	}
	// Oldest samples were dropped, so the minimum survivor is 7.
	if p0 := tracker.Percentile(0); p0 != 7 {
		t.Fatalf("expected oldest surviving sample 7, got %v", p0)
	}
}
