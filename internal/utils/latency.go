package utils

import (
	"sort"
	"sync"
)

// LatencyTracker stores recent response-time samples in milliseconds and
// computes the aggregates fed into performance snapshots.
type LatencyTracker struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
}

// NewLatencyTracker creates a tracker storing up to maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &LatencyTracker{maxSize: maxSize}
}

// Observe records a new response time in milliseconds.
func (l *LatencyTracker) Observe(ms float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples = append(l.samples, ms)
	if len(l.samples) > l.maxSize {
		// Drop oldest sample to bound memory.
		copy(l.samples[0:], l.samples[1:])
		l.samples = l.samples[:l.maxSize]
	}
}

// Average returns the mean of recorded samples, zero when empty.
func (l *LatencyTracker) Average() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range l.samples {
		sum += s
	}
	return sum / float64(len(l.samples))
}

// Percentile returns the percentile (0-100) sample. Returns zero if no
// samples were recorded.
func (l *LatencyTracker) Percentile(p float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.samples) == 0 {
		return 0
	}

	sorted := append([]float64(nil), l.samples...)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := int((p / 100.0) * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Count returns number of samples recorded.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.samples)
}
