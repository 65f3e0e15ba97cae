package store

import (
	"sort"
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// MetricStore owns the bounded per-metric time series. Appends evict points
// older than the retention window; reads return consistent snapshots.
type MetricStore struct {
	mu        sync.RWMutex
	series    map[string]*metricSeries
	retention time.Duration
	now       func() time.Time
}

type metricSeries struct {
	mu     sync.Mutex
	points []models.MetricPoint
}

// NewMetricStore creates a store retaining points for the given window.
func NewMetricStore(retention time.Duration) *MetricStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &MetricStore{
		series:    make(map[string]*metricSeries),
		retention: retention,
		now:       time.Now,
	}
}

// Append records a point for the named metric and evicts expired points.
// Out-of-order timestamps are inserted in order to keep the series sorted.
func (s *MetricStore) Append(name string, value float64, ts time.Time) {
	sr := s.lookup(name, true)

	cutoff := s.now().Add(-s.retention)

	sr.mu.Lock()
	defer sr.mu.Unlock()

	point := models.MetricPoint{MetricName: name, Value: value, Timestamp: ts}
	n := len(sr.points)
	if n == 0 || !ts.Before(sr.points[n-1].Timestamp) {
		sr.points = append(sr.points, point)
	} else {
		idx := sort.Search(n, func(i int) bool {
			return sr.points[i].Timestamp.After(ts)
		})
		sr.points = append(sr.points, models.MetricPoint{})
		copy(sr.points[idx+1:], sr.points[idx:])
		sr.points[idx] = point
	}

	evicted := 0
	for evicted < len(sr.points) && sr.points[evicted].Timestamp.Before(cutoff) {
		evicted++
	}
	if evicted > 0 {
		sr.points = append(sr.points[:0], sr.points[evicted:]...)
	}
}

// Window returns the points within [now-duration, now] in chronological
// order. Unknown metrics yield an empty slice, not an error.
func (s *MetricStore) Window(name string, duration time.Duration) []models.MetricPoint {
	sr := s.lookup(name, false)
	if sr == nil {
		return nil
	}

	start := s.now().Add(-duration)

	sr.mu.Lock()
	defer sr.mu.Unlock()

	idx := sort.Search(len(sr.points), func(i int) bool {
		return !sr.points[i].Timestamp.Before(start)
	})
	if idx == len(sr.points) {
		return nil
	}
	out := make([]models.MetricPoint, len(sr.points)-idx)
	copy(out, sr.points[idx:])
	return out
}

// Latest returns the most recent point for the metric, if any.
func (s *MetricStore) Latest(name string) (models.MetricPoint, bool) {
	sr := s.lookup(name, false)
	if sr == nil {
		return models.MetricPoint{}, false
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()

	if len(sr.points) == 0 {
		return models.MetricPoint{}, false
	}
	return sr.points[len(sr.points)-1], true
}

// Names lists the tracked metric names in stable order.
func (s *MetricStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *MetricStore) lookup(name string, create bool) *metricSeries {
	s.mu.RLock()
	sr, ok := s.series[name]
	s.mu.RUnlock()
	if ok || !create {
		return sr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sr, ok = s.series[name]; !ok {
		sr = &metricSeries{}
		s.series[name] = sr
	}
	return sr
}
