package store

import (
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// SnapshotStore keeps a bounded, time-ordered history of performance
// snapshots.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots []models.PerformanceSnapshot
	limit     int
}

// NewSnapshotStore creates a store keeping at most limit snapshots.
func NewSnapshotStore(limit int) *SnapshotStore {
	if limit <= 0 {
		limit = 1000
	}
	return &SnapshotStore{limit: limit}
}

// Add appends a snapshot, dropping the oldest past the cap.
func (s *SnapshotStore) Add(snap models.PerformanceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snap)
	if len(s.snapshots) > s.limit {
		s.snapshots = append(s.snapshots[:0], s.snapshots[len(s.snapshots)-s.limit:]...)
	}
}

// Since returns snapshots captured at or after t, in chronological order.
func (s *SnapshotStore) Since(t time.Time) []models.PerformanceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PerformanceSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		if !snap.Timestamp.Before(t) {
			out = append(out, snap)
		}
	}
	return out
}

// Latest returns the most recent snapshot, if any.
func (s *SnapshotStore) Latest() (models.PerformanceSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return models.PerformanceSnapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}
