package store

import (
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// InteractionStore keeps a bounded history of monitored interactions for
// rolling-window KPI queries.
type InteractionStore struct {
	mu      sync.RWMutex
	records []models.Interaction
	limit   int
}

// NewInteractionStore creates a store keeping at most limit records.
func NewInteractionStore(limit int) *InteractionStore {
	if limit <= 0 {
		limit = 10000
	}
	return &InteractionStore{limit: limit}
}

// Add appends an interaction, dropping the oldest past the cap.
func (s *InteractionStore) Add(in models.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, in)
	if len(s.records) > s.limit {
		s.records = append(s.records[:0], s.records[len(s.records)-s.limit:]...)
	}
}

// CountSince returns the number of interactions recorded at or after t.
func (s *InteractionStore) CountSince(t time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.records {
		if !r.Timestamp.Before(t) {
			count++
		}
	}
	return count
}

// Total returns the number of retained interactions.
func (s *InteractionStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FeedbackStore keeps a bounded history of user feedback.
type FeedbackStore struct {
	mu      sync.RWMutex
	records []models.Feedback
	limit   int
}

// NewFeedbackStore creates a store keeping at most limit records.
func NewFeedbackStore(limit int) *FeedbackStore {
	if limit <= 0 {
		limit = 10000
	}
	return &FeedbackStore{limit: limit}
}

// Add appends a feedback record, dropping the oldest past the cap.
func (s *FeedbackStore) Add(fb models.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, fb)
	if len(s.records) > s.limit {
		s.records = append(s.records[:0], s.records[len(s.records)-s.limit:]...)
	}
}

// Since returns feedback recorded at or after t.
func (s *FeedbackStore) Since(t time.Time) []models.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Feedback, 0, len(s.records))
	for _, r := range s.records {
		if !r.Timestamp.Before(t) {
			out = append(out, r)
		}
	}
	return out
}
