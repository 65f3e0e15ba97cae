package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// AlertStore records threshold alerts. An alert counts as active until it is
// explicitly resolved or its activity window elapses.
type AlertStore struct {
	mu           sync.RWMutex
	alerts       []*models.Alert
	counter      uint64
	activeWindow time.Duration
	now          func() time.Time
}

// NewAlertStore creates a store whose active set covers the given window.
func NewAlertStore(activeWindow time.Duration) *AlertStore {
	if activeWindow <= 0 {
		activeWindow = 24 * time.Hour
	}
	return &AlertStore{activeWindow: activeWindow, now: time.Now}
}

// Insert assigns a monotonic identifier and records the alert.
func (s *AlertStore) Insert(alert models.Alert) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	alert.ID = fmt.Sprintf("ALT-%s-%04d", s.now().UTC().Format("20060102150405"), s.counter)
	if alert.Timestamp.IsZero() {
		alert.Timestamp = s.now().UTC()
	}
	stored := alert
	s.alerts = append(s.alerts, &stored)
	return alert
}

// Active returns unresolved alerts within the activity window.
func (s *AlertStore) Active() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threshold := s.now().Add(-s.activeWindow)
	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.ResolvedAt != nil || a.Timestamp.Before(threshold) {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Since returns all alerts recorded at or after the given time, resolved or
// not.
func (s *AlertStore) Since(t time.Time) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.Timestamp.Before(t) {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Resolve marks an alert resolved. Returns false for unknown ids.
func (s *AlertStore) Resolve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			at := s.now().UTC()
			a.ResolvedAt = &at
			return true
		}
	}
	return false
}
