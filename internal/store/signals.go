package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// SignalStore holds detected signals and guards their status transitions.
// Identifiers are unique and monotonically assigned.
type SignalStore struct {
	mu      sync.RWMutex
	signals []*models.Signal
	counter uint64
	now     func() time.Time
}

// NewSignalStore creates an empty signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{now: time.Now}
}

// Insert assigns an identifier and active status, then records the signal.
func (s *SignalStore) Insert(sig models.Signal) models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	sig.ID = fmt.Sprintf("SIG-%s-%04d", s.now().UTC().Format("20060102150405"), s.counter)
	if sig.Status == "" {
		sig.Status = models.SignalActive
	}
	if sig.Timestamp.IsZero() {
		sig.Timestamp = s.now().UTC()
	}
	stored := sig
	s.signals = append(s.signals, &stored)
	return sig
}

// List returns signals matching the optional status filter and time window.
// A zero since means no lower bound.
func (s *SignalStore) List(status models.SignalStatus, since time.Time) []models.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Signal, 0, len(s.signals))
	for _, sig := range s.signals {
		if status != "" && sig.Status != status {
			continue
		}
		if !since.IsZero() && sig.Timestamp.Before(since) {
			continue
		}
		out = append(out, *sig)
	}
	return out
}

// Active returns all signals still in the active state.
func (s *SignalStore) Active() []models.Signal {
	return s.List(models.SignalActive, time.Time{})
}

// Acknowledge transitions a signal to acknowledged, recording the actor.
// Returns false when the signal does not exist. Concurrent acknowledges are
// last-writer-wins under the store lock.
func (s *SignalStore) Acknowledge(id, actor string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig := s.find(id)
	if sig == nil {
		return false
	}
	at := s.now().UTC()
	sig.Status = models.SignalAcknowledged
	sig.AcknowledgedBy = actor
	sig.AcknowledgedAt = &at
	return true
}

// SetStatus applies an explicit status transition (resolve, false positive).
func (s *SignalStore) SetStatus(id string, status models.SignalStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig := s.find(id)
	if sig == nil {
		return false
	}
	sig.Status = status
	return true
}

// Get returns a copy of the signal by id.
func (s *SignalStore) Get(id string) (models.Signal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sig := s.find(id); sig != nil {
		return *sig, true
	}
	return models.Signal{}, false
}

func (s *SignalStore) find(id string) *models.Signal {
	for _, sig := range s.signals {
		if sig.ID == id {
			return sig
		}
	}
	return nil
}
