package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

// ComplaintUpdateRequest carries the optional fields an update may change.
type ComplaintUpdateRequest struct {
	Status     models.ComplaintStatus
	Priority   models.ComplaintPriority
	AssignedTo string
	Resolution string
}

// ComplaintStore holds complaint records. Mutation happens only through
// Update, which appends an audit entry recording the applied diff.
type ComplaintStore struct {
	mu         sync.RWMutex
	complaints []*models.Complaint
	counter    uint64
	now        func() time.Time
}

// NewComplaintStore creates an empty complaint store.
func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{now: time.Now}
}

// Create registers a new complaint in the open state.
func (s *ComplaintStore) Create(c models.Complaint) models.Complaint {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.counter++
	c.ID = fmt.Sprintf("CMP-%s-%04d", now.Format("20060102"), s.counter)
	c.CreatedAt = now
	c.Status = models.ComplaintOpen
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	stored := c
	s.complaints = append(s.complaints, &stored)
	return c
}

// Get returns a copy of the complaint by id.
func (s *ComplaintStore) Get(id string) (models.Complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.find(id); c != nil {
		return cloneComplaint(c), true
	}
	return models.Complaint{}, false
}

// List returns complaints created at or after since, optionally filtered by
// status and priority. Zero values disable a filter.
func (s *ComplaintStore) List(status models.ComplaintStatus, priority models.ComplaintPriority, since time.Time) []models.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		if status != "" && c.Status != status {
			continue
		}
		if priority != "" && c.Priority != priority {
			continue
		}
		if !since.IsZero() && c.CreatedAt.Before(since) {
			continue
		}
		out = append(out, cloneComplaint(c))
	}
	return out
}

// Update applies the non-zero fields of req, appends the audit entry, and
// keeps resolved_at consistent with the status: set exactly when the
// complaint is resolved or closed. Returns false for unknown ids.
func (s *ComplaintStore) Update(id string, req ComplaintUpdateRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return false
	}

	now := s.now().UTC()
	changes := make(map[string]string)

	if req.Status != "" && req.Status != c.Status {
		changes["status"] = string(req.Status)
		c.Status = req.Status
	}
	if req.Priority != "" && req.Priority != c.Priority {
		changes["priority"] = string(req.Priority)
		c.Priority = req.Priority
	}
	if req.AssignedTo != "" && req.AssignedTo != c.AssignedTo {
		changes["assigned_to"] = req.AssignedTo
		c.AssignedTo = req.AssignedTo
	}
	if req.Resolution != "" && req.Resolution != c.Resolution {
		changes["resolution"] = req.Resolution
		c.Resolution = req.Resolution
	}

	switch c.Status {
	case models.ComplaintResolved, models.ComplaintClosed:
		if c.ResolvedAt == nil {
			at := now
			c.ResolvedAt = &at
			changes["resolved_at"] = at.Format(time.RFC3339)
		}
	default:
		if c.ResolvedAt != nil {
			c.ResolvedAt = nil
			changes["resolved_at"] = ""
		}
	}

	if len(changes) > 0 {
		c.Updates = append(c.Updates, models.ComplaintUpdate{Timestamp: now, Changes: changes})
	}
	return true
}

// Count returns the number of stored complaints.
func (s *ComplaintStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.complaints)
}

// OpenCount returns the number of complaints still in an open state.
func (s *ComplaintStore) OpenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.complaints {
		if c.IsOpen() {
			count++
		}
	}
	return count
}

func (s *ComplaintStore) find(id string) *models.Complaint {
	for _, c := range s.complaints {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func cloneComplaint(c *models.Complaint) models.Complaint {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.Updates = append([]models.ComplaintUpdate(nil), c.Updates...)
	if c.ResolvedAt != nil {
		at := *c.ResolvedAt
		out.ResolvedAt = &at
	}
	return out
}
