package store

import (
	"strings"
	"testing"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
)

func TestComplaintCreateDefaults(t *testing.T) {
	s := NewComplaintStore()
	c := s.Create(models.Complaint{Subject: "wrong answers", Category: "accuracy"})

	if !strings.HasPrefix(c.ID, "CMP-") {
		t.Fatalf("id = %q", c.ID)
	}
	if c.Status != models.ComplaintOpen {
		t.Fatalf("status = %s", c.Status)
	}
	if c.Priority != models.PriorityMedium {
		t.Fatalf("priority = %s", c.Priority)
	}
	if c.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
}

func TestComplaintUpdateAudit(t *testing.T) {
	s := NewComplaintStore()
	c := s.Create(models.Complaint{Subject: "slow responses"})

	if !s.Update(c.ID, ComplaintUpdateRequest{
		Status:     models.ComplaintInProgress,
		AssignedTo: "support-team",
	}) {
		t.Fatalf("update failed")
	}

	got, _ := s.Get(c.ID)
	if got.Status != models.ComplaintInProgress || got.AssignedTo != "support-team" {
		t.Fatalf("complaint = %+v", got)
	}
	if len(got.Updates) != 1 {
		t.Fatalf("updates = %+v", got.Updates)
	}
	changes := got.Updates[0].Changes
	if changes["status"] != string(models.ComplaintInProgress) || changes["assigned_to"] != "support-team" {
		t.Fatalf("changes = %+v", changes)
	}
}

func TestComplaintResolutionTimestamp(t *testing.T) {
	s := NewComplaintStore()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := created.Add(18*time.Hour + 30*time.Minute)

	current := created
	s.now = func() time.Time { return current }

	c := s.Create(models.Complaint{Subject: "bad output"})

	current = resolved
	s.Update(c.ID, ComplaintUpdateRequest{Status: models.ComplaintResolved, Resolution: "retrained prompt"})

	got, _ := s.Get(c.ID)
	if got.ResolvedAt == nil {
		t.Fatalf("resolved_at not set")
	}
	if hours := got.ResolvedAt.Sub(got.CreatedAt).Hours(); hours != 18.5 {
		t.Fatalf("resolution hours = %f, want 18.5", hours)
	}

	// Reopening clears the resolution timestamp.
	s.Update(c.ID, ComplaintUpdateRequest{Status: models.ComplaintInProgress})
	got, _ = s.Get(c.ID)
	if got.ResolvedAt != nil {
		t.Fatalf("resolved_at should clear on reopen")
	}
}

func TestComplaintListFilters(t *testing.T) {
	s := NewComplaintStore()
	s.Create(models.Complaint{Subject: "a", Priority: models.PriorityHigh})
	b := s.Create(models.Complaint{Subject: "b"})
	s.Update(b.ID, ComplaintUpdateRequest{Status: models.ComplaintClosed})

	if got := s.List(models.ComplaintOpen, "", time.Time{}); len(got) != 1 {
		t.Fatalf("open = %+v", got)
	}
	if got := s.List("", models.PriorityHigh, time.Time{}); len(got) != 1 {
		t.Fatalf("high priority = %+v", got)
	}
	if got := s.OpenCount(); got != 1 {
		t.Fatalf("open count = %d", got)
	}
}

func TestComplaintGetReturnsCopy(t *testing.T) {
	s := NewComplaintStore()
	c := s.Create(models.Complaint{Subject: "x", Tags: []string{"ui"}})

	got, _ := s.Get(c.ID)
	got.Tags[0] = "mutated"
	got.Subject = "mutated"

	again, _ := s.Get(c.ID)
	if again.Tags[0] != "ui" || again.Subject != "x" {
		t.Fatalf("store state mutated through copy: %+v", again)
	}
}
