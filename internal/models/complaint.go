package models

import "time"

// ComplaintStatus tracks a complaint through its lifecycle.
type ComplaintStatus string

const (
	ComplaintOpen        ComplaintStatus = "open"
	ComplaintInProgress  ComplaintStatus = "in_progress"
	ComplaintUnderReview ComplaintStatus = "under_review"
	ComplaintResolved    ComplaintStatus = "resolved"
	ComplaintClosed      ComplaintStatus = "closed"
)

// ComplaintPriority ranks complaint urgency.
type ComplaintPriority string

const (
	PriorityCritical ComplaintPriority = "critical"
	PriorityHigh     ComplaintPriority = "high"
	PriorityMedium   ComplaintPriority = "medium"
	PriorityLow      ComplaintPriority = "low"
)

// ComplaintUpdate is one audit entry recording the diff applied by an update.
type ComplaintUpdate struct {
	Timestamp time.Time         `json:"timestamp"`
	Changes   map[string]string `json:"changes"`
}

// Complaint is a user complaint record. It is mutated only through the
// store's update operation, which appends to Updates and records diffs.
type Complaint struct {
	ID                   string            `json:"complaint_id"`
	CreatedAt            time.Time         `json:"created_at"`
	UserID               string            `json:"user_id,omitempty"`
	Category             string            `json:"category"`
	Subject              string            `json:"subject"`
	Description          string            `json:"description"`
	Priority             ComplaintPriority `json:"priority"`
	Status               ComplaintStatus   `json:"status"`
	AssignedTo           string            `json:"assigned_to,omitempty"`
	RelatedInteractionID string            `json:"related_interaction_id,omitempty"`
	Resolution           string            `json:"resolution,omitempty"`
	ResolvedAt           *time.Time        `json:"resolved_at,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
	Updates              []ComplaintUpdate `json:"updates,omitempty"`
}

// IsOpen reports whether the complaint still counts toward the open backlog.
func (c Complaint) IsOpen() bool {
	switch c.Status {
	case ComplaintOpen, ComplaintInProgress, ComplaintUnderReview:
		return true
	}
	return false
}

// ComplaintAnalytics aggregates complaint records over a query period.
type ComplaintAnalytics struct {
	Total           int             `json:"total"`
	PeriodDays      int             `json:"period_days"`
	ByStatus        map[string]int  `json:"by_status"`
	ByPriority      map[string]int  `json:"by_priority"`
	ByCategory      map[string]int  `json:"by_category"`
	ResolutionStats ResolutionStats `json:"resolution_stats"`
	OpenCount       int             `json:"open_count"`
}

// ResolutionStats summarises time-to-resolution in hours over complaints
// resolved within the query period.
type ResolutionStats struct {
	ResolvedCount int     `json:"resolved_count"`
	AvgHours      float64 `json:"avg_resolution_hours"`
	MinHours      float64 `json:"min_resolution_hours"`
	MaxHours      float64 `json:"max_resolution_hours"`
}
