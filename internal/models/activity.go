package models

import "time"

// Interaction records one monitored exchange with the deployed AI system.
// ResponseTime is in milliseconds. Metadata is an open mapping of scalar
// values; numeric entries are promoted to metric points on ingestion.
type Interaction struct {
	ID           string         `json:"interaction_id"`
	Timestamp    time.Time      `json:"timestamp"`
	UserID       string         `json:"user_id,omitempty"`
	Prompt       string         `json:"prompt"`
	Response     string         `json:"response"`
	ResponseTime float64        `json:"response_time"`
	ModelVersion string         `json:"model_version"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Feedback is a user rating attached to an interaction. Rating is 1-5.
type Feedback struct {
	ID            string    `json:"feedback_id"`
	InteractionID string    `json:"interaction_id"`
	UserID        string    `json:"user_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	Issues        []string  `json:"issues,omitempty"`
}
