package events

import "time"

// WorkflowEvent is the payload of a workflow transition event.
type WorkflowEvent struct {
	RequestID     string    `json:"request_id"`
	Operation     string    `json:"operation"`
	State         string    `json:"state"`
	PreviousState string    `json:"previous_state"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	Error         string    `json:"error,omitempty"`
	Document      string    `json:"document,omitempty"`
	Title         string    `json:"title,omitempty"`
	OverallScore  *float64  `json:"overall_score,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ShareEvent is published by the results viewer when a result is stored.
type ShareEvent struct {
	Token     string     `json:"token"`
	Title     string     `json:"title,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// DeleteEvent is published by the results viewer when a shared result is removed.
type DeleteEvent struct {
	Token     string    `json:"token"`
	Expired   bool      `json:"expired"`
	Timestamp time.Time `json:"timestamp"`
}
