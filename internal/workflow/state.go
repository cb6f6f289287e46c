package workflow

import (
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
)

type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Settled reports whether the state ends a submission.
func (s State) Settled() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Snapshot is a copy of the controller state. Result is only set in the
// completed state, Err only in the failed and cancelled states.
type Snapshot struct {
	State      State
	Previous   State
	Operation  string
	RequestID  string
	Document   string
	Title      string
	Result     *analysis.Result
	Err        error
	ErrKind    Kind
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the time spent processing, zero until the submission settles.
func (s Snapshot) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
