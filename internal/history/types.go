package history

import (
	"time"

	"github.com/google/uuid"
)

// Run status values stored in apply_runs.status
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Application status values reported by the agent
const (
	ApplicationSubmitted = "submitted"
	ApplicationSkipped   = "skipped"
)

// Run describes one agent run
type Run struct {
	ID         uuid.UUID
	Provider   string
	Model      string
	ApplyLimit int
	StartedAt  time.Time
}

// Application is one job the agent reported on
type Application struct {
	Company    string    `json:"company"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Outcome is the final state of a run
type Outcome struct {
	Success    bool
	StopReason string
	Summary    string
	Steps      int
	Applied    int
}

// Status maps the outcome to a run status value
func (o Outcome) Status() string {
	if o.Success {
		return RunStatusSucceeded
	}
	return RunStatusFailed
}
