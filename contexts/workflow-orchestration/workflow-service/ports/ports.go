package ports

import (
	"context"
	"time"

	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
)

// Logical event type names owned by this service. The relay registry and the
// outbox rows written here must agree on these strings.
const (
	EventTypeRunStarted   = "workflow.run.started"
	EventTypeRunAdvanced  = "workflow.run.advanced"
	EventTypeRunCompleted = "workflow.run.completed"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for runs and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RunStartedEvent is the outbox payload for a newly started run.
type RunStartedEvent struct {
	EventID    string    `json:"event_id"`
	RunID      string    `json:"run_id"`
	Definition string    `json:"definition"`
	Steps      []string  `json:"steps"`
	StartedAt  time.Time `json:"started_at"`
}

// RunAdvancedEvent is the outbox payload for one completed step.
type RunAdvancedEvent struct {
	EventID    string    `json:"event_id"`
	RunID      string    `json:"run_id"`
	StepKey    string    `json:"step_key"`
	StepIndex  int       `json:"step_index"`
	AdvancedAt time.Time `json:"advanced_at"`
}

// RunCompletedEvent is the outbox payload emitted when the last step finishes.
type RunCompletedEvent struct {
	EventID     string    `json:"event_id"`
	RunID       string    `json:"run_id"`
	Definition  string    `json:"definition"`
	CompletedAt time.Time `json:"completed_at"`
}

// OutboxEntry is persisted atomically with the run mutation that produced it.
type OutboxEntry struct {
	OutboxID    string
	LogicalType string
	Payload     []byte
	OccurredAt  time.Time
}

// Repository is the write/read boundary for workflow run state.
// UpdateRunWithOutbox applies optimistic concurrency on the step cursor:
// the update only lands if the stored cursor still equals expectedStep.
type Repository interface {
	CreateRunWithOutbox(ctx context.Context, run entities.WorkflowRun, entries []OutboxEntry) error
	UpdateRunWithOutbox(ctx context.Context, run entities.WorkflowRun, expectedStep int, entries []OutboxEntry) error
	GetRun(ctx context.Context, runID string) (entities.WorkflowRun, error)
}
