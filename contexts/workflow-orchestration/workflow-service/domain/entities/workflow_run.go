package entities

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
)

// WorkflowRun is one execution of a workflow definition. CurrentStep indexes
// the next step to complete; a run with CurrentStep == len(Steps) is done.
type WorkflowRun struct {
	RunID       string
	Definition  string
	Steps       []string
	CurrentStep int
	Status      RunStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r WorkflowRun) Completed() bool {
	return r.Status == RunStatusCompleted
}

// NextStep returns the name of the step the next advance will complete.
func (r WorkflowRun) NextStep() (string, bool) {
	if r.CurrentStep < 0 || r.CurrentStep >= len(r.Steps) {
		return "", false
	}
	return r.Steps[r.CurrentStep], true
}
