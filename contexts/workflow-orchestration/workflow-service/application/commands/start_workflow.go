package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "meridian/contexts/workflow-orchestration/workflow-service/application"
	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
	domainerrors "meridian/contexts/workflow-orchestration/workflow-service/domain/errors"
	"meridian/contexts/workflow-orchestration/workflow-service/ports"
)

// StartWorkflowCommand contains transport-agnostic input for starting a run.
type StartWorkflowCommand struct {
	Definition string
	Steps      []string
}

// StartWorkflowUseCase creates the run and its started event in one
// transaction (outbox pattern).
type StartWorkflowUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u StartWorkflowUseCase) Execute(ctx context.Context, cmd StartWorkflowCommand) (entities.WorkflowRun, error) {
	logger := application.ResolveLogger(u.Logger)

	definition := strings.TrimSpace(cmd.Definition)
	steps := make([]string, 0, len(cmd.Steps))
	for _, step := range cmd.Steps {
		step = strings.TrimSpace(step)
		if step != "" {
			steps = append(steps, step)
		}
	}
	if definition == "" || len(steps) == 0 {
		return entities.WorkflowRun{}, domainerrors.ErrInvalidWorkflow
	}

	runID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.WorkflowRun{}, err
	}
	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.WorkflowRun{}, err
	}

	now := u.Clock.Now().UTC()
	run := entities.WorkflowRun{
		RunID:       runID,
		Definition:  definition,
		Steps:       steps,
		CurrentStep: 0,
		Status:      entities.RunStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, err := json.Marshal(ports.RunStartedEvent{
		EventID:    eventID,
		RunID:      runID,
		Definition: definition,
		Steps:      steps,
		StartedAt:  now,
	})
	if err != nil {
		return entities.WorkflowRun{}, err
	}

	entries := []ports.OutboxEntry{{
		OutboxID:    eventID,
		LogicalType: ports.EventTypeRunStarted,
		Payload:     payload,
		OccurredAt:  now,
	}}
	if err := u.Repository.CreateRunWithOutbox(ctx, run, entries); err != nil {
		logger.Error("start workflow failed",
			"event", "workflow_start_failed",
			"module", "workflow-orchestration/workflow-service",
			"layer", "application",
			"definition", definition,
			"error", err.Error(),
		)
		return entities.WorkflowRun{}, err
	}

	logger.Info("workflow run started",
		"event", "workflow_run_started",
		"module", "workflow-orchestration/workflow-service",
		"layer", "application",
		"run_id", runID,
		"definition", definition,
		"outbox_id", eventID,
	)
	return run, nil
}
