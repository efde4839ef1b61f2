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

// AdvanceWorkflowCommand contains transport-agnostic input for one advance.
type AdvanceWorkflowCommand struct {
	RunID string
}

// AdvanceWorkflowUseCase completes the run's next step. The cursor update and
// the emitted event(s) commit in one transaction; optimistic concurrency on
// the cursor rejects a racing advance instead of double-completing a step.
type AdvanceWorkflowUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u AdvanceWorkflowUseCase) Execute(ctx context.Context, cmd AdvanceWorkflowCommand) (entities.WorkflowRun, error) {
	logger := application.ResolveLogger(u.Logger)

	runID := strings.TrimSpace(cmd.RunID)
	if runID == "" {
		return entities.WorkflowRun{}, domainerrors.ErrRunNotFound
	}

	run, err := u.Repository.GetRun(ctx, runID)
	if err != nil {
		return entities.WorkflowRun{}, err
	}
	if run.Completed() {
		return entities.WorkflowRun{}, domainerrors.ErrRunAlreadyCompleted
	}
	stepKey, ok := run.NextStep()
	if !ok {
		return entities.WorkflowRun{}, domainerrors.ErrRepositoryInvariantBroke
	}

	now := u.Clock.Now().UTC()
	expectedStep := run.CurrentStep
	run.CurrentStep++
	run.UpdatedAt = now

	advancedID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.WorkflowRun{}, err
	}
	advancedPayload, err := json.Marshal(ports.RunAdvancedEvent{
		EventID:    advancedID,
		RunID:      runID,
		StepKey:    stepKey,
		StepIndex:  expectedStep,
		AdvancedAt: now,
	})
	if err != nil {
		return entities.WorkflowRun{}, err
	}
	entries := []ports.OutboxEntry{{
		OutboxID:    advancedID,
		LogicalType: ports.EventTypeRunAdvanced,
		Payload:     advancedPayload,
		OccurredAt:  now,
	}}

	if run.CurrentStep == len(run.Steps) {
		run.Status = entities.RunStatusCompleted

		completedID, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.WorkflowRun{}, err
		}
		completedPayload, err := json.Marshal(ports.RunCompletedEvent{
			EventID:     completedID,
			RunID:       runID,
			Definition:  run.Definition,
			CompletedAt: now,
		})
		if err != nil {
			return entities.WorkflowRun{}, err
		}
		entries = append(entries, ports.OutboxEntry{
			OutboxID:    completedID,
			LogicalType: ports.EventTypeRunCompleted,
			Payload:     completedPayload,
			OccurredAt:  now,
		})
	}

	if err := u.Repository.UpdateRunWithOutbox(ctx, run, expectedStep, entries); err != nil {
		logger.Error("advance workflow failed",
			"event", "workflow_advance_failed",
			"module", "workflow-orchestration/workflow-service",
			"layer", "application",
			"run_id", runID,
			"step_key", stepKey,
			"error", err.Error(),
		)
		return entities.WorkflowRun{}, err
	}

	logger.Info("workflow run advanced",
		"event", "workflow_run_advanced",
		"module", "workflow-orchestration/workflow-service",
		"layer", "application",
		"run_id", runID,
		"step_key", stepKey,
		"current_step", run.CurrentStep,
		"status", string(run.Status),
	)
	return run, nil
}
