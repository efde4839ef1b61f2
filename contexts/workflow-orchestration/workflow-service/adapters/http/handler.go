package httpadapter

import (
	"context"
	"log/slog"

	"meridian/contexts/workflow-orchestration/workflow-service/application/commands"
	"meridian/contexts/workflow-orchestration/workflow-service/application/queries"
	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
	httptransport "meridian/contexts/workflow-orchestration/workflow-service/transport/http"
)

// Handler exposes transport-shaped entrypoints over the workflow use-cases.
type Handler struct {
	Start   commands.StartWorkflowUseCase
	Advance commands.AdvanceWorkflowUseCase
	GetRun  queries.GetRunUseCase
	Logger  *slog.Logger
}

func (h Handler) StartHandler(ctx context.Context, req httptransport.StartWorkflowRequest) (httptransport.WorkflowRunResponse, error) {
	run, err := h.Start.Execute(ctx, commands.StartWorkflowCommand{
		Definition: req.Definition,
		Steps:      req.Steps,
	})
	if err != nil {
		return httptransport.WorkflowRunResponse{}, err
	}
	return toRunResponse(run), nil
}

func (h Handler) AdvanceHandler(ctx context.Context, runID string) (httptransport.WorkflowRunResponse, error) {
	run, err := h.Advance.Execute(ctx, commands.AdvanceWorkflowCommand{RunID: runID})
	if err != nil {
		return httptransport.WorkflowRunResponse{}, err
	}
	return toRunResponse(run), nil
}

func (h Handler) GetRunHandler(ctx context.Context, runID string) (httptransport.WorkflowRunResponse, error) {
	run, err := h.GetRun.Execute(ctx, runID)
	if err != nil {
		return httptransport.WorkflowRunResponse{}, err
	}
	return toRunResponse(run), nil
}

func toRunResponse(run entities.WorkflowRun) httptransport.WorkflowRunResponse {
	return httptransport.WorkflowRunResponse{
		RunID:       run.RunID,
		Definition:  run.Definition,
		Steps:       append([]string(nil), run.Steps...),
		CurrentStep: run.CurrentStep,
		Status:      string(run.Status),
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}
