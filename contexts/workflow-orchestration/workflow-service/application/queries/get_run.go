package queries

import (
	"context"
	"log/slog"
	"strings"

	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
	domainerrors "meridian/contexts/workflow-orchestration/workflow-service/domain/errors"
	"meridian/contexts/workflow-orchestration/workflow-service/ports"
)

// GetRunUseCase reads one workflow run by id.
type GetRunUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (u GetRunUseCase) Execute(ctx context.Context, runID string) (entities.WorkflowRun, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return entities.WorkflowRun{}, domainerrors.ErrRunNotFound
	}
	return u.Repository.GetRun(ctx, runID)
}
