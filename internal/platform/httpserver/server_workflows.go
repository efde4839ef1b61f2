package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	workflowerrors "meridian/contexts/workflow-orchestration/workflow-service/domain/errors"
	workflowhttp "meridian/contexts/workflow-orchestration/workflow-service/transport/http"
)

func writeWorkflowError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, workflowhttp.ErrorResponse{Code: code, Message: message})
}

func writeWorkflowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflowerrors.ErrRunNotFound):
		writeWorkflowError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidWorkflow):
		writeWorkflowError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, workflowerrors.ErrRunAlreadyCompleted),
		errors.Is(err, workflowerrors.ErrConcurrentAdvance):
		writeWorkflowError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeWorkflowError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowhttp.StartWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWorkflowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.workflows.Handler.StartHandler(r.Context(), req)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetWorkflowRun(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflows.Handler.GetRunHandler(r.Context(), r.PathValue("run_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflows.Handler.AdvanceHandler(r.Context(), r.PathValue("run_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
