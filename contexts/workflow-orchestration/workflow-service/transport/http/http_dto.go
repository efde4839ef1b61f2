package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WorkflowRunResponse struct {
	RunID       string    `json:"run_id"`
	Definition  string    `json:"definition"`
	Steps       []string  `json:"steps"`
	CurrentStep int       `json:"current_step"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type StartWorkflowRequest struct {
	Definition string   `json:"definition"`
	Steps      []string `json:"steps"`
}
