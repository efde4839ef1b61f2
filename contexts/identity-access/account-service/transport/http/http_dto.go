package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AccountResponse struct {
	AccountID   string    `json:"account_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RegisterAccountRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type DeactivateAccountRequest struct {
	Reason string `json:"reason,omitempty"`
}
