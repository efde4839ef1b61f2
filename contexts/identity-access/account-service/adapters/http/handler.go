package httpadapter

import (
	"context"
	"log/slog"

	"meridian/contexts/identity-access/account-service/application/commands"
	"meridian/contexts/identity-access/account-service/application/queries"
	"meridian/contexts/identity-access/account-service/domain/entities"
	httptransport "meridian/contexts/identity-access/account-service/transport/http"
)

// Handler exposes transport-shaped entrypoints over the account use-cases.
// HTTP routing, status mapping, and JSON plumbing live in the platform server.
type Handler struct {
	Register   commands.RegisterAccountUseCase
	Deactivate commands.DeactivateAccountUseCase
	GetAccount queries.GetAccountUseCase
	Logger     *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterAccountRequest) (httptransport.AccountResponse, error) {
	account, err := h.Register.Execute(ctx, commands.RegisterAccountCommand{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

func (h Handler) DeactivateHandler(ctx context.Context, accountID string, req httptransport.DeactivateAccountRequest) (httptransport.AccountResponse, error) {
	account, err := h.Deactivate.Execute(ctx, commands.DeactivateAccountCommand{
		AccountID: accountID,
		Reason:    req.Reason,
	})
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

func (h Handler) GetAccountHandler(ctx context.Context, accountID string) (httptransport.AccountResponse, error) {
	account, err := h.GetAccount.Execute(ctx, accountID)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

func toAccountResponse(account entities.Account) httptransport.AccountResponse {
	return httptransport.AccountResponse{
		AccountID:   account.AccountID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Status:      string(account.Status),
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	}
}
