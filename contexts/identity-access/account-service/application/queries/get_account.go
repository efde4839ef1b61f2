package queries

import (
	"context"
	"log/slog"
	"strings"

	"meridian/contexts/identity-access/account-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/account-service/domain/errors"
	"meridian/contexts/identity-access/account-service/ports"
)

// GetAccountUseCase reads one account by id.
type GetAccountUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (u GetAccountUseCase) Execute(ctx context.Context, accountID string) (entities.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return u.Repository.GetAccount(ctx, accountID)
}
