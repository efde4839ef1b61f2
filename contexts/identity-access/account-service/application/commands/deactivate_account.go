package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "meridian/contexts/identity-access/account-service/application"
	"meridian/contexts/identity-access/account-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/account-service/domain/errors"
	"meridian/contexts/identity-access/account-service/ports"
)

// DeactivateAccountCommand contains transport-agnostic deactivation input.
type DeactivateAccountCommand struct {
	AccountID string
	Reason    string
}

// DeactivateAccountUseCase flips the account to deactivated and records the
// event in the outbox within the same transaction.
type DeactivateAccountUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u DeactivateAccountUseCase) Execute(ctx context.Context, cmd DeactivateAccountCommand) (entities.Account, error) {
	logger := application.ResolveLogger(u.Logger)

	accountID := strings.TrimSpace(cmd.AccountID)
	if accountID == "" {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Account{}, err
	}

	now := u.Clock.Now().UTC()
	payload, err := json.Marshal(ports.AccountDeactivatedEvent{
		EventID:       eventID,
		AccountID:     accountID,
		Reason:        strings.TrimSpace(cmd.Reason),
		DeactivatedAt: now,
	})
	if err != nil {
		return entities.Account{}, err
	}

	entry := ports.OutboxEntry{
		OutboxID:    eventID,
		LogicalType: ports.EventTypeAccountDeactivated,
		Payload:     payload,
		OccurredAt:  now,
	}
	account, err := u.Repository.DeactivateAccountWithOutbox(ctx, accountID, now, entry)
	if err != nil {
		logger.Error("deactivate account failed",
			"event", "identity_deactivate_account_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"account_id", accountID,
			"error", err.Error(),
		)
		return entities.Account{}, err
	}

	logger.Info("account deactivated",
		"event", "identity_account_deactivated",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", accountID,
		"outbox_id", eventID,
	)
	return account, nil
}
