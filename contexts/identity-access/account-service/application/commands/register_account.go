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

// RegisterAccountCommand contains transport-agnostic registration input.
type RegisterAccountCommand struct {
	Email       string
	DisplayName string
}

// RegisterAccountUseCase creates the account and its registered event in one
// transaction (outbox pattern): either both rows commit or neither does.
type RegisterAccountUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute validates input, then persists account + outbox row atomically.
func (u RegisterAccountUseCase) Execute(ctx context.Context, cmd RegisterAccountCommand) (entities.Account, error) {
	logger := application.ResolveLogger(u.Logger)

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	displayName := strings.TrimSpace(cmd.DisplayName)
	if email == "" || !strings.Contains(email, "@") || displayName == "" {
		return entities.Account{}, domainerrors.ErrInvalidRegistration
	}

	accountID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Account{}, err
	}
	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Account{}, err
	}

	now := u.Clock.Now().UTC()
	account := entities.Account{
		AccountID:   accountID,
		Email:       email,
		DisplayName: displayName,
		Status:      entities.AccountStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, err := json.Marshal(ports.AccountRegisteredEvent{
		EventID:      eventID,
		AccountID:    accountID,
		Email:        email,
		DisplayName:  displayName,
		RegisteredAt: now,
	})
	if err != nil {
		return entities.Account{}, err
	}

	entry := ports.OutboxEntry{
		OutboxID:    eventID,
		LogicalType: ports.EventTypeAccountRegistered,
		Payload:     payload,
		OccurredAt:  now,
	}
	if err := u.Repository.CreateAccountWithOutbox(ctx, account, entry); err != nil {
		logger.Error("register account failed",
			"event", "identity_register_account_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"email", email,
			"error", err.Error(),
		)
		return entities.Account{}, err
	}

	logger.Info("account registered",
		"event", "identity_account_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", accountID,
		"outbox_id", eventID,
	)
	return account, nil
}
