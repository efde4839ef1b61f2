package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"meridian/contexts/identity-access/account-service/adapters/memory"
	"meridian/contexts/identity-access/account-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/account-service/domain/errors"
	"meridian/contexts/identity-access/account-service/ports"
)

func TestRegisterAccountWritesAccountAndOutboxRow(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)

	useCase := RegisterAccountUseCase{Repository: store, Clock: store, IDGenerator: store}
	account, err := useCase.Execute(context.Background(), RegisterAccountCommand{
		Email:       "  Ada@Example.com ",
		DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if account.Email != "ada@example.com" {
		t.Fatalf("email must be normalized, got %q", account.Email)
	}
	if account.Status != entities.AccountStatusActive {
		t.Fatalf("expected active account, got %q", account.Status)
	}

	entries := store.OutboxEntries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one outbox entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LogicalType != ports.EventTypeAccountRegistered {
		t.Fatalf("unexpected logical type %q", entry.LogicalType)
	}
	if !entry.OccurredAt.Equal(now) {
		t.Fatalf("outbox occurred_at %v, want %v", entry.OccurredAt, now)
	}

	var event ports.AccountRegisteredEvent
	if err := json.Unmarshal(entry.Payload, &event); err != nil {
		t.Fatalf("payload must be valid JSON: %v", err)
	}
	if event.AccountID != account.AccountID || event.Email != "ada@example.com" {
		t.Fatalf("payload does not match account: %+v", event)
	}
}

func TestRegisterAccountRejectsInvalidInput(t *testing.T) {
	store := memory.NewStore()
	useCase := RegisterAccountUseCase{Repository: store, Clock: store, IDGenerator: store}

	cases := []RegisterAccountCommand{
		{Email: "", DisplayName: "Ada"},
		{Email: "not-an-email", DisplayName: "Ada"},
		{Email: "ada@example.com", DisplayName: "   "},
	}
	for _, cmd := range cases {
		if _, err := useCase.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidRegistration) {
			t.Fatalf("cmd %+v: expected ErrInvalidRegistration, got %v", cmd, err)
		}
	}
	if len(store.OutboxEntries()) != 0 {
		t.Fatal("rejected registrations must not write outbox entries")
	}
}

func TestRegisterAccountRejectsDuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	useCase := RegisterAccountUseCase{Repository: store, Clock: store, IDGenerator: store}

	cmd := RegisterAccountCommand{Email: "ada@example.com", DisplayName: "Ada"}
	if _, err := useCase.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := useCase.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(store.OutboxEntries()) != 1 {
		t.Fatalf("duplicate registration must not write an outbox entry, got %d", len(store.OutboxEntries()))
	}
}

func TestDeactivateAccountWritesOutboxRow(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)

	register := RegisterAccountUseCase{Repository: store, Clock: store, IDGenerator: store}
	account, err := register.Execute(context.Background(), RegisterAccountCommand{
		Email:       "ada@example.com",
		DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.SetNow(now.Add(time.Hour))
	deactivate := DeactivateAccountUseCase{Repository: store, Clock: store, IDGenerator: store}
	updated, err := deactivate.Execute(context.Background(), DeactivateAccountCommand{
		AccountID: account.AccountID,
		Reason:    "user request",
	})
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if updated.Status != entities.AccountStatusDeactivated {
		t.Fatalf("expected deactivated status, got %q", updated.Status)
	}

	entries := store.OutboxEntries()
	if len(entries) != 2 {
		t.Fatalf("expected two outbox entries, got %d", len(entries))
	}
	entry := entries[1]
	if entry.LogicalType != ports.EventTypeAccountDeactivated {
		t.Fatalf("unexpected logical type %q", entry.LogicalType)
	}
	var event ports.AccountDeactivatedEvent
	if err := json.Unmarshal(entry.Payload, &event); err != nil {
		t.Fatalf("payload must be valid JSON: %v", err)
	}
	if event.AccountID != account.AccountID || event.Reason != "user request" {
		t.Fatalf("payload does not match deactivation: %+v", event)
	}
}

func TestDeactivateAccountErrors(t *testing.T) {
	store := memory.NewStore()
	useCase := DeactivateAccountUseCase{Repository: store, Clock: store, IDGenerator: store}

	if _, err := useCase.Execute(context.Background(), DeactivateAccountCommand{AccountID: "missing"}); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	register := RegisterAccountUseCase{Repository: store, Clock: store, IDGenerator: store}
	account, err := register.Execute(context.Background(), RegisterAccountCommand{
		Email:       "ada@example.com",
		DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := useCase.Execute(context.Background(), DeactivateAccountCommand{AccountID: account.AccountID}); err != nil {
		t.Fatalf("first deactivation failed: %v", err)
	}
	if _, err := useCase.Execute(context.Background(), DeactivateAccountCommand{AccountID: account.AccountID}); !errors.Is(err, domainerrors.ErrAccountAlreadyInactive) {
		t.Fatalf("expected ErrAccountAlreadyInactive, got %v", err)
	}
}
