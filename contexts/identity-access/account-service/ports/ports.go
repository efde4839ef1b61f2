package ports

import (
	"context"
	"time"

	"meridian/contexts/identity-access/account-service/domain/entities"
)

// Logical event type names owned by this service. The relay registry and the
// outbox rows written here must agree on these strings.
const (
	EventTypeAccountRegistered  = "identity.account.registered"
	EventTypeAccountDeactivated = "identity.account.deactivated"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for accounts and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AccountRegisteredEvent is the outbox payload for a new registration.
type AccountRegisteredEvent struct {
	EventID      string    `json:"event_id"`
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AccountDeactivatedEvent is the outbox payload for a deactivation.
type AccountDeactivatedEvent struct {
	EventID       string    `json:"event_id"`
	AccountID     string    `json:"account_id"`
	Reason        string    `json:"reason"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

// OutboxEntry is persisted atomically with the account mutation that
// produced it. Payload is the JSON encoding of the typed event above.
type OutboxEntry struct {
	OutboxID    string
	LogicalType string
	Payload     []byte
	OccurredAt  time.Time
}

// Repository is the write/read boundary for account state.
type Repository interface {
	CreateAccountWithOutbox(ctx context.Context, account entities.Account, entry OutboxEntry) error
	DeactivateAccountWithOutbox(ctx context.Context, accountID string, deactivatedAt time.Time, entry OutboxEntry) (entities.Account, error)
	GetAccount(ctx context.Context, accountID string) (entities.Account, error)
}
