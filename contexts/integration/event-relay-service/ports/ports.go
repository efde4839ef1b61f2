package ports

import (
	"context"
	"time"

	"meridian/contexts/integration/event-relay-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// OutboxStore is the dispatcher's view of the shared outbox table.
// FetchEligible returns pending rows whose next attempt is due, ordered by
// occurred_at ascending. PersistOutcomes writes the mutated attempt/terminal
// state of a processed batch back in one storage round-trip.
type OutboxStore interface {
	FetchEligible(ctx context.Context, limit int, now time.Time) ([]entities.OutboxRecord, error)
	PersistOutcomes(ctx context.Context, records []entities.OutboxRecord) error
}

// OutboxStats are the relay health signals exposed operationally.
type OutboxStats struct {
	PendingCount     int64
	DeliveredCount   int64
	PoisonedCount    int64
	OldestPendingAge time.Duration
}

// OutboxStatsReader aggregates relay health signals for the ops surface.
type OutboxStatsReader interface {
	Stats(ctx context.Context, now time.Time) (OutboxStats, error)
}
