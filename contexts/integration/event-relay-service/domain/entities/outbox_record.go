package entities

import (
	"time"

	domainerrors "meridian/contexts/integration/event-relay-service/domain/errors"
)

// OutboxRecord is one pending domain event awaiting delivery to the bus.
// Rows are inserted by producer services inside their business transaction
// and mutated only by the relay dispatcher afterwards.
type OutboxRecord struct {
	OutboxID      string
	LogicalType   string
	Payload       []byte
	OccurredAt    time.Time
	Attempts      int
	NextAttemptAt *time.Time
	ProcessedAt   *time.Time
	LastError     string
}

// Terminal reports whether the record reached a final state (delivered or
// quarantined). Terminal records are never dispatched again.
func (r *OutboxRecord) Terminal() bool {
	return r.ProcessedAt != nil
}

// Delivered reports whether the record was published successfully.
func (r *OutboxRecord) Delivered() bool {
	return r.ProcessedAt != nil && r.LastError == ""
}

// Poisoned reports whether the record was quarantined with a diagnostic error.
func (r *OutboxRecord) Poisoned() bool {
	return r.ProcessedAt != nil && r.LastError != ""
}

// Eligible reports whether the record may be dispatched at the given time.
func (r *OutboxRecord) Eligible(now time.Time, maxAttempts int) bool {
	if r.Terminal() {
		return false
	}
	if maxAttempts > 0 && r.Attempts >= maxAttempts {
		return false
	}
	return r.NextAttemptAt == nil || !r.NextAttemptAt.After(now)
}

// MarkDelivered finalizes the record after a successful publish.
func (r *OutboxRecord) MarkDelivered(now time.Time) error {
	if r.Terminal() {
		return domainerrors.ErrRecordTerminal
	}
	processedAt := now.UTC()
	r.ProcessedAt = &processedAt
	r.NextAttemptAt = nil
	r.LastError = ""
	return nil
}

// MarkPoisoned quarantines the record with the reason it will never deliver.
// It does not touch the attempt counter; non-retryable failures (unknown type,
// undecodable payload) quarantine without consuming the retry budget.
func (r *OutboxRecord) MarkPoisoned(now time.Time, reason string) error {
	if r.Terminal() {
		return domainerrors.ErrRecordTerminal
	}
	processedAt := now.UTC()
	r.ProcessedAt = &processedAt
	r.NextAttemptAt = nil
	r.LastError = reason
	return nil
}

// ScheduleRetry keeps the record pending and defers the next attempt.
func (r *OutboxRecord) ScheduleRetry(nextAttemptAt time.Time, reason string) error {
	if r.Terminal() {
		return domainerrors.ErrRecordTerminal
	}
	next := nextAttemptAt.UTC()
	r.NextAttemptAt = &next
	r.LastError = reason
	return nil
}
