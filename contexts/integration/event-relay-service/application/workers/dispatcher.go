package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meridian/contexts/integration/event-relay-service/application"
	"meridian/contexts/integration/event-relay-service/domain/entities"
	domainerrors "meridian/contexts/integration/event-relay-service/domain/errors"
	"meridian/contexts/integration/event-relay-service/domain/services"
	"meridian/contexts/integration/event-relay-service/ports"
)

const (
	DefaultBatchSize    = 50
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 5
)

type recordOutcome int

const (
	outcomeDelivered recordOutcome = iota
	outcomeRetryScheduled
	outcomePoisoned
)

// Dispatcher drains eligible outbox rows to the event bus, one polling cycle
// at a time. Records in a batch are processed sequentially to bound bus load
// and keep per-batch occurred_at ordering observable downstream.
type Dispatcher struct {
	Outbox       ports.OutboxStore
	Registry     *application.Registry
	Clock        ports.Clock
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	Backoff      services.BackoffPolicy
	Logger       *slog.Logger
}

// Start runs the polling loop until ctx is cancelled. Cycle failures are
// contained: a broken cycle is logged and the loop waits for the next tick.
func (d Dispatcher) Start(ctx context.Context) {
	logger := application.ResolveLogger(d.Logger)
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logger.Info("outbox dispatcher started",
		"event", "relay_dispatcher_started",
		"module", "integration/event-relay-service",
		"layer", "worker",
		"poll_interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox dispatcher stopped",
				"event", "relay_dispatcher_stopped",
				"module", "integration/event-relay-service",
				"layer", "worker",
			)
			return
		case <-ticker.C:
			d.runGuarded(ctx, logger)
		}
	}
}

func (d Dispatcher) runGuarded(ctx context.Context, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in dispatch cycle",
				"event", "relay_cycle_panic",
				"module", "integration/event-relay-service",
				"layer", "worker",
				"panic", fmt.Sprint(r),
			)
		}
	}()
	// Cycle errors are already logged inside RunOnce; the loop never dies.
	_ = d.RunOnce(ctx)
}

// RunOnce executes a single fetch-dispatch-persist cycle. A record failure
// never aborts the batch; fetch/persist failures abort only the cycle. On
// cancellation mid-batch the in-flight record is finished and its outcome
// persisted before returning, so no attempt goes unaccounted.
func (d Dispatcher) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(d.Logger)
	limit := d.BatchSize
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	maxAttempts := d.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	now := time.Now().UTC()
	if d.Clock != nil {
		now = d.Clock.Now().UTC()
	}

	batch, err := d.Outbox.FetchEligible(ctx, limit, now)
	if err != nil {
		logger.Error("outbox fetch failed",
			"event", "relay_fetch_failed",
			"module", "integration/event-relay-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	var delivered, retried, poisoned int
	processed := make([]entities.OutboxRecord, 0, len(batch))
	for i := range batch {
		if ctx.Err() != nil {
			break
		}
		record := &batch[i]
		switch d.dispatchRecord(ctx, logger, record, now, maxAttempts) {
		case outcomeDelivered:
			delivered++
		case outcomeRetryScheduled:
			retried++
		case outcomePoisoned:
			poisoned++
		}
		processed = append(processed, *record)
	}

	if len(processed) > 0 {
		// Outcomes of already-attempted records must land even when the
		// shutdown signal arrived mid-batch.
		persistCtx := context.WithoutCancel(ctx)
		if err := d.Outbox.PersistOutcomes(persistCtx, processed); err != nil {
			logger.Error("outbox persist outcomes failed",
				"event", "relay_persist_failed",
				"module", "integration/event-relay-service",
				"layer", "worker",
				"batch_size", len(processed),
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("dispatch cycle completed",
		"event", "relay_cycle_completed",
		"module", "integration/event-relay-service",
		"layer", "worker",
		"fetched", len(batch),
		"delivered", delivered,
		"retried", retried,
		"poisoned", poisoned,
	)
	return ctx.Err()
}

func (d Dispatcher) dispatchRecord(
	ctx context.Context,
	logger *slog.Logger,
	record *entities.OutboxRecord,
	now time.Time,
	maxAttempts int,
) recordOutcome {
	registration, ok := d.Registry.Resolve(record.LogicalType)
	if !ok {
		// Unknown type cannot succeed on retry; quarantine without touching
		// the attempt counter.
		_ = record.MarkPoisoned(now, fmt.Sprintf("%s: %s", domainerrors.ErrEventTypeNotRegistered, record.LogicalType))
		logger.Error("outbox record quarantined",
			"event", "relay_record_poisoned",
			"module", "integration/event-relay-service",
			"layer", "worker",
			"outbox_id", record.OutboxID,
			"logical_type", record.LogicalType,
			"reason", "unknown_event_type",
		)
		return outcomePoisoned
	}

	event, err := registration.Decode(record.Payload)
	if err != nil {
		_ = record.MarkPoisoned(now, err.Error())
		logger.Error("outbox record quarantined",
			"event", "relay_record_poisoned",
			"module", "integration/event-relay-service",
			"layer", "worker",
			"outbox_id", record.OutboxID,
			"logical_type", record.LogicalType,
			"reason", "payload_decode_failed",
			"error", err.Error(),
		)
		return outcomePoisoned
	}

	if err := registration.Publish(ctx, event); err != nil {
		record.Attempts++
		if record.Attempts >= maxAttempts {
			_ = record.MarkPoisoned(now, err.Error())
			logger.Error("outbox record quarantined",
				"event", "relay_record_poisoned",
				"module", "integration/event-relay-service",
				"layer", "worker",
				"outbox_id", record.OutboxID,
				"logical_type", record.LogicalType,
				"reason", "max_attempts_reached",
				"attempts", record.Attempts,
				"error", err.Error(),
			)
			return outcomePoisoned
		}

		nextAttemptAt := now.Add(d.Backoff.Delay(record.Attempts))
		_ = record.ScheduleRetry(nextAttemptAt, err.Error())
		logger.Warn("outbox publish failed, retry scheduled",
			"event", "relay_publish_retry",
			"module", "integration/event-relay-service",
			"layer", "worker",
			"outbox_id", record.OutboxID,
			"logical_type", record.LogicalType,
			"attempts", record.Attempts,
			"next_attempt_at", nextAttemptAt.UTC().Format(time.RFC3339),
			"error", err.Error(),
		)
		return outcomeRetryScheduled
	}

	_ = record.MarkDelivered(now)
	logger.Info("outbox record delivered",
		"event", "relay_record_delivered",
		"module", "integration/event-relay-service",
		"layer", "worker",
		"outbox_id", record.OutboxID,
		"logical_type", record.LogicalType,
		"attempts", record.Attempts,
	)
	return outcomeDelivered
}
