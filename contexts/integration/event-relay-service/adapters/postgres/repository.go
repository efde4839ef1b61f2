package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"meridian/contexts/integration/event-relay-service/domain/entities"
	"meridian/contexts/integration/event-relay-service/ports"

	"gorm.io/gorm"
)

// Repository implements the relay storage ports on the shared
// integration_event_outbox table. Producer services insert rows into the same
// table from their own transactions; this adapter only reads and updates.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) FetchEligible(ctx context.Context, limit int, now time.Time) ([]entities.OutboxRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now.UTC()).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	records := make([]entities.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, nil
}

func (r *Repository) PersistOutcomes(ctx context.Context, records []entities.OutboxRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			updates := map[string]any{
				"attempts":        record.Attempts,
				"next_attempt_at": record.NextAttemptAt,
				"processed_at":    record.ProcessedAt,
				"last_error":      record.LastError,
			}
			if err := tx.
				Model(&outboxModel{}).
				Where("outbox_id = ?", record.OutboxID).
				Updates(updates).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) Stats(ctx context.Context, now time.Time) (ports.OutboxStats, error) {
	var stats ports.OutboxStats

	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("processed_at IS NULL").
		Count(&stats.PendingCount).
		Error; err != nil {
		return ports.OutboxStats{}, err
	}
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("processed_at IS NOT NULL AND last_error = ''").
		Count(&stats.DeliveredCount).
		Error; err != nil {
		return ports.OutboxStats{}, err
	}
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("processed_at IS NOT NULL AND last_error <> ''").
		Count(&stats.PoisonedCount).
		Error; err != nil {
		return ports.OutboxStats{}, err
	}

	var oldest struct {
		OccurredAt *time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Select("MIN(occurred_at) AS occurred_at").
		Where("processed_at IS NULL").
		Scan(&oldest).
		Error; err != nil {
		return ports.OutboxStats{}, err
	}
	if oldest.OccurredAt != nil {
		stats.OldestPendingAge = now.UTC().Sub(oldest.OccurredAt.UTC())
	}
	return stats, nil
}

type outboxModel struct {
	OutboxID      string     `gorm:"column:outbox_id;primaryKey"`
	LogicalType   string     `gorm:"column:logical_type"`
	Payload       []byte     `gorm:"column:payload"`
	OccurredAt    time.Time  `gorm:"column:occurred_at"`
	Attempts      int        `gorm:"column:attempts"`
	NextAttemptAt *time.Time `gorm:"column:next_attempt_at"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	LastError     string     `gorm:"column:last_error"`
}

func (outboxModel) TableName() string {
	return "integration_event_outbox"
}

func (m outboxModel) toEntity() entities.OutboxRecord {
	record := entities.OutboxRecord{
		OutboxID:    m.OutboxID,
		LogicalType: m.LogicalType,
		Payload:     append([]byte(nil), m.Payload...),
		OccurredAt:  m.OccurredAt.UTC(),
		Attempts:    m.Attempts,
		LastError:   m.LastError,
	}
	if m.NextAttemptAt != nil {
		next := m.NextAttemptAt.UTC()
		record.NextAttemptAt = &next
	}
	if m.ProcessedAt != nil {
		processed := m.ProcessedAt.UTC()
		record.ProcessedAt = &processed
	}
	return record
}
