package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
	domainerrors "meridian/contexts/workflow-orchestration/workflow-service/domain/errors"
	"meridian/contexts/workflow-orchestration/workflow-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

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

func (r *Repository) CreateRunWithOutbox(ctx context.Context, run entities.WorkflowRun, entries []ports.OutboxEntry) error {
	row, err := runModelFromEntity(run)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		return createOutboxRows(tx, entries)
	})
}

func (r *Repository) UpdateRunWithOutbox(
	ctx context.Context,
	run entities.WorkflowRun,
	expectedStep int,
	entries []ports.OutboxEntry,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&runModel{}).
			Where("run_id = ? AND current_step = ?", run.RunID, expectedStep).
			Updates(map[string]any{
				"current_step": run.CurrentStep,
				"status":       string(run.Status),
				"updated_at":   run.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrConcurrentAdvance
		}
		return createOutboxRows(tx, entries)
	})
}

func (r *Repository) GetRun(ctx context.Context, runID string) (entities.WorkflowRun, error) {
	var row runModel
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowRun{}, domainerrors.ErrRunNotFound
		}
		return entities.WorkflowRun{}, err
	}
	return row.toEntity()
}

func createOutboxRows(tx *gorm.DB, entries []ports.OutboxEntry) error {
	for _, entry := range entries {
		row := outboxModel{
			OutboxID:    entry.OutboxID,
			LogicalType: entry.LogicalType,
			Payload:     append([]byte(nil), entry.Payload...),
			OccurredAt:  entry.OccurredAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
	}
	return nil
}

type runModel struct {
	RunID       string    `gorm:"column:run_id;primaryKey"`
	Definition  string    `gorm:"column:definition"`
	Steps       []byte    `gorm:"column:steps"`
	CurrentStep int       `gorm:"column:current_step"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (runModel) TableName() string {
	return "workflow_runs"
}

func runModelFromEntity(run entities.WorkflowRun) (runModel, error) {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return runModel{}, err
	}
	return runModel{
		RunID:       run.RunID,
		Definition:  run.Definition,
		Steps:       steps,
		CurrentStep: run.CurrentStep,
		Status:      string(run.Status),
		CreatedAt:   run.CreatedAt.UTC(),
		UpdatedAt:   run.UpdatedAt.UTC(),
	}, nil
}

func (m runModel) toEntity() (entities.WorkflowRun, error) {
	var steps []string
	if len(m.Steps) > 0 {
		if err := json.Unmarshal(m.Steps, &steps); err != nil {
			return entities.WorkflowRun{}, err
		}
	}
	return entities.WorkflowRun{
		RunID:       m.RunID,
		Definition:  m.Definition,
		Steps:       steps,
		CurrentStep: m.CurrentStep,
		Status:      entities.RunStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

// outboxModel mirrors the shared integration_event_outbox table contract.
type outboxModel struct {
	OutboxID    string    `gorm:"column:outbox_id;primaryKey"`
	LogicalType string    `gorm:"column:logical_type"`
	Payload     []byte    `gorm:"column:payload"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
}

func (outboxModel) TableName() string {
	return "integration_event_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
