package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"meridian/contexts/identity-access/account-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/account-service/domain/errors"
	"meridian/contexts/identity-access/account-service/ports"

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

func (r *Repository) CreateAccountWithOutbox(ctx context.Context, account entities.Account, entry ports.OutboxEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accountRow := accountModelFromEntity(account)
		if err := tx.Create(&accountRow).Error; err != nil {
			if isUniqueViolation(err) {
				if constraintName(err) == "identity_accounts_email_key" {
					return domainerrors.ErrEmailTaken
				}
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}

		outboxRow := outboxModelFromEntry(entry)
		if err := tx.Create(&outboxRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		return nil
	})
}

func (r *Repository) DeactivateAccountWithOutbox(
	ctx context.Context,
	accountID string,
	deactivatedAt time.Time,
	entry ports.OutboxEntry,
) (entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row accountModel
		if err := tx.
			Where("account_id = ?", accountID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAccountNotFound
			}
			return err
		}
		if row.Status != string(entities.AccountStatusActive) {
			return domainerrors.ErrAccountAlreadyInactive
		}

		result := tx.
			Model(&accountModel{}).
			Where("account_id = ? AND status = ?", accountID, string(entities.AccountStatusActive)).
			Updates(map[string]any{
				"status":     string(entities.AccountStatusDeactivated),
				"updated_at": deactivatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrAccountAlreadyInactive
		}

		outboxRow := outboxModelFromEntry(entry)
		if err := tx.Create(&outboxRow).Error; err != nil {
			return err
		}

		row.Status = string(entities.AccountStatusDeactivated)
		row.UpdatedAt = deactivatedAt.UTC()
		account = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.Account{}, err
	}
	return account, nil
}

func (r *Repository) GetAccount(ctx context.Context, accountID string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

type accountModel struct {
	AccountID   string    `gorm:"column:account_id;primaryKey"`
	Email       string    `gorm:"column:email"`
	DisplayName string    `gorm:"column:display_name"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "identity_accounts"
}

func accountModelFromEntity(account entities.Account) accountModel {
	return accountModel{
		AccountID:   account.AccountID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Status:      string(account.Status),
		CreatedAt:   account.CreatedAt.UTC(),
		UpdatedAt:   account.UpdatedAt.UTC(),
	}
}

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		AccountID:   m.AccountID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Status:      entities.AccountStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// outboxModel mirrors the shared integration_event_outbox table contract.
// Only the columns a producer writes are mapped here; relay bookkeeping
// columns keep their zero defaults on insert.
type outboxModel struct {
	OutboxID    string    `gorm:"column:outbox_id;primaryKey"`
	LogicalType string    `gorm:"column:logical_type"`
	Payload     []byte    `gorm:"column:payload"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
}

func (outboxModel) TableName() string {
	return "integration_event_outbox"
}

func outboxModelFromEntry(entry ports.OutboxEntry) outboxModel {
	return outboxModel{
		OutboxID:    entry.OutboxID,
		LogicalType: entry.LogicalType,
		Payload:     append([]byte(nil), entry.Payload...),
		OccurredAt:  entry.OccurredAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
