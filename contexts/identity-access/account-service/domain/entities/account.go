package entities

import "time"

type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusDeactivated AccountStatus = "deactivated"
)

// Account is a platform identity owned by the identity-access context.
type Account struct {
	AccountID   string
	Email       string
	DisplayName string
	Status      AccountStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a Account) Active() bool {
	return a.Status == AccountStatusActive
}
