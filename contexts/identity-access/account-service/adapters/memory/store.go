package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meridian/contexts/identity-access/account-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/account-service/domain/errors"
	"meridian/contexts/identity-access/account-service/ports"
)

// Store is an in-memory account repository for tests and development wiring.
// It also implements Clock and IDGenerator so a module can run on it alone.
type Store struct {
	mu sync.RWMutex

	accountsByID   map[string]entities.Account
	accountIDByEml map[string]string
	outboxEntries  []ports.OutboxEntry

	now      time.Time
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		accountsByID:   make(map[string]entities.Account),
		accountIDByEml: make(map[string]string),
		now:            time.Now().UTC(),
	}
}

func (s *Store) CreateAccountWithOutbox(_ context.Context, account entities.Account, entry ports.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accountIDByEml[account.Email]; exists {
		return domainerrors.ErrEmailTaken
	}
	s.accountsByID[account.AccountID] = account
	s.accountIDByEml[account.Email] = account.AccountID
	s.outboxEntries = append(s.outboxEntries, entry)
	return nil
}

func (s *Store) DeactivateAccountWithOutbox(
	_ context.Context,
	accountID string,
	deactivatedAt time.Time,
	entry ports.OutboxEntry,
) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accountsByID[accountID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	if account.Status != entities.AccountStatusActive {
		return entities.Account{}, domainerrors.ErrAccountAlreadyInactive
	}

	account.Status = entities.AccountStatusDeactivated
	account.UpdatedAt = deactivatedAt.UTC()
	s.accountsByID[accountID] = account
	s.outboxEntries = append(s.outboxEntries, entry)
	return account, nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accountsByID[accountID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

// OutboxEntries returns the entries written so far, oldest first.
func (s *Store) OutboxEntries() []ports.OutboxEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.OutboxEntry(nil), s.outboxEntries...)
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// SetNow pins the store clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

// NewID implements ports.IDGenerator with a deterministic sequence.
func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("mem-%06d", s.sequence), nil
}
