package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"meridian/contexts/integration/event-relay-service/domain/entities"
	domainerrors "meridian/contexts/integration/event-relay-service/domain/errors"
	"meridian/contexts/integration/event-relay-service/ports"
)

// Store is an in-memory outbox used by tests and development wiring.
// It implements the storage ports plus a manually advanceable Clock so
// backoff windows can be crossed without sleeping.
type Store struct {
	mu      sync.RWMutex
	records map[string]entities.OutboxRecord
	now     time.Time
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]entities.OutboxRecord),
		now:     time.Now().UTC(),
	}
}

// Insert seeds a pending record, standing in for a producer transaction.
func (s *Store) Insert(record entities.OutboxRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Payload = append([]byte(nil), record.Payload...)
	s.records[record.OutboxID] = record
}

// Get returns a snapshot of one record.
func (s *Store) Get(outboxID string) (entities.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[outboxID]
	if !ok {
		return entities.OutboxRecord{}, domainerrors.ErrRecordNotFound
	}
	return record, nil
}

func (s *Store) FetchEligible(_ context.Context, limit int, now time.Time) ([]entities.OutboxRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	eligible := make([]entities.OutboxRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.Eligible(now, 0) {
			eligible = append(eligible, record)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].OccurredAt.Before(eligible[j].OccurredAt)
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

func (s *Store) PersistOutcomes(_ context.Context, records []entities.OutboxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		if _, ok := s.records[record.OutboxID]; !ok {
			return domainerrors.ErrRecordNotFound
		}
		s.records[record.OutboxID] = record
	}
	return nil
}

func (s *Store) Stats(_ context.Context, now time.Time) (ports.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats ports.OutboxStats
	var oldestPending *time.Time
	for _, record := range s.records {
		switch {
		case record.Delivered():
			stats.DeliveredCount++
		case record.Poisoned():
			stats.PoisonedCount++
		default:
			stats.PendingCount++
			occurredAt := record.OccurredAt
			if oldestPending == nil || occurredAt.Before(*oldestPending) {
				oldestPending = &occurredAt
			}
		}
	}
	if oldestPending != nil {
		stats.OldestPendingAge = now.UTC().Sub(oldestPending.UTC())
	}
	return stats, nil
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

// Advance moves the store clock forward.
func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}
