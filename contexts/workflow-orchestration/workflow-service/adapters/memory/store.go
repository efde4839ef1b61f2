package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meridian/contexts/workflow-orchestration/workflow-service/domain/entities"
	domainerrors "meridian/contexts/workflow-orchestration/workflow-service/domain/errors"
	"meridian/contexts/workflow-orchestration/workflow-service/ports"
)

// Store is an in-memory workflow repository for tests and development wiring.
// It also implements Clock and IDGenerator so a module can run on it alone.
type Store struct {
	mu sync.RWMutex

	runsByID      map[string]entities.WorkflowRun
	outboxEntries []ports.OutboxEntry

	now      time.Time
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		runsByID: make(map[string]entities.WorkflowRun),
		now:      time.Now().UTC(),
	}
}

func (s *Store) CreateRunWithOutbox(_ context.Context, run entities.WorkflowRun, entries []ports.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runsByID[run.RunID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.runsByID[run.RunID] = cloneRun(run)
	s.outboxEntries = append(s.outboxEntries, entries...)
	return nil
}

func (s *Store) UpdateRunWithOutbox(_ context.Context, run entities.WorkflowRun, expectedStep int, entries []ports.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runsByID[run.RunID]
	if !ok {
		return domainerrors.ErrRunNotFound
	}
	if existing.CurrentStep != expectedStep {
		return domainerrors.ErrConcurrentAdvance
	}
	s.runsByID[run.RunID] = cloneRun(run)
	s.outboxEntries = append(s.outboxEntries, entries...)
	return nil
}

func (s *Store) GetRun(_ context.Context, runID string) (entities.WorkflowRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runsByID[runID]
	if !ok {
		return entities.WorkflowRun{}, domainerrors.ErrRunNotFound
	}
	return cloneRun(run), nil
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

func cloneRun(run entities.WorkflowRun) entities.WorkflowRun {
	run.Steps = append([]string(nil), run.Steps...)
	return run
}
