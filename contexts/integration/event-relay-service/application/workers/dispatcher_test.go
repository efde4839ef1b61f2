package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meridian/contexts/integration/event-relay-service/adapters/memory"
	"meridian/contexts/integration/event-relay-service/application"
	"meridian/contexts/integration/event-relay-service/domain/entities"
	"meridian/contexts/integration/event-relay-service/domain/services"
)

type noteEvent struct {
	Note string `json:"note"`
}

func newDispatcher(t *testing.T, store *memory.Store, registry *application.Registry, maxAttempts int) Dispatcher {
	t.Helper()
	return Dispatcher{
		Outbox:      store,
		Registry:    registry,
		Clock:       store,
		MaxAttempts: maxAttempts,
		Backoff:     services.DefaultBackoffPolicy(),
	}
}

func pendingRecord(id string, logicalType string, payload string, occurredAt time.Time) entities.OutboxRecord {
	return entities.OutboxRecord{
		OutboxID:    id,
		LogicalType: logicalType,
		Payload:     []byte(payload),
		OccurredAt:  occurredAt,
	}
}

func TestDispatchDeliversValidRecord(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	var published []noteEvent
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, event noteEvent) error {
		published = append(published, event)
		return nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.note", `{"note":"hello"}`, base.Add(-time.Minute)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(published) != 1 || published[0].Note != "hello" {
		t.Fatalf("expected one published note event, got %+v", published)
	}
	record, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.Delivered() {
		t.Fatalf("expected delivered record, got %+v", record)
	}
	if record.Attempts != 0 {
		t.Fatalf("successful first delivery must not consume attempts, got %d", record.Attempts)
	}
	if record.LastError != "" {
		t.Fatalf("expected cleared error, got %q", record.LastError)
	}
}

func TestDispatchQuarantinesUnknownEventType(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	store.Insert(pendingRecord("rec-1", "integration.does_not_exist", `{}`, base.Add(-time.Minute)))

	dispatcher := newDispatcher(t, store, application.NewRegistry(), 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	record, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.Poisoned() {
		t.Fatalf("expected poisoned record, got %+v", record)
	}
	if !strings.Contains(record.LastError, "not registered") {
		t.Fatalf("expected not-registered diagnostic, got %q", record.LastError)
	}
	if record.Attempts != 0 {
		t.Fatalf("non-retryable poison must not consume attempts, got %d", record.Attempts)
	}
}

func TestDispatchQuarantinesUndecodablePayload(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, _ noteEvent) error {
		t.Fatal("publish must not run for an undecodable payload")
		return nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.note", `{not json`, base.Add(-time.Minute)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	record, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.Poisoned() {
		t.Fatalf("expected poisoned record, got %+v", record)
	}
	if record.Attempts != 0 {
		t.Fatalf("decode poison must not consume attempts, got %d", record.Attempts)
	}
}

func TestDispatchRetriesThenQuarantines(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	publishCalls := 0
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, _ noteEvent) error {
		publishCalls++
		return errors.New("broker unavailable")
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.note", `{"note":"hi"}`, base.Add(-time.Minute)))

	dispatcher := newDispatcher(t, store, registry, 3)

	var lastNextAttempt *time.Time
	for cycle := 0; cycle < 3; cycle++ {
		if err := dispatcher.RunOnce(context.Background()); err != nil {
			t.Fatalf("cycle %d failed: %v", cycle, err)
		}
		record, err := store.Get("rec-1")
		if err != nil {
			t.Fatalf("get record: %v", err)
		}
		if record.Attempts != cycle+1 {
			t.Fatalf("cycle %d: expected attempts %d, got %d", cycle, cycle+1, record.Attempts)
		}
		if cycle < 2 {
			if record.Terminal() {
				t.Fatalf("cycle %d: record must stay pending, got %+v", cycle, record)
			}
			if record.NextAttemptAt == nil {
				t.Fatalf("cycle %d: expected scheduled retry", cycle)
			}
			if lastNextAttempt != nil && !record.NextAttemptAt.After(*lastNextAttempt) {
				t.Fatalf("cycle %d: next attempt %v must advance past %v", cycle, record.NextAttemptAt, lastNextAttempt)
			}
			lastNextAttempt = record.NextAttemptAt
		}
		// Cross the backoff window before the next cycle.
		store.Advance(2 * time.Minute)
	}

	if publishCalls != 3 {
		t.Fatalf("expected exactly 3 publish attempts, got %d", publishCalls)
	}
	record, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.Poisoned() {
		t.Fatalf("expected quarantined record, got %+v", record)
	}
	if record.LastError != "broker unavailable" {
		t.Fatalf("expected last failure preserved, got %q", record.LastError)
	}
	if record.Attempts != 3 {
		t.Fatalf("attempts must stop at max, got %d", record.Attempts)
	}

	// Terminal records are never re-dispatched.
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("post-terminal cycle failed: %v", err)
	}
	if publishCalls != 3 {
		t.Fatalf("terminal record was re-dispatched: %d calls", publishCalls)
	}
}

func TestDispatchRespectsBackoffWindow(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	publishCalls := 0
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, _ noteEvent) error {
		publishCalls++
		return errors.New("broker unavailable")
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.note", `{"note":"hi"}`, base.Add(-time.Minute)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if publishCalls != 1 {
		t.Fatalf("expected 1 publish call, got %d", publishCalls)
	}

	// Before the retry window opens the record is not eligible.
	store.Advance(time.Second)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if publishCalls != 1 {
		t.Fatalf("record dispatched before its backoff window, calls %d", publishCalls)
	}

	store.Advance(5 * time.Second)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if publishCalls != 2 {
		t.Fatalf("expected retry after backoff window, calls %d", publishCalls)
	}
}

func TestDispatchPreservesOccurredAtOrder(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	var order []string
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, event noteEvent) error {
		order = append(order, event.Note)
		return nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Inserted out of order on purpose.
	store.Insert(pendingRecord("rec-2", "integration.note", `{"note":"second"}`, base.Add(-2*time.Second)))
	store.Insert(pendingRecord("rec-3", "integration.note", `{"note":"third"}`, base.Add(-time.Second)))
	store.Insert(pendingRecord("rec-1", "integration.note", `{"note":"first"}`, base.Add(-3*time.Second)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d publishes, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("publish order %v, want %v", order, want)
		}
	}
}

func TestDispatchStopsMidBatchOnCancellation(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publishCalls := 0
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, _ noteEvent) error {
		publishCalls++
		// Shutdown arrives while the first record is in flight.
		cancel()
		return nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.note", `{"note":"a"}`, base.Add(-2*time.Second)))
	store.Insert(pendingRecord("rec-2", "integration.note", `{"note":"b"}`, base.Add(-time.Second)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if publishCalls != 1 {
		t.Fatalf("expected only the in-flight record published, got %d", publishCalls)
	}

	first, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get first record: %v", err)
	}
	if !first.Delivered() {
		t.Fatalf("in-flight record outcome must be persisted, got %+v", first)
	}

	second, err := store.Get("rec-2")
	if err != nil {
		t.Fatalf("get second record: %v", err)
	}
	if second.Terminal() || second.Attempts != 0 || second.NextAttemptAt != nil {
		t.Fatalf("second record must remain untouched, got %+v", second)
	}
}

func TestDispatchIsolatesRecordFailures(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(base)

	var delivered []string
	registry := application.NewRegistry()
	if err := application.RegisterJSON(registry, "integration.note", func(_ context.Context, event noteEvent) error {
		delivered = append(delivered, event.Note)
		return nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	store.Insert(pendingRecord("rec-1", "integration.unknown", `{}`, base.Add(-3*time.Second)))
	store.Insert(pendingRecord("rec-2", "integration.note", `{"note":"ok"}`, base.Add(-2*time.Second)))

	dispatcher := newDispatcher(t, store, registry, 5)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(delivered) != 1 || delivered[0] != "ok" {
		t.Fatalf("healthy record must deliver despite poison neighbor, got %v", delivered)
	}
	poisoned, err := store.Get("rec-1")
	if err != nil {
		t.Fatalf("get poisoned record: %v", err)
	}
	if !poisoned.Poisoned() {
		t.Fatalf("expected quarantine for unknown type, got %+v", poisoned)
	}
}

func TestRunOnceSurfacesFetchFailure(t *testing.T) {
	registry := application.NewRegistry()
	dispatcher := Dispatcher{
		Outbox:   failingStore{err: errors.New("store offline")},
		Registry: registry,
		Backoff:  services.DefaultBackoffPolicy(),
	}

	if err := dispatcher.RunOnce(context.Background()); err == nil {
		t.Fatal("expected cycle error when the store is unavailable")
	}
}

type failingStore struct {
	err error
}

func (f failingStore) FetchEligible(context.Context, int, time.Time) ([]entities.OutboxRecord, error) {
	return nil, f.err
}

func (f failingStore) PersistOutcomes(context.Context, []entities.OutboxRecord) error {
	return f.err
}
