package messaging

import (
	"context"
	"testing"
	"time"

	"meridian/internal/shared/events"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	err := bus.Subscribe(ctx, "identity.accounts", "test-group", func(_ context.Context, envelope events.Envelope) error {
		received <- envelope
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	envelope := events.Envelope{
		EventID:   "evt-1",
		EventType: "identity.account.registered",
	}
	if err := bus.Publish(ctx, "identity.accounts", envelope); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" {
			t.Fatalf("unexpected envelope: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the envelope")
	}
}

func TestBusIsolatesTopics(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, "workflow.runs", "test-group", func(_ context.Context, envelope events.Envelope) error {
		received <- envelope
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "identity.accounts", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		t.Fatalf("subscriber received an envelope from another topic: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusPublishRejectsCancelledContext(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := bus.Publish(ctx, "identity.accounts", events.Envelope{EventID: "evt-1"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
