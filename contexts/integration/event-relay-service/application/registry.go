package application

import (
	"context"
	"encoding/json"
	"fmt"

	domainerrors "meridian/contexts/integration/event-relay-service/domain/errors"
)

// Registration binds a logical event type to its payload decoder and its
// bus publish closure. Both halves are supplied at startup, so the dispatch
// hot path never reflects over event types.
type Registration struct {
	Decode  func(payload []byte) (any, error)
	Publish func(ctx context.Context, event any) error
}

// Registry maps logical event type names to registrations. It is built once
// during composition-root wiring and read-only afterwards; resolution of a
// given name is deterministic for the process lifetime.
type Registry struct {
	registrations map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{registrations: make(map[string]Registration)}
}

// Register installs a registration under its logical type name.
// Re-registering a name is a wiring bug and is rejected.
func (r *Registry) Register(logicalType string, registration Registration) error {
	if logicalType == "" {
		return fmt.Errorf("register event type: empty logical type")
	}
	if registration.Decode == nil || registration.Publish == nil {
		return fmt.Errorf("register event type %q: decode and publish are required", logicalType)
	}
	if _, exists := r.registrations[logicalType]; exists {
		return fmt.Errorf("%w: %s", domainerrors.ErrDuplicateRegistration, logicalType)
	}
	r.registrations[logicalType] = registration
	return nil
}

// Resolve returns the registration for a logical type name.
func (r *Registry) Resolve(logicalType string) (Registration, bool) {
	registration, ok := r.registrations[logicalType]
	return registration, ok
}

// Len reports how many event types are registered.
func (r *Registry) Len() int {
	return len(r.registrations)
}

// RegisterJSON wires a typed publish closure under a logical type name,
// deriving the decoder from the type's JSON shape. This is the one place
// runtime polymorphism over event types happens: the registry erases T so
// the dispatcher can treat every event uniformly.
func RegisterJSON[T any](r *Registry, logicalType string, publish func(ctx context.Context, event T) error) error {
	return r.Register(logicalType, Registration{
		Decode: func(payload []byte) (any, error) {
			var event T
			if err := json.Unmarshal(payload, &event); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", domainerrors.ErrPayloadDecodeFailed, logicalType, err)
			}
			return event, nil
		},
		Publish: func(ctx context.Context, event any) error {
			typed, ok := event.(T)
			if !ok {
				return fmt.Errorf("unexpected decoded type %T for %s", event, logicalType)
			}
			return publish(ctx, typed)
		},
	})
}
