// Package eventrelay implements the Integration Event Relay inside Meridian.
//
// Producer services record domain events in the integration outbox table inside
// the same transaction as their state changes. This module owns the other half
// of the pattern: a background dispatcher that drains committed outbox rows to
// the event bus with at-least-once semantics, exponential retry backoff, and
// quarantine of poison rows that can never be delivered.
//
// Layering:
// - domain: outbox record entity, state-machine invariants, backoff policy, errors
// - application: event type registry and the dispatcher worker
// - ports: stable boundaries for storage, clock, and stats
// - adapters: concrete postgres and memory implementations
//
// Boundary notes:
// - Keep this module self-contained under the integration context.
// - Producer contexts share only the outbox table contract, never Go types.
// - Delivery is at-least-once; downstream consumers must dedupe on event id.
package eventrelay
