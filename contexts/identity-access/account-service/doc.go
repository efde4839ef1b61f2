// Package accounts implements the Account Service inside Meridian's
// identity-access context.
//
// Every account mutation records its domain event in the integration outbox
// table inside the same transaction as the state change; the integration
// event-relay worker delivers those rows to the bus afterwards.
//
// Layering:
// - domain: account entity, status rules, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence, clock, id generation, event shapes
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
package accounts
