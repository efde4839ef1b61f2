// Package workflows implements the Workflow Service inside Meridian's
// workflow-orchestration context.
//
// A workflow run is a named definition with an ordered list of steps and a
// cursor. Starting a run and advancing its cursor are the two mutations; each
// writes its domain event into the integration outbox table inside the same
// transaction, for asynchronous delivery by the integration event-relay worker.
//
// Layering:
// - domain: workflow run entity, step cursor rules, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence, clock, id generation, event shapes
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
package workflows
