package events

import "time"

// Envelope is the shared event shape published on the Meridian bus.
// Outbox payloads store the typed event body only; relay publishers wrap
// it into this envelope at publish time.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	PartitionKey   string    `json:"partition_key"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}
