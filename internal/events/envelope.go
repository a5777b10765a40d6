package events

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format for every change-feed event.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload and wraps it. A payload that fails to
// marshal yields an envelope with a null payload rather than an error;
// the feed is advisory and consumers recount from the store anyway.
func NewEnvelope(eventType, aggregateType, aggregateID string, payload any) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage("null")
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}
}
