package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every message published to Kafka is wrapped in.
// Payload carries the event-specific body; the envelope fields let consumers
// trace, dedupe, and route without inspecting the payload.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent builds an event envelope around the given payload.
func NewEvent(eventType, source string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

// Marshal serializes the event for the wire.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
