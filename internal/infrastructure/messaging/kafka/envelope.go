package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

// EventTypeRulesUpdated tags the envelope of a rule replacement notice.
const EventTypeRulesUpdated = "pricing.rules.updated"

const envelopeSchemaVersion = "v1"

// EventEnvelope wraps every event on the rules topic.  Payload stays raw
// until a handler that knows EventType decodes it.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RulesUpdatedPayload announces that a service's rule set was replaced.
type RulesUpdatedPayload struct {
	ServiceID      string    `json:"service_id"`
	RuleCount      int       `json:"rule_count"`
	DuplicateCount int       `json:"duplicate_count"`
	WarningCount   int       `json:"warning_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode event payload").WithDetail(eventType)
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: envelopeSchemaVersion,
		Payload:       raw,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event has no payload").WithDetail(e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode event payload").WithDetail(e.EventType)
	}
	return nil
}

// ToMessage renders the envelope for topic.  key selects the partition, so
// every notice for one service stays in order.
func (e *EventEnvelope) ToMessage(topic, key string) (*common.ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode event envelope")
	}
	msg := &common.ProducerMessage{
		Topic: topic,
		Value: value,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	if e.TraceID != "" {
		msg.Headers["trace_id"] = e.TraceID
	}
	return msg, nil
}

// MessageToEventEnvelope decodes a consumed message.  Messages without an
// event type are rejected so they land in the dead-letter topic.
func MessageToEventEnvelope(msg *common.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "message has no value").WithDetail(msg.Topic)
	}
	env := new(EventEnvelope)
	if err := json.Unmarshal(msg.Value, env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event envelope").WithDetail(msg.Topic)
	}
	if env.EventType == "" {
		return nil, errors.New(errors.ErrCodeValidation, "event envelope has no event_type").WithDetail(msg.Topic)
	}
	return env, nil
}

//Personal.AI order the ending
