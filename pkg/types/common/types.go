// Package common holds broker-neutral messaging and event types shared by the
// pricing domain and its messaging adapters.
package common

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything published about an aggregate.
type DomainEvent interface {
	EventID() string
	OccurredAt() time.Time
	AggregateID() string
}

type BaseEvent struct {
	ID        string    `json:"event_id"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     string    `json:"aggregate_id"`
}

func NewBaseEvent(aggID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		AggID:     aggID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggID }

//Personal.AI order the ending
