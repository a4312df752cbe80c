package kafka

import (
	"context"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

// MessagePublisher is what the rule publisher and the dead-letter path need
// from a Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// RulesPublisher announces rule set replacements to the other replicas.
// Notices are keyed by service id so one service's notices stay in order.
type RulesPublisher struct {
	producer MessagePublisher
	topic    string
	source   string
}

// NewRulesPublisher stamps source on every envelope so the sending replica can
// recognise and skip its own notices.
func NewRulesPublisher(producer MessagePublisher, topic, source string) *RulesPublisher {
	return &RulesPublisher{producer: producer, topic: topic, source: source}
}

func (r *RulesPublisher) PublishRulesUpdated(ctx context.Context, event *domain.RulesUpdatedEvent) error {
	if event == nil || event.ServiceID == "" {
		return errors.New(errors.ErrCodeValidation, "rules updated event requires a service id")
	}
	env, err := NewEventEnvelope(EventTypeRulesUpdated, r.source, RulesUpdatedPayload{
		ServiceID:      event.ServiceID,
		RuleCount:      event.RuleCount,
		DuplicateCount: event.DuplicateCount,
		WarningCount:   event.WarningCount,
		UpdatedAt:      event.OccurredAt(),
	})
	if err != nil {
		return err
	}
	if id := event.EventID(); id != "" {
		env.EventID = id
	}
	msg, err := env.ToMessage(r.topic, event.ServiceID)
	if err != nil {
		return err
	}
	if err := r.producer.Publish(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "rules updated notice not published").WithDetail(event.ServiceID)
	}
	return nil
}

//Personal.AI order the ending
