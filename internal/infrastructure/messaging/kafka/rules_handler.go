package kafka

import (
	"context"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

// RulesInvalidator drops whatever a replica caches for one service's rules.
type RulesInvalidator interface {
	HandleRulesUpdated(ctx context.Context, serviceID string) error
}

// NewRulesUpdatedHandler feeds rule notices to inv. Notices from selfSource
// are skipped since that replica invalidated before publishing. Messages that
// can never decode are acknowledged after a warning.
func NewRulesUpdatedHandler(inv RulesInvalidator, selfSource string, logger logging.Logger) common.MessageHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(ctx context.Context, msg *common.Message) error {
		env, err := MessageToEventEnvelope(msg)
		if err != nil {
			logger.Warn("dropping malformed rule notice", logging.Int64("offset", msg.Offset), logging.Err(err))
			return nil
		}
		if env.EventType != EventTypeRulesUpdated || (selfSource != "" && env.Source == selfSource) {
			return nil
		}
		var p RulesUpdatedPayload
		if err := env.DecodePayload(&p); err != nil || p.ServiceID == "" {
			logger.Warn("dropping rule notice without service id", logging.String("event_id", env.EventID))
			return nil
		}
		logger.Debug("rule notice received", logging.String("service_id", p.ServiceID), logging.String("source", env.Source))
		return inv.HandleRulesUpdated(ctx, p.ServiceID)
	}
}

//Personal.AI order the ending
