package pricing

import (
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

// RulesUpdatedEvent is raised after a service's rule set has been replaced.
// The aggregate is the service id.
type RulesUpdatedEvent struct {
	common.BaseEvent
	ServiceID      string `json:"service_id"`
	RuleCount      int    `json:"rule_count"`
	DuplicateCount int    `json:"duplicate_count"`
	WarningCount   int    `json:"warning_count"`
}

func NewRulesUpdatedEvent(serviceID string, rules []PricingRule, warnings []ValidationWarning) *RulesUpdatedEvent {
	return &RulesUpdatedEvent{
		BaseEvent:      common.NewBaseEvent(serviceID),
		ServiceID:      serviceID,
		RuleCount:      len(rules),
		DuplicateCount: CountKind(warnings, WarnDuplicateKey),
		WarningCount:   len(warnings),
	}
}

//Personal.AI order the ending
