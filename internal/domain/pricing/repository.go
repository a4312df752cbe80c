package pricing

import "context"

// RuleRepository is the rule store accessor.  ListByService returns rules in
// store order, which matters because evaluation resolves duplicates last-wins.
type RuleRepository interface {
	ListByService(ctx context.Context, serviceID string) ([]PricingRule, error)
	ReplaceForService(ctx context.Context, serviceID string, rules []PricingRule) error
	ListServices(ctx context.Context) ([]string, error)
}

//Personal.AI order the ending
