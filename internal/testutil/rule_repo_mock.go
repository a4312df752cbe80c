package testutil

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
)

// MockRuleRepository is a testify mock of pricing.RuleRepository.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) ListByService(ctx context.Context, serviceID string) ([]pricing.PricingRule, error) {
	args := m.Called(ctx, serviceID)
	rules, _ := args.Get(0).([]pricing.PricingRule)
	return rules, args.Error(1)
}

func (m *MockRuleRepository) ReplaceForService(ctx context.Context, serviceID string, rules []pricing.PricingRule) error {
	args := m.Called(ctx, serviceID, rules)
	return args.Error(0)
}

func (m *MockRuleRepository) ListServices(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

// Rule builds an unscoped rule for service "svc".
func Rule(app pricing.ApplicationType, key pricing.RuleKey, unit pricing.RuleUnit, amount int64) pricing.PricingRule {
	return pricing.PricingRule{
		ServiceID:       "svc",
		ApplicationType: app,
		Key:             key,
		Unit:            unit,
		Amount:          decimal.NewFromInt(amount),
	}
}

// VariantRule builds a rule scoped to variant.
func VariantRule(app pricing.ApplicationType, key pricing.RuleKey, amount int64, variant string) pricing.PricingRule {
	r := Rule(app, key, pricing.UnitFixed, amount)
	r.Variant = variant
	return r
}

//Personal.AI order the ending
