package pricing

import (
	"github.com/shopspring/decimal"
)

// Breakdown is the per-component result of one evaluation.  Total is the sum
// of the other fields.
type Breakdown struct {
	Option1         decimal.Decimal `json:"option1"`
	NiceClasses     decimal.Decimal `json:"nice_classes"`
	GoodsServices   decimal.Decimal `json:"goods_services"`
	PriorUse        decimal.Decimal `json:"prior_use"`
	ProfessionalFee decimal.Decimal `json:"professional_fee"`
	Total           decimal.Decimal `json:"total"`
}

// GovernmentFee is the implied remainder after the professional fee, never
// below zero.  It is a display figure, not a priced rule.
func (b Breakdown) GovernmentFee() decimal.Decimal {
	g := b.Total.Sub(b.ProfessionalFee)
	if g.IsNegative() {
		return decimal.Zero
	}
	return g
}

// IndexRules maps each key to its rule for one application type.  When
// several rules share a key the last one in iteration order wins.
func IndexRules(rules []PricingRule, appType ApplicationType) map[RuleKey]PricingRule {
	idx := make(map[RuleKey]PricingRule, len(rules))
	for _, r := range rules {
		if r.ApplicationType != appType {
			continue
		}
		idx[r.Key] = r
	}
	return idx
}

// Evaluate folds rules over a selection.  Missing rules and missing selection
// fields contribute zero; Evaluate never fails.
func Evaluate(rules []PricingRule, sel SelectedOptions) Breakdown {
	b := Breakdown{
		Option1:         decimal.Zero,
		NiceClasses:     decimal.Zero,
		GoodsServices:   decimal.Zero,
		PriorUse:        decimal.Zero,
		ProfessionalFee: decimal.Zero,
	}
	idx := IndexRules(rules, sel.ApplicationType)

	if r, ok := idx[KeyOption1]; ok && sel.Option1 {
		b.Option1 = r.Amount
	}

	if r, ok := idx[KeyNiceClasses]; ok && len(sel.NiceClasses) > 0 {
		if r.Unit == UnitPerClass {
			b.NiceClasses = r.Amount.Mul(decimal.NewFromInt(int64(len(sel.NiceClasses))))
		} else {
			b.NiceClasses = r.Amount
		}
	}

	if r, ok := idx[KeyGoodsServices]; ok && sel.GoodsServices.Declared() {
		b.GoodsServices = r.Amount
	}

	if r, ok := idx[KeyPriorUseYes]; ok && sel.PriorUse.Used {
		b.PriorUse = r.Amount
	}

	if r, ok := idx[KeyProfessionalFee]; ok {
		b.ProfessionalFee = r.Amount
	}

	b.Total = b.Option1.Add(b.NiceClasses).Add(b.GoodsServices).Add(b.PriorUse).Add(b.ProfessionalFee)
	return b
}

// ComputePriceFromRules returns the total price of sel under rules.
func ComputePriceFromRules(rules []PricingRule, sel SelectedOptions) decimal.Decimal {
	return Evaluate(rules, sel).Total
}

//Personal.AI order the ending
