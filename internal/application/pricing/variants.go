package pricing

import (
	"github.com/shopspring/decimal"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
)

// The All*Variants helpers price every option of one dimension side by side.
// Each entry is an independent single-variant evaluation; nothing is shared
// across entries.

// AllPatentabilityVariants prices s at every turnaround.
func (e *Engine) AllPatentabilityVariants(rules domain.RuleSet, s domain.PatentabilitySearch) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(domain.Turnarounds))
	for _, t := range domain.Turnarounds {
		v := s
		v.Turnaround = t
		out[string(t)] = e.PatentabilityPrice(rules, v)
	}
	return out
}

// AllDraftingVariants prices s at every turnaround.
func (e *Engine) AllDraftingVariants(rules domain.RuleSet, s domain.Drafting) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(domain.Turnarounds))
	for _, t := range domain.Turnarounds {
		v := s
		v.Turnaround = t
		out[string(t)] = e.DraftingPrice(rules, v)
	}
	return out
}

// AllFilingVariants prices s for every filing type.
func (e *Engine) AllFilingVariants(rules domain.RuleSet, s domain.Filing) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(domain.FilingTypes))
	for _, ft := range domain.FilingTypes {
		v := s
		v.FilingType = ft
		out[string(ft)] = e.FilingPrice(rules, v)
	}
	return out
}

// AllFerVariants prices s for every due-date bucket.
func (e *Engine) AllFerVariants(rules domain.RuleSet, s domain.FER) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(domain.FerKeys))
	for _, k := range domain.FerKeys {
		v := s
		v.FerKey = k
		out[string(k)] = e.FerPrice(rules, v)
	}
	return out
}

// Variants dispatches to the helper for sel's kind.  Trademark selections
// have no variant dimension and yield nil.
func (e *Engine) Variants(rules domain.RuleSet, sel domain.ServiceSelection) map[string]decimal.Decimal {
	switch s := sel.(type) {
	case domain.PatentabilitySearch:
		return e.AllPatentabilityVariants(rules, s)
	case domain.Drafting:
		return e.AllDraftingVariants(rules, s)
	case domain.Filing:
		return e.AllFilingVariants(rules, s)
	case domain.FER:
		return e.AllFerVariants(rules, s)
	}
	return nil
}

func ComputeAllPatentabilityVariants(rules domain.RuleSet, s domain.PatentabilitySearch) map[string]decimal.Decimal {
	return defaultEngine().AllPatentabilityVariants(rules, s)
}

func ComputeAllDraftingVariants(rules domain.RuleSet, s domain.Drafting) map[string]decimal.Decimal {
	return defaultEngine().AllDraftingVariants(rules, s)
}

func ComputeAllFilingVariants(rules domain.RuleSet, s domain.Filing) map[string]decimal.Decimal {
	return defaultEngine().AllFilingVariants(rules, s)
}

func ComputeAllFerVariants(rules domain.RuleSet, s domain.FER) map[string]decimal.Decimal {
	return defaultEngine().AllFerVariants(rules, s)
}

//Personal.AI order the ending
