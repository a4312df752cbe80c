// Package pricing holds the rule-driven price evaluation core: the pricing
// rule model, the normalized selection a customer makes, the service-specific
// selection variants and the evaluator that folds rules over a selection.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// ApplicationType is the applicant's business/legal category, a fee-tier
// discriminator.
type ApplicationType string

const (
	ApplicationIndividual  ApplicationType = "individual"
	ApplicationStartupMSME ApplicationType = "startup_msme"
	ApplicationOthers      ApplicationType = "others"
)

// ApplicationTypes lists every valid application type in display order.
var ApplicationTypes = []ApplicationType{ApplicationIndividual, ApplicationStartupMSME, ApplicationOthers}

func (a ApplicationType) IsValid() bool {
	switch a {
	case ApplicationIndividual, ApplicationStartupMSME, ApplicationOthers:
		return true
	}
	return false
}

func (a ApplicationType) String() string { return string(a) }

// ParseApplicationType accepts the canonical value case-insensitively.
func ParseApplicationType(s string) (ApplicationType, error) {
	a := ApplicationType(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", errors.InvalidParam("unknown application type").WithDetail(s)
	}
	return a, nil
}

// RuleKey identifies which cost component a rule prices.
type RuleKey string

const (
	KeyOption1         RuleKey = "option1"
	KeyNiceClasses     RuleKey = "nice_classes"
	KeyGoodsServices   RuleKey = "goods_services"
	KeyPriorUseYes     RuleKey = "prior_use_yes"
	KeyProfessionalFee RuleKey = "professional_fee"
)

func (k RuleKey) IsValid() bool {
	switch k {
	case KeyOption1, KeyNiceClasses, KeyGoodsServices, KeyPriorUseYes, KeyProfessionalFee:
		return true
	}
	return false
}

func (k RuleKey) String() string { return string(k) }

// RuleUnit says whether an amount is applied once or per NICE class.
type RuleUnit string

const (
	UnitFixed    RuleUnit = "fixed"
	UnitPerClass RuleUnit = "per_class"
)

func (u RuleUnit) IsValid() bool {
	return u == UnitFixed || u == UnitPerClass
}

func (u RuleUnit) String() string { return string(u) }

// PricingRule is one atomic pricing fact for one service, one applicant
// category and one cost component.
//
// Amount unmarshals from both JSON numbers and numeric strings, since rule
// stores commonly return NUMERIC columns as text.
type PricingRule struct {
	ID              string          `json:"id"`
	ServiceID       string          `json:"service_id"`
	ApplicationType ApplicationType `json:"application_type"`
	Key             RuleKey         `json:"key"`
	Unit            RuleUnit        `json:"unit"`
	Amount          decimal.Decimal `json:"amount"`

	// Variant optionally scopes the rule to one adapter variant (a search
	// depth, turnaround, filing type or FER bucket). Empty means unscoped.
	Variant string `json:"variant,omitempty"`
}

// Validate reports the first structural problem with the rule.
func (r PricingRule) Validate() error {
	if !r.ApplicationType.IsValid() {
		return errors.New(errors.ErrCodeRuleInvalid, "unknown application type").WithDetail(string(r.ApplicationType))
	}
	if !r.Key.IsValid() {
		return errors.New(errors.ErrCodeRuleInvalid, "unknown rule key").WithDetail(string(r.Key))
	}
	if !r.Unit.IsValid() {
		return errors.New(errors.ErrCodeRuleInvalid, "unknown rule unit").WithDetail(string(r.Unit))
	}
	if r.Amount.IsNegative() {
		return errors.New(errors.ErrCodeRuleInvalid, "amount must not be negative").WithDetail(r.Amount.String())
	}
	return nil
}

// AppliesTo reports whether a variant-scoped rule matches the selection.
// Unscoped rules always apply.
func (r PricingRule) AppliesTo(opts SelectedOptions) bool {
	if r.Variant == "" {
		return true
	}
	return r.Variant == opts.SearchType || r.Variant == opts.GoodsServices.Dropdown
}

// RuleSet is the flat list of rules for one service, in store order.
type RuleSet []PricingRule

// ForSelection drops variant-scoped rules that do not match opts.  Unscoped
// rules come first and matching scoped rules after them, each group in store
// order, so under last-wins indexing a variant rule overrides the unscoped
// rule for the same key.
func (rs RuleSet) ForSelection(opts SelectedOptions) RuleSet {
	if rs == nil {
		return nil
	}
	out := make(RuleSet, 0, len(rs))
	for _, r := range rs {
		if r.Variant == "" {
			out = append(out, r)
		}
	}
	for _, r := range rs {
		if r.Variant != "" && r.AppliesTo(opts) {
			out = append(out, r)
		}
	}
	return out
}

// Unscoped returns only the rules with no variant.
func (rs RuleSet) Unscoped() RuleSet {
	if rs == nil {
		return nil
	}
	out := make(RuleSet, 0, len(rs))
	for _, r := range rs {
		if r.Variant == "" {
			out = append(out, r)
		}
	}
	return out
}

// Amount returns the amount of the last rule matching appType and key among
// the unscoped rules, or zero.
func (rs RuleSet) Amount(appType ApplicationType, key RuleKey) decimal.Decimal {
	if r, ok := IndexRules(rs.Unscoped(), appType)[key]; ok {
		return r.Amount
	}
	return decimal.Zero
}

//Personal.AI order the ending
