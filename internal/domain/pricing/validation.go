package pricing

import (
	"fmt"
)

// WarningKind classifies a rule-set validation finding.
type WarningKind string

const (
	WarnDuplicateKey           WarningKind = "duplicate_key"
	WarnUnknownApplicationType WarningKind = "unknown_application_type"
	WarnUnknownKey             WarningKind = "unknown_key"
	WarnUnknownUnit            WarningKind = "unknown_unit"
	WarnNegativeAmount         WarningKind = "negative_amount"
	WarnMissingProfessionalFee WarningKind = "missing_professional_fee"
)

// ValidationWarning describes one problem in a rule set.  Index is the
// position of the offending rule, or -1 for set-level findings.
type ValidationWarning struct {
	Kind            WarningKind     `json:"kind"`
	Index           int             `json:"index"`
	RuleID          string          `json:"rule_id,omitempty"`
	ServiceID       string          `json:"service_id,omitempty"`
	ApplicationType ApplicationType `json:"application_type,omitempty"`
	Key             RuleKey         `json:"key,omitempty"`
	Variant         string          `json:"variant,omitempty"`
	Message         string          `json:"message"`
}

// Blocking reports whether the warning should stop the rule set from being
// stored.  Duplicates and a missing professional fee are tolerated because
// evaluation degrades gracefully around them.
func (w ValidationWarning) Blocking() bool {
	switch w.Kind {
	case WarnUnknownApplicationType, WarnUnknownKey, WarnUnknownUnit, WarnNegativeAmount:
		return true
	}
	return false
}

// HasBlocking reports whether any warning is blocking.
func HasBlocking(ws []ValidationWarning) bool {
	for _, w := range ws {
		if w.Blocking() {
			return true
		}
	}
	return false
}

// CountKind counts warnings of one kind.
func CountKind(ws []ValidationWarning, kind WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// dupKey mirrors IndexRules: service ids are not part of a rule's identity
// during evaluation, so they are not part of it here either.
type dupKey struct {
	appType ApplicationType
	key     RuleKey
	variant string
}

// ValidateRules inspects a rule set without changing how it evaluates.
// Duplicates are reported against the rule that shadows the earlier one,
// which is the rule evaluation keeps.
func ValidateRules(rules []PricingRule) []ValidationWarning {
	var out []ValidationWarning
	seen := make(map[dupKey]int, len(rules))
	appTypes := make(map[ApplicationType]bool)
	hasFee := make(map[ApplicationType]bool)

	for i, r := range rules {
		base := ValidationWarning{
			Index:           i,
			RuleID:          r.ID,
			ServiceID:       r.ServiceID,
			ApplicationType: r.ApplicationType,
			Key:             r.Key,
			Variant:         r.Variant,
		}

		if !r.ApplicationType.IsValid() {
			w := base
			w.Kind = WarnUnknownApplicationType
			w.Message = fmt.Sprintf("rule %d: unknown application type %q", i, r.ApplicationType)
			out = append(out, w)
		} else {
			appTypes[r.ApplicationType] = true
		}
		if !r.Key.IsValid() {
			w := base
			w.Kind = WarnUnknownKey
			w.Message = fmt.Sprintf("rule %d: unknown key %q", i, r.Key)
			out = append(out, w)
		}
		if !r.Unit.IsValid() {
			w := base
			w.Kind = WarnUnknownUnit
			w.Message = fmt.Sprintf("rule %d: unknown unit %q", i, r.Unit)
			out = append(out, w)
		}
		if r.Amount.IsNegative() {
			w := base
			w.Kind = WarnNegativeAmount
			w.Message = fmt.Sprintf("rule %d: negative amount %s", i, r.Amount.String())
			out = append(out, w)
		}
		if r.Key == KeyProfessionalFee {
			hasFee[r.ApplicationType] = true
		}

		k := dupKey{appType: r.ApplicationType, key: r.Key, variant: r.Variant}
		if prev, ok := seen[k]; ok {
			w := base
			w.Kind = WarnDuplicateKey
			w.Message = fmt.Sprintf("rule %d shadows rule %d for (%s, %s, %s)", i, prev, r.ServiceID, r.ApplicationType, r.Key)
			out = append(out, w)
		}
		seen[k] = i
	}

	for _, a := range ApplicationTypes {
		if appTypes[a] && !hasFee[a] {
			out = append(out, ValidationWarning{
				Kind:            WarnMissingProfessionalFee,
				Index:           -1,
				ApplicationType: a,
				Key:             KeyProfessionalFee,
				Message:         fmt.Sprintf("no professional_fee rule for application type %s", a),
			})
		}
	}
	return out
}

//Personal.AI order the ending
