package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rule is one pricing rule row.
type Rule struct {
	ID              string          `json:"id,omitempty"`
	ServiceID       string          `json:"service_id,omitempty"`
	ApplicationType string          `json:"application_type"`
	Key             string          `json:"key"`
	Unit            string          `json:"unit"`
	Amount          decimal.Decimal `json:"amount"`
	Variant         string          `json:"variant,omitempty"`
}

// Warning is a rule validation finding.
type Warning struct {
	Kind            string `json:"kind"`
	Index           int    `json:"index"`
	RuleID          string `json:"rule_id,omitempty"`
	ServiceID       string `json:"service_id,omitempty"`
	ApplicationType string `json:"application_type,omitempty"`
	Key             string `json:"key,omitempty"`
	Variant         string `json:"variant,omitempty"`
	Message         string `json:"message"`
}

type GoodsServices struct {
	Dropdown   string `json:"dropdown,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
}

type PriorUse struct {
	Used         bool       `json:"used"`
	FirstUseDate *time.Time `json:"first_use_date,omitempty"`
	ProofFiles   []string   `json:"proof_files,omitempty"`
}

// Selection is a service selection.  Kind is one of trademark,
// patentability_search, drafting, filing or fer.
type Selection struct {
	Kind            string        `json:"kind"`
	ApplicationType string        `json:"application_type,omitempty"`
	NiceClasses     []int         `json:"nice_classes,omitempty"`
	PriorUse        PriorUse      `json:"prior_use"`
	GoodsServices   GoodsServices `json:"goods_services"`
	Option1         bool          `json:"option1,omitempty"`
	SearchType      string        `json:"search_type,omitempty"`
	Turnaround      string        `json:"turnaround,omitempty"`
	DraftingType    string        `json:"drafting_type,omitempty"`
	FilingType      string        `json:"filing_type,omitempty"`
	FerKey          string        `json:"fer_key,omitempty"`
}

// Form is the order form state a preview is derived from.
type Form struct {
	Service         string        `json:"service,omitempty"`
	ApplicantLabels []string      `json:"applicant_labels,omitempty"`
	FilingApplicant string        `json:"filing_applicant,omitempty"`
	NiceClasses     []int         `json:"nice_classes,omitempty"`
	GoodsServices   GoodsServices `json:"goods_services"`
	PriorUse        PriorUse      `json:"prior_use"`
	Option1         bool          `json:"option1,omitempty"`
	SearchType      string        `json:"search_type,omitempty"`
	Turnaround      string        `json:"turnaround,omitempty"`
	DraftingType    string        `json:"drafting_type,omitempty"`
	FilingType      string        `json:"filing_type,omitempty"`
	FerKey          string        `json:"fer_key,omitempty"`
}

type Breakdown struct {
	Option1         decimal.Decimal `json:"option1"`
	NiceClasses     decimal.Decimal `json:"nice_classes"`
	GoodsServices   decimal.Decimal `json:"goods_services"`
	PriorUse        decimal.Decimal `json:"prior_use"`
	ProfessionalFee decimal.Decimal `json:"professional_fee"`
	Total           decimal.Decimal `json:"total"`
}

type Quote struct {
	ID              string                     `json:"id"`
	ServiceID       string                     `json:"service_id,omitempty"`
	Kind            string                     `json:"kind"`
	ApplicationType string                     `json:"application_type"`
	Breakdown       Breakdown                  `json:"breakdown"`
	Total           decimal.Decimal            `json:"total"`
	GovernmentFee   decimal.Decimal            `json:"government_fee"`
	Variants        map[string]decimal.Decimal `json:"variants,omitempty"`
	Warnings        []Warning                  `json:"warnings,omitempty"`
	RuleCount       int                        `json:"rule_count"`
	SnapshotKey     string                     `json:"snapshot_key,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

type Preview struct {
	Service            string                     `json:"service"`
	ApplicationType    string                     `json:"application_type"`
	Total              decimal.Decimal            `json:"total"`
	ProfessionalFee    decimal.Decimal            `json:"professional_fee"`
	GovernmentFee      decimal.Decimal            `json:"government_fee"`
	PatentabilityTotal decimal.Decimal            `json:"patentability_total"`
	DraftingTotal      decimal.Decimal            `json:"drafting_total"`
	FilingTotal        decimal.Decimal            `json:"filing_total"`
	FerTotal           decimal.Decimal            `json:"fer_total"`
	Variants           map[string]decimal.Decimal `json:"variants,omitempty"`
}

// Snapshot is a stored quote with the exact rules it was priced against.
type Snapshot struct {
	Quote     *Quote    `json:"quote"`
	Rules     []Rule    `json:"rules"`
	Selection Selection `json:"selection"`
}

type RuleSet struct {
	ServiceID string    `json:"service_id"`
	Rules     []Rule    `json:"rules"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

type ReplaceResult struct {
	ServiceID string    `json:"service_id"`
	RuleCount int       `json:"rule_count"`
	Warnings  []Warning `json:"warnings,omitempty"`
	EventID   string    `json:"event_id,omitempty"`
}

type ValidateResult struct {
	RuleCount int       `json:"rule_count"`
	Warnings  []Warning `json:"warnings"`
	Blocking  bool      `json:"blocking"`
}

//Personal.AI order the ending
