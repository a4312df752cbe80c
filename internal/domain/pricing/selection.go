package pricing

import (
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// GoodsServices is the goods/services declaration of a selection.  Either a
// non-empty Dropdown or a non-empty CustomText triggers the goods_services rule.
type GoodsServices struct {
	Dropdown   string `json:"dropdown,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
}

// Declared reports whether the goods_services component is triggered.
func (g GoodsServices) Declared() bool {
	return g.Dropdown != "" || g.CustomText != ""
}

// PriorUse records whether the mark or invention was used before.  Only Used
// is priced; the rest is carried for display and audit.
type PriorUse struct {
	Used         bool       `json:"used"`
	FirstUseDate *time.Time `json:"first_use_date,omitempty"`
	ProofFiles   []string   `json:"proof_files,omitempty"`
}

// SelectedOptions is the normalized, service-independent description of what
// a customer chose.  SearchType is opaque to the evaluator.
type SelectedOptions struct {
	ApplicationType ApplicationType `json:"application_type"`
	NiceClasses     []int           `json:"nice_classes,omitempty"`
	GoodsServices   GoodsServices   `json:"goods_services"`
	SearchType      string          `json:"search_type,omitempty"`
	PriorUse        PriorUse        `json:"prior_use"`
	Option1         bool            `json:"option1,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service-specific discriminators
// ─────────────────────────────────────────────────────────────────────────────

// SearchType is the depth of a patentability search.
type SearchType string

const (
	SearchQuick              SearchType = "quick"
	SearchFullWithoutOpinion SearchType = "full_without_opinion"
	SearchFullWithOpinion    SearchType = "full_with_opinion"
)

var SearchTypes = []SearchType{SearchQuick, SearchFullWithoutOpinion, SearchFullWithOpinion}

// Turnaround is the delivery-speed tier for search and drafting.
// "expediated" is the spelling stored in existing rule sets and forms.
type Turnaround string

const (
	TurnaroundStandard   Turnaround = "standard"
	TurnaroundExpediated Turnaround = "expediated"
	TurnaroundRush       Turnaround = "rush"
)

var Turnarounds = []Turnaround{TurnaroundStandard, TurnaroundExpediated, TurnaroundRush}

// DraftingType is the specification being drafted.
type DraftingType string

const (
	DraftingProvisional DraftingType = "ps"
	DraftingComplete    DraftingType = "cs"
	DraftingPSCS        DraftingType = "ps_cs"
)

var DraftingTypes = []DraftingType{DraftingProvisional, DraftingComplete, DraftingPSCS}

// FilingType is the kind of patent application filed.
type FilingType string

const (
	FilingProvisional           FilingType = "provisional"
	FilingCompleteSpecification FilingType = "complete_specification"
	FilingPSCS                  FilingType = "ps_cs"
	FilingPCT                   FilingType = "pct"
)

var FilingTypes = []FilingType{FilingProvisional, FilingCompleteSpecification, FilingPSCS, FilingPCT}

// FerKey is a First Examination Response due-date bucket.
type FerKey string

const (
	FerBaseFee         FerKey = "base_fee"
	FerDueWithin1Month FerKey = "due_within_1_month"
	FerDueWithin2Weeks FerKey = "due_within_2_weeks"
	FerDueWithin1Week  FerKey = "due_within_1_week"
)

const ferStandardDropdown = "standard"

var FerKeys = []FerKey{FerBaseFee, FerDueWithin1Month, FerDueWithin2Weeks, FerDueWithin1Week}

// ─────────────────────────────────────────────────────────────────────────────
// ServiceSelection tagged union
// ─────────────────────────────────────────────────────────────────────────────

// ServiceKind names the selection variant.
type ServiceKind string

const (
	ServicePatentabilitySearch ServiceKind = "patentability_search"
	ServiceDrafting            ServiceKind = "drafting"
	ServiceFiling              ServiceKind = "filing"
	ServiceFER                 ServiceKind = "fer"
	ServiceTrademark           ServiceKind = "trademark"
)

var ServiceKinds = []ServiceKind{ServicePatentabilitySearch, ServiceDrafting, ServiceFiling, ServiceFER, ServiceTrademark}

// ParseServiceKind accepts the canonical kind plus a few common aliases.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patentability_search", "patentability", "search":
		return ServicePatentabilitySearch, nil
	case "drafting":
		return ServiceDrafting, nil
	case "filing", "patent_filing":
		return ServiceFiling, nil
	case "fer", "fer_response":
		return ServiceFER, nil
	case "trademark", "generic", "":
		return ServiceTrademark, nil
	}
	return "", errors.New(errors.ErrCodeServiceUnknown, "unknown service kind").WithDetail(s)
}

// Common holds the fields every service selection shares.
type Common struct {
	ApplicationType ApplicationType `json:"application_type"`
	NiceClasses     []int           `json:"nice_classes,omitempty"`
	PriorUse        PriorUse        `json:"prior_use"`
}

// ServiceSelection is one service's typed selection.  Each variant knows how
// to project itself onto SelectedOptions; the evaluator never sees the
// service-specific fields.
type ServiceSelection interface {
	Kind() ServiceKind
	Options() SelectedOptions
	sealed()
}

func (c Common) base() SelectedOptions {
	return SelectedOptions{
		ApplicationType: c.ApplicationType,
		NiceClasses:     c.NiceClasses,
		PriorUse:        c.PriorUse,
	}
}

// PatentabilitySearch always includes option1.
type PatentabilitySearch struct {
	Common
	SearchType SearchType `json:"search_type"`
	Turnaround Turnaround `json:"turnaround"`
}

func (PatentabilitySearch) Kind() ServiceKind { return ServicePatentabilitySearch }
func (PatentabilitySearch) sealed()           {}

func (s PatentabilitySearch) Options() SelectedOptions {
	o := s.base()
	o.SearchType = string(s.SearchType)
	o.GoodsServices.Dropdown = string(s.Turnaround)
	o.Option1 = true
	return o
}

type Drafting struct {
	Common
	DraftingType DraftingType `json:"drafting_type"`
	Turnaround   Turnaround   `json:"turnaround"`
}

func (Drafting) Kind() ServiceKind { return ServiceDrafting }
func (Drafting) sealed()           {}

func (s Drafting) Options() SelectedOptions {
	o := s.base()
	o.SearchType = string(s.DraftingType)
	o.GoodsServices.Dropdown = string(s.Turnaround)
	o.Option1 = true
	return o
}

// Filing has no startup_msme tier; see FilingApplicant.
type Filing struct {
	Common
	FilingType FilingType `json:"filing_type"`
	SearchType string     `json:"search_type,omitempty"`
}

func (Filing) Kind() ServiceKind { return ServiceFiling }
func (Filing) sealed()           {}

func (s Filing) Options() SelectedOptions {
	o := s.base()
	o.ApplicationType = FilingApplicant(s.ApplicationType)
	o.SearchType = s.SearchType
	o.GoodsServices.Dropdown = string(s.FilingType)
	return o
}

// FilingApplicant collapses an application type onto the two filing tiers.
// Empty stays individual, everything that is not individual is others.
func FilingApplicant(a ApplicationType) ApplicationType {
	if a == "" || a == ApplicationIndividual {
		return ApplicationIndividual
	}
	return ApplicationOthers
}

// FER carries its due-date bucket in SearchType; turnaround is not a FER
// dimension so the dropdown is pinned to "standard".
type FER struct {
	Common
	FerKey FerKey `json:"fer_key"`
}

func (FER) Kind() ServiceKind { return ServiceFER }
func (FER) sealed()           {}

func (s FER) Options() SelectedOptions {
	o := s.base()
	o.SearchType = string(s.FerKey)
	o.GoodsServices.Dropdown = ferStandardDropdown
	return o
}

// Trademark is the plain, fully generic shape used when no specialised
// adapter applies.
type Trademark struct {
	Common
	GoodsServices GoodsServices `json:"goods_services"`
	SearchType    string        `json:"search_type,omitempty"`
	Option1       bool          `json:"option1,omitempty"`
}

func (Trademark) Kind() ServiceKind { return ServiceTrademark }
func (Trademark) sealed()           {}

func (s Trademark) Options() SelectedOptions {
	o := s.base()
	o.GoodsServices = s.GoodsServices
	o.SearchType = s.SearchType
	o.Option1 = s.Option1
	return o
}

//Personal.AI order the ending
