package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
)

// FormState is the in-progress order form the preview is derived from.
type FormState struct {
	Service domain.ServiceKind `json:"service"`

	// ApplicantLabels are the human-facing applicant checkboxes as ticked.
	ApplicantLabels []string `json:"applicant_labels,omitempty"`

	// FilingApplicant is the explicit individual/others selector shown on the
	// filing form.  When set it overrides ApplicantLabels for filing.
	FilingApplicant domain.ApplicationType `json:"filing_applicant,omitempty"`

	NiceClasses   []int                `json:"nice_classes,omitempty"`
	GoodsServices domain.GoodsServices `json:"goods_services"`
	PriorUse      domain.PriorUse      `json:"prior_use"`
	Option1       bool                 `json:"option1,omitempty"`

	SearchType   domain.SearchType   `json:"search_type,omitempty"`
	Turnaround   domain.Turnaround   `json:"turnaround,omitempty"`
	DraftingType domain.DraftingType `json:"drafting_type,omitempty"`
	FilingType   domain.FilingType   `json:"filing_type,omitempty"`
	FerKey       domain.FerKey       `json:"fer_key,omitempty"`
}

// Preview is the derived price view of a FormState.
type Preview struct {
	Service         domain.ServiceKind     `json:"service"`
	ApplicationType domain.ApplicationType `json:"application_type"`

	// Generic breakdown, used when no specialised adapter applies.
	Total           decimal.Decimal `json:"total"`
	ProfessionalFee decimal.Decimal `json:"professional_fee"`
	GovernmentFee   decimal.Decimal `json:"government_fee"`

	// Per-service totals; only the active service's is populated.
	PatentabilityTotal decimal.Decimal `json:"patentability_total"`
	DraftingTotal      decimal.Decimal `json:"drafting_total"`
	FilingTotal        decimal.Decimal `json:"filing_total"`
	FerTotal           decimal.Decimal `json:"fer_total"`

	// Variants prices every option of the active service's variant dimension.
	Variants map[string]decimal.Decimal `json:"variants,omitempty"`
}

// NormalizeApplicationType maps applicant checkbox labels onto the
// application type enum.  A startup or MSME label beats individual, which
// beats any other label; no label at all means individual.
func NormalizeApplicationType(labels []string) domain.ApplicationType {
	var individual, others bool
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		switch {
		case l == "":
			continue
		case strings.Contains(l, "startup") || strings.Contains(l, "start-up") ||
			strings.Contains(l, "msme") || strings.Contains(l, "small entity"):
			return domain.ApplicationStartupMSME
		case strings.Contains(l, "individual") || strings.Contains(l, "natural person"):
			individual = true
		default:
			others = true
		}
	}
	if !individual && others {
		return domain.ApplicationOthers
	}
	return domain.ApplicationIndividual
}

// PreviewOption configures a PreviewAggregator.
type PreviewOption func(*PreviewAggregator)

// WithDefaultFerKey sets the bucket used by the FER fallback when the form
// names none.
func WithDefaultFerKey(k domain.FerKey) PreviewOption {
	return func(a *PreviewAggregator) {
		if k != "" {
			a.defaultFerKey = k
		}
	}
}

// PreviewAggregator recomputes prices from form state, memoizing totals in
// its own cache.  It is safe for concurrent use when the cache is.
type PreviewAggregator struct {
	engine        *Engine
	cache         PriceCache
	defaultFerKey domain.FerKey
}

// NewPreviewAggregator creates an aggregator.  A nil cache gets an unbounded
// in-memory one.
func NewPreviewAggregator(engine *Engine, cache PriceCache, opts ...PreviewOption) *PreviewAggregator {
	if engine == nil {
		engine = NewEngine(nil, nil)
	}
	if cache == nil {
		cache = NewMemoryPriceCache(0)
	}
	a := &PreviewAggregator{
		engine:        engine,
		cache:         cache,
		defaultFerKey: domain.FerBaseFee,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reset drops all memoized totals, typically after a rule change.
func (a *PreviewAggregator) Reset() { a.cache.Reset() }

// CacheLen reports the number of memoized totals.
func (a *PreviewAggregator) CacheLen() int { return a.cache.Len() }

// ApplicationType derives the applicant tier of form.
func (a *PreviewAggregator) ApplicationType(form FormState) domain.ApplicationType {
	if form.Service == domain.ServiceFiling && form.FilingApplicant != "" {
		return domain.FilingApplicant(form.FilingApplicant)
	}
	return NormalizeApplicationType(form.ApplicantLabels)
}

// Selection builds the typed selection of form's active service.
func (a *PreviewAggregator) Selection(form FormState) domain.ServiceSelection {
	common := domain.Common{
		ApplicationType: a.ApplicationType(form),
		NiceClasses:     form.NiceClasses,
		PriorUse:        form.PriorUse,
	}
	switch form.Service {
	case domain.ServicePatentabilitySearch:
		return domain.PatentabilitySearch{Common: common, SearchType: form.SearchType, Turnaround: form.Turnaround}
	case domain.ServiceDrafting:
		return domain.Drafting{Common: common, DraftingType: form.DraftingType, Turnaround: form.Turnaround}
	case domain.ServiceFiling:
		return domain.Filing{Common: common, FilingType: form.FilingType, SearchType: string(form.SearchType)}
	case domain.ServiceFER:
		return domain.FER{Common: common, FerKey: a.ferKey(form)}
	}
	return a.generic(common, form)
}

func (a *PreviewAggregator) generic(common domain.Common, form FormState) domain.Trademark {
	return domain.Trademark{
		Common:        common,
		GoodsServices: form.GoodsServices,
		SearchType:    string(form.SearchType),
		Option1:       form.Option1,
	}
}

func (a *PreviewAggregator) ferKey(form FormState) domain.FerKey {
	if form.FerKey != "" {
		return form.FerKey
	}
	return a.defaultFerKey
}

// Preview derives every displayed price of form under rules.
func (a *PreviewAggregator) Preview(rules domain.RuleSet, form FormState) Preview {
	appType := a.ApplicationType(form)
	fp := Fingerprint(rules)

	p := Preview{
		Service:            form.Service,
		ApplicationType:    appType,
		PatentabilityTotal: decimal.Zero,
		DraftingTotal:      decimal.Zero,
		FilingTotal:        decimal.Zero,
		FerTotal:           decimal.Zero,
	}

	unscoped := rules.Unscoped()
	generic := a.generic(domain.Common{
		ApplicationType: appType,
		NiceClasses:     form.NiceClasses,
		PriorUse:        form.PriorUse,
	}, form)
	p.Total = a.price(unscoped, len(rules), fp, "generic", generic)
	p.ProfessionalFee = rules.Amount(appType, domain.KeyProfessionalFee)
	p.GovernmentFee = domain.Breakdown{Total: p.Total, ProfessionalFee: p.ProfessionalFee}.GovernmentFee()

	sel := a.Selection(form)
	switch s := sel.(type) {
	case domain.PatentabilitySearch:
		p.PatentabilityTotal = a.price(rules, len(rules), fp, "service", s)
	case domain.Drafting:
		p.DraftingTotal = a.price(rules, len(rules), fp, "service", s)
	case domain.Filing:
		p.FilingTotal = a.price(rules, len(rules), fp, "service", s)
	case domain.FER:
		p.FerTotal = a.ferTotal(rules, fp, s, p.Total)
	}
	p.Variants = a.engine.Variants(rules, sel)
	return p
}

// ferTotal prefers the generic total.  FER rule sets usually carry no
// unscoped professional fee, so a zero generic total falls back to the
// selected bucket's variant price when that is positive.
func (a *PreviewAggregator) ferTotal(rules domain.RuleSet, fp string, s domain.FER, genericTotal decimal.Decimal) decimal.Decimal {
	if !genericTotal.IsZero() {
		return genericTotal
	}
	variant := a.price(rules, len(rules), fp, "service", s)
	if variant.IsPositive() {
		return variant
	}
	return genericTotal
}

func (a *PreviewAggregator) price(rules domain.RuleSet, count int, fp, scope string, sel domain.ServiceSelection) decimal.Decimal {
	if rules == nil {
		return decimal.Zero
	}
	key := priceKey(count, fp, sel.Kind(), scope, sel.Options())
	if key != "" {
		if v, ok := a.cache.Get(key); ok {
			a.engine.metrics.RecordPreviewCache(true)
			return v
		}
	}
	a.engine.metrics.RecordPreviewCache(false)

	v := a.engine.Price(rules, sel)
	if key != "" {
		a.cache.Set(key, v)
	}
	return v
}

//Personal.AI order the ending
