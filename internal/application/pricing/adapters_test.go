package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
)

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got.String())
}

// recordingMetrics captures Metrics calls.
type recordingMetrics struct {
	evaluations int
	failures    int
	hits        int
	misses      int
	duplicates  map[string]int
	quotes      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{duplicates: map[string]int{}}
}

func (m *recordingMetrics) RecordEvaluation(_ string, failed bool) {
	m.evaluations++
	if failed {
		m.failures++
	}
}

func (m *recordingMetrics) RecordPreviewCache(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) RecordDuplicateRules(serviceID string, n int) { m.duplicates[serviceID] += n }
func (m *recordingMetrics) RecordQuoteDuration(string, float64)         { m.quotes++ }

func searchRules() domain.RuleSet {
	return domain.RuleSet{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 4500),
		testutil.Rule(domain.ApplicationIndividual, domain.KeyGoodsServices, domain.UnitFixed, 500),
	}
}

func TestComputePatentabilityPrice_QuickStandard(t *testing.T) {
	sel := domain.PatentabilitySearch{
		Common:     domain.Common{ApplicationType: domain.ApplicationIndividual, NiceClasses: []int{}},
		SearchType: domain.SearchQuick,
		Turnaround: domain.TurnaroundStandard,
	}
	assertAmount(t, 5000, ComputePatentabilityPrice(searchRules(), sel))
}

func TestAdapters_NilRulesPriceAtZero(t *testing.T) {
	common := domain.Common{ApplicationType: domain.ApplicationIndividual}

	assertAmount(t, 0, ComputePatentabilityPrice(nil, domain.PatentabilitySearch{Common: common, Turnaround: domain.TurnaroundRush}))
	assertAmount(t, 0, ComputeDraftingPrice(nil, domain.Drafting{Common: common, DraftingType: domain.DraftingPSCS}))
	assertAmount(t, 0, ComputeFilingPrice(nil, domain.Filing{Common: common, FilingType: domain.FilingPCT}))
	assertAmount(t, 0, ComputeFerPrice(nil, domain.FER{Common: common, FerKey: domain.FerBaseFee}))
	assertAmount(t, 0, ComputeTrademarkPrice(nil, domain.Trademark{Common: common}))
}

func TestComputeTrademarkPrice(t *testing.T) {
	rules := append(searchRules(),
		testutil.Rule(domain.ApplicationIndividual, domain.KeyNiceClasses, domain.UnitPerClass, 100))
	sel := domain.Trademark{
		Common:        domain.Common{ApplicationType: domain.ApplicationIndividual, NiceClasses: []int{9, 35}},
		GoodsServices: domain.GoodsServices{CustomText: "software"},
	}
	assertAmount(t, 5200, ComputeTrademarkPrice(rules, sel))
}

func TestEngine_RecoversFromEvaluationPanic(t *testing.T) {
	orig := evaluate
	evaluate = func([]domain.PricingRule, domain.SelectedOptions) domain.Breakdown { panic("boom") }
	t.Cleanup(func() { evaluate = orig })

	logger := testutil.NewMockLogger()
	metrics := newRecordingMetrics()
	e := NewEngine(logger, metrics)

	var got decimal.Decimal
	require.NotPanics(t, func() {
		got = e.DraftingPrice(searchRules(), domain.Drafting{Common: domain.Common{ApplicationType: domain.ApplicationIndividual}})
	})
	assertAmount(t, 0, got)
	assert.Equal(t, 1, metrics.failures)
	assert.True(t, logger.HasMessage("error", "pricing evaluation failed; pricing at zero"))
}

func TestEngine_FilingUsesCollapsedApplicant(t *testing.T) {
	rules := domain.RuleSet{
		testutil.Rule(domain.ApplicationStartupMSME, domain.KeyProfessionalFee, domain.UnitFixed, 1000),
		testutil.Rule(domain.ApplicationOthers, domain.KeyProfessionalFee, domain.UnitFixed, 8000),
	}
	e := NewEngine(nil, nil)
	got := e.FilingPrice(rules, domain.Filing{
		Common:     domain.Common{ApplicationType: domain.ApplicationStartupMSME},
		FilingType: domain.FilingProvisional,
	})
	assertAmount(t, 8000, got)
}

func TestEngine_VariantScopedRules(t *testing.T) {
	rules := domain.RuleSet{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 3000),
		testutil.VariantRule(domain.ApplicationIndividual, domain.KeyProfessionalFee, 4000, string(domain.FerDueWithin1Week)),
	}
	e := NewEngine(nil, nil)
	common := domain.Common{ApplicationType: domain.ApplicationIndividual}

	assertAmount(t, 3000, e.FerPrice(rules, domain.FER{Common: common, FerKey: domain.FerBaseFee}))
	assertAmount(t, 4000, e.FerPrice(rules, domain.FER{Common: common, FerKey: domain.FerDueWithin1Week}))
}

func TestEngine_Breakdown(t *testing.T) {
	rules := domain.RuleSet{
		testutil.Rule(domain.ApplicationOthers, domain.KeyProfessionalFee, domain.UnitFixed, 6000),
		testutil.Rule(domain.ApplicationOthers, domain.KeyNiceClasses, domain.UnitPerClass, 250),
		testutil.Rule(domain.ApplicationOthers, domain.KeyPriorUseYes, domain.UnitFixed, 75),
	}
	metrics := newRecordingMetrics()
	e := NewEngine(nil, metrics)

	b := e.Breakdown(rules, domain.Trademark{Common: domain.Common{
		ApplicationType: domain.ApplicationOthers,
		NiceClasses:     []int{9, 35},
		PriorUse:        domain.PriorUse{Used: true},
	}})

	assertAmount(t, 500, b.NiceClasses)
	assertAmount(t, 75, b.PriorUse)
	assertAmount(t, 6575, b.Total)
	assertAmount(t, 575, b.GovernmentFee())
	assert.Equal(t, 1, metrics.evaluations)
}

//Personal.AI order the ending
