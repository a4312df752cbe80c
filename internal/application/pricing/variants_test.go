package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
)

func TestComputeAllPatentabilityVariants(t *testing.T) {
	rules := domain.RuleSet{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 4500),
		testutil.VariantRule(domain.ApplicationIndividual, domain.KeyGoodsServices, 1000, string(domain.TurnaroundExpediated)),
		testutil.VariantRule(domain.ApplicationIndividual, domain.KeyGoodsServices, 2500, string(domain.TurnaroundRush)),
	}
	got := ComputeAllPatentabilityVariants(rules, domain.PatentabilitySearch{
		Common:     domain.Common{ApplicationType: domain.ApplicationIndividual},
		SearchType: domain.SearchQuick,
	})

	require.Len(t, got, 3)
	assertAmount(t, 4500, got["standard"])
	assertAmount(t, 5500, got["expediated"])
	assertAmount(t, 7000, got["rush"])
}

func TestComputeAllDraftingVariants(t *testing.T) {
	got := ComputeAllDraftingVariants(searchRules(), domain.Drafting{
		Common:       domain.Common{ApplicationType: domain.ApplicationIndividual},
		DraftingType: domain.DraftingComplete,
	})
	require.Len(t, got, 3)
	for _, t2 := range domain.Turnarounds {
		assertAmount(t, 5000, got[string(t2)])
	}
}

func TestComputeAllFilingVariants(t *testing.T) {
	rules := domain.RuleSet{
		testutil.VariantRule(domain.ApplicationOthers, domain.KeyProfessionalFee, 7000, string(domain.FilingPCT)),
		testutil.Rule(domain.ApplicationOthers, domain.KeyProfessionalFee, domain.UnitFixed, 3000),
	}
	got := ComputeAllFilingVariants(rules, domain.Filing{Common: domain.Common{ApplicationType: domain.ApplicationOthers}})

	require.Len(t, got, 4)
	assertAmount(t, 3000, got["provisional"])
	assertAmount(t, 7000, got["pct"])
}

func TestComputeAllFerVariants(t *testing.T) {
	rules := domain.RuleSet{
		testutil.VariantRule(domain.ApplicationIndividual, domain.KeyProfessionalFee, 3000, string(domain.FerBaseFee)),
		testutil.VariantRule(domain.ApplicationIndividual, domain.KeyProfessionalFee, 4500, string(domain.FerDueWithin2Weeks)),
	}
	got := ComputeAllFerVariants(rules, domain.FER{Common: domain.Common{ApplicationType: domain.ApplicationIndividual}})

	require.Len(t, got, 4)
	assertAmount(t, 3000, got["base_fee"])
	assertAmount(t, 0, got["due_within_1_month"])
	assertAmount(t, 4500, got["due_within_2_weeks"])
}

func TestComputeAllVariants_NilRules(t *testing.T) {
	got := ComputeAllFerVariants(nil, domain.FER{})
	require.Len(t, got, 4)
	for _, v := range got {
		assertAmount(t, 0, v)
	}
}

func TestEngine_VariantsForTrademarkIsNil(t *testing.T) {
	assert.Nil(t, NewEngine(nil, nil).Variants(searchRules(), domain.Trademark{}))
}

//Personal.AI order the ending
