package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

func TestParseRuleDocument(t *testing.T) {
	raw := []byte(`{
		"service_id": "patent-search",
		"rules": [
			{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": "4500.00"},
			{"application_type": "individual", "key": "goods_services", "unit": "fixed", "amount": 500, "service_id": "patent-search"},
			{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": 3000, "variant": "base_fee"}
		]
	}`)

	doc, err := ParseRuleDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, "patent-search", doc.ServiceID)
	require.Len(t, doc.Rules, 3)
	for _, r := range doc.Rules {
		assert.Equal(t, "patent-search", r.ServiceID)
	}
	assertAmount(t, 4500, doc.Rules[0].Amount)
	assert.Equal(t, domain.KeyGoodsServices, doc.Rules[1].Key)
	assert.Equal(t, "base_fee", doc.Rules[2].Variant)
}

func TestParseRuleDocument_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"not json":         `{"service_id":`,
		"missing rules":    `{"service_id":"svc"}`,
		"empty service id": `{"service_id":"","rules":[]}`,
		"unknown key":      `{"service_id":"svc","rules":[{"application_type":"others","key":"stamp","unit":"fixed","amount":1}]}`,
		"negative amount":  `{"service_id":"svc","rules":[{"application_type":"others","key":"option1","unit":"fixed","amount":-1}]}`,
		"non-numeric text": `{"service_id":"svc","rules":[{"application_type":"others","key":"option1","unit":"fixed","amount":"ten"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRuleDocument([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeRuleSchemaMismatch), "got %v", err)
		})
	}
}

//Personal.AI order the ending
