package pricing

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// RuleDocument is the import/export shape of one service's rule set.
type RuleDocument struct {
	ServiceID string               `json:"service_id"`
	Rules     []domain.PricingRule `json:"rules"`
}

// ruleDocumentSchema mirrors the pricing_rules columns.  Amounts may be JSON
// numbers or numeric strings, as rule stores return NUMERIC columns as text.
const ruleDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["service_id", "rules"],
  "properties": {
    "service_id": {"type": "string", "minLength": 1},
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["application_type", "key", "unit", "amount"],
        "properties": {
          "id": {"type": "string"},
          "service_id": {"type": "string"},
          "application_type": {"enum": ["individual", "startup_msme", "others"]},
          "key": {"enum": ["option1", "nice_classes", "goods_services", "prior_use_yes", "professional_fee"]},
          "unit": {"enum": ["fixed", "per_class"]},
          "amount": {
            "oneOf": [
              {"type": "number", "minimum": 0},
              {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"}
            ]
          },
          "variant": {"type": "string"}
        }
      }
    }
  }
}`

var ruleSchemaLoader = gojsonschema.NewStringLoader(ruleDocumentSchema)

// ParseRuleDocument validates raw against the rule document schema and
// decodes it.  Rules without a service_id inherit the document's.
func ParseRuleDocument(raw []byte) (*RuleDocument, error) {
	result, err := gojsonschema.Validate(ruleSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleSchemaMismatch, "rule document is not valid JSON")
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return nil, errors.New(errors.ErrCodeRuleSchemaMismatch, "rule document failed schema validation").
			WithDetail(strings.Join(msgs, "; "))
	}

	var doc RuleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleSchemaMismatch, "decode rule document")
	}
	for i := range doc.Rules {
		if doc.Rules[i].ServiceID == "" {
			doc.Rules[i].ServiceID = doc.ServiceID
		}
	}
	return &doc, nil
}

//Personal.AI order the ending
