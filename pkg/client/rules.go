package client

import (
	"context"
	"fmt"
)

// RulesClient manages stored rule sets.
type RulesClient struct {
	client *Client
}

type rulesBody struct {
	Rules []Rule `json:"rules"`
}

func (r *RulesClient) List(ctx context.Context, serviceID string) (*RuleSet, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("service id is required")
	}
	var out RuleSet
	if err := r.client.get(ctx, servicePath(serviceID, "rules"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replace swaps serviceID's whole rule set.  Requires an API key.
func (r *RulesClient) Replace(ctx context.Context, serviceID string, rules []Rule) (*ReplaceResult, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("service id is required")
	}
	var out ReplaceResult
	if err := r.client.put(ctx, servicePath(serviceID, "rules"), rulesBody{Rules: rules}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Import uploads a raw rule document ({"service_id": ..., "rules": [...]}).
// The server validates it against the rule document schema.
func (r *RulesClient) Import(ctx context.Context, document []byte) (*ReplaceResult, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	var out ReplaceResult
	if err := r.client.post(ctx, apiPrefix+"/rules/import", document, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RulesClient) Validate(ctx context.Context, rules []Rule) (*ValidateResult, error) {
	var out ValidateResult
	if err := r.client.post(ctx, apiPrefix+"/rules/validate", rulesBody{Rules: rules}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Services lists the service ids that have stored rules.
func (r *RulesClient) Services(ctx context.Context) ([]string, error) {
	var out struct {
		Services []string `json:"services"`
	}
	if err := r.client.get(ctx, apiPrefix+"/services", &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

//Personal.AI order the ending
