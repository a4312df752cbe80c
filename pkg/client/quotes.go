package client

import (
	"context"
	"fmt"
)

// QuotesClient prices selections.
type QuotesClient struct {
	client *Client
}

type PreviewRequest struct {
	ServiceID string `json:"service_id"`
	// Service, when set, overrides Form.Service.
	Service string `json:"service,omitempty"`
	Form    Form   `json:"form"`
}

type QuoteRequest struct {
	Selection       Selection `json:"selection"`
	IncludeVariants bool      `json:"include_variants,omitempty"`
}

type EvaluateRequest struct {
	Rules           []Rule    `json:"rules"`
	Selection       Selection `json:"selection"`
	IncludeVariants bool      `json:"include_variants,omitempty"`
}

// Preview derives the live price view of a form against a stored rule set.
func (q *QuotesClient) Preview(ctx context.Context, req *PreviewRequest) (*Preview, error) {
	if req == nil || req.ServiceID == "" {
		return nil, fmt.Errorf("service id is required")
	}
	var out Preview
	if err := q.client.post(ctx, apiPrefix+"/quotes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Evaluate prices a selection against inline rules without touching storage.
func (q *QuotesClient) Evaluate(ctx context.Context, req *EvaluateRequest) (*Quote, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	var out Quote
	if err := q.client.post(ctx, apiPrefix+"/quotes/evaluate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quote prices a selection against serviceID's stored rules.  The server
// snapshots the result when snapshots are enabled.
func (q *QuotesClient) Quote(ctx context.Context, serviceID string, req *QuoteRequest) (*Quote, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("service id is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	var out Quote
	if err := q.client.post(ctx, servicePath(serviceID, "quotes"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (q *QuotesClient) Snapshot(ctx context.Context, serviceID, quoteID string) (*Snapshot, error) {
	if serviceID == "" || quoteID == "" {
		return nil, fmt.Errorf("service id and quote id are required")
	}
	var out Snapshot
	if err := q.client.get(ctx, servicePath(serviceID, "quotes", quoteID, "snapshot"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
