package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

type memorySnapshots struct {
	byKey map[string]*apppricing.QuoteSnapshot
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, snap *apppricing.QuoteSnapshot) (string, error) {
	key := snap.Quote.ServiceID + "/" + snap.Quote.ID
	m.byKey[key] = snap
	return key, nil
}

func (m *memorySnapshots) LoadSnapshot(_ context.Context, serviceID, quoteID string) (*apppricing.QuoteSnapshot, error) {
	if s, ok := m.byKey[serviceID+"/"+quoteID]; ok {
		return s, nil
	}
	return nil, errors.NotFound("snapshot not found")
}

func trademarkRules() []domain.PricingRule {
	return []domain.PricingRule{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 5000),
		testutil.Rule(domain.ApplicationIndividual, domain.KeyNiceClasses, domain.UnitPerClass, 1000),
	}
}

func newQuoteRouter(repo domain.RuleRepository, snaps apppricing.SnapshotStore) http.Handler {
	svc := apppricing.NewQuoteService(repo, nil, nil, snaps, nil)
	h := NewQuoteHandler(svc, nil)

	r := chi.NewRouter()
	r.Post("/quotes", h.Preview)
	r.Post("/quotes/evaluate", h.Evaluate)
	r.Post("/services/{serviceID}/quotes", h.Quote)
	r.Get("/services/{serviceID}/quotes/{quoteID}/snapshot", h.Snapshot)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type quoteBody struct {
	ID          string                     `json:"id"`
	Total       decimal.Decimal            `json:"total"`
	Breakdown   domain.Breakdown           `json:"breakdown"`
	Variants    map[string]decimal.Decimal `json:"variants"`
	SnapshotKey string                     `json:"snapshot_key"`
}

func TestQuoteHandler_Evaluate(t *testing.T) {
	h := newQuoteRouter(new(testutil.MockRuleRepository), nil)

	w := serve(h, http.MethodPost, "/quotes/evaluate", `{
		"rules": [
			{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": "5000"},
			{"application_type": "individual", "key": "nice_classes", "unit": "per_class", "amount": 1000}
		],
		"selection": {"kind": "trademark", "application_type": "individual", "nice_classes": [1, 2]}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var q quoteBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.True(t, decimal.NewFromInt(7000).Equal(q.Total), q.Total.String())
	assert.True(t, decimal.NewFromInt(2000).Equal(q.Breakdown.NiceClasses))
}

func TestQuoteHandler_EvaluateRejectsBadInput(t *testing.T) {
	h := newQuoteRouter(new(testutil.MockRuleRepository), nil)

	w := serve(h, http.MethodPost, "/quotes/evaluate", `{"rules": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeSerialization.String(), resp.Code)

	w = serve(h, http.MethodPost, "/quotes/evaluate", `{"selection": {"kind": "drafting", "drafting_type": "poem"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeSelectionInvalid.String(), resp.Code)
	assert.Equal(t, "poem", resp.Detail)

	w = serve(h, http.MethodPost, "/quotes/evaluate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_Preview(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListByService", mock.Anything, "tm").Return(trademarkRules(), nil)
	h := newQuoteRouter(repo, nil)

	w := serve(h, http.MethodPost, "/quotes", `{
		"service_id": "tm",
		"service": "trademark",
		"form": {"applicant_labels": ["Individual"], "nice_classes": [3]}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p apppricing.Preview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, domain.ServiceTrademark, p.Service)
	assert.True(t, decimal.NewFromInt(6000).Equal(p.Total), p.Total.String())
	assert.True(t, decimal.NewFromInt(5000).Equal(p.ProfessionalFee))
}

func TestQuoteHandler_PreviewRequiresServiceID(t *testing.T) {
	h := newQuoteRouter(new(testutil.MockRuleRepository), nil)

	w := serve(h, http.MethodPost, "/quotes", `{"form": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_RepositoryFailureIsMasked(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListByService", mock.Anything, "tm").
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "pq: connection refused"))
	h := newQuoteRouter(repo, nil)

	w := serve(h, http.MethodPost, "/quotes", `{"service_id": "tm", "form": {}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestQuoteHandler_QuoteAndSnapshot(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListByService", mock.Anything, "tm").Return(trademarkRules(), nil)
	snaps := &memorySnapshots{byKey: map[string]*apppricing.QuoteSnapshot{}}
	h := newQuoteRouter(repo, snaps)

	w := serve(h, http.MethodPost, "/services/tm/quotes", `{"selection": {"kind": "trademark", "nice_classes": [1]}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var q quoteBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.True(t, decimal.NewFromInt(6000).Equal(q.Total))
	assert.Equal(t, "tm/"+q.ID, q.SnapshotKey)

	w = serve(h, http.MethodGet, "/services/tm/quotes/"+q.ID+"/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var snap apppricing.QuoteSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Rules, 2)
	assert.Equal(t, "trademark", snap.Selection.Kind)

	w = serve(h, http.MethodGet, "/services/tm/quotes/unknown/snapshot", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandler_SnapshotsDisabled(t *testing.T) {
	h := newQuoteRouter(new(testutil.MockRuleRepository), nil)

	w := serve(h, http.MethodGet, "/services/tm/quotes/q-1/snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

//Personal.AI order the ending
