package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

func newRuleRouter(repo domain.RuleRepository) http.Handler {
	h := NewRuleHandler(apppricing.NewRuleService(apppricing.RuleServiceDeps{Repo: repo}), nil)

	r := chi.NewRouter()
	r.Get("/services", h.Services)
	r.Get("/services/{serviceID}/rules", h.List)
	r.Put("/services/{serviceID}/rules", h.Replace)
	r.Post("/rules/import", h.Import)
	r.Post("/rules/validate", h.Validate)
	return r
}

func TestRuleHandler_List(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	rules := append(trademarkRules(), testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 5500))
	repo.On("ListByService", mock.Anything, "tm").Return(rules, nil)
	repo.On("ListByService", mock.Anything, "empty").Return(nil, nil)
	h := newRuleRouter(repo)

	w := serve(h, http.MethodGet, "/services/tm/rules", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view apppricing.RuleSetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Rules, 3)
	require.NotEmpty(t, view.Warnings)
	assert.Equal(t, domain.WarnDuplicateKey, view.Warnings[0].Kind)

	w = serve(h, http.MethodGet, "/services/empty/rules", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeServiceUnknown.String(), resp.Code)
}

func TestRuleHandler_Replace(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ReplaceForService", mock.Anything, "tm", mock.MatchedBy(func(rs []domain.PricingRule) bool {
		return len(rs) == 1 && rs[0].ServiceID == "tm"
	})).Return(nil)
	h := newRuleRouter(repo)

	w := serve(h, http.MethodPut, "/services/tm/rules",
		`{"rules": [{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": "4999.50"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res apppricing.ReplaceResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "tm", res.ServiceID)
	assert.Equal(t, 1, res.RuleCount)
	repo.AssertExpectations(t)
}

func TestRuleHandler_ReplaceRejectsNegativeAmount(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	h := newRuleRouter(repo)

	w := serve(h, http.MethodPut, "/services/tm/rules",
		`{"rules": [{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": -1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeRuleInvalid.String(), resp.Code)
	repo.AssertNotCalled(t, "ReplaceForService", mock.Anything, mock.Anything, mock.Anything)
}

func TestRuleHandler_Import(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ReplaceForService", mock.Anything, "fer", mock.Anything).Return(nil)
	h := newRuleRouter(repo)

	w := serve(h, http.MethodPost, "/rules/import", `{
		"service_id": "fer",
		"rules": [{"application_type": "others", "key": "professional_fee", "unit": "fixed", "amount": 12000, "variant": "basic"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(h, http.MethodPost, "/rules/import", `{"service_id": "fer", "rules": [{"key": "bogus"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeRuleSchemaMismatch.String(), resp.Code)

	w = serve(h, http.MethodPost, "/rules/import", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleHandler_Validate(t *testing.T) {
	h := newRuleRouter(new(testutil.MockRuleRepository))

	w := serve(h, http.MethodPost, "/rules/validate", `{"rules": [
		{"service_id": "s", "application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": 1},
		{"service_id": "s", "application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": 2}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.RuleCount)
	assert.False(t, resp.Blocking)
	assert.Equal(t, 1, domain.CountKind(resp.Warnings, domain.WarnDuplicateKey))
}

func TestRuleHandler_Services(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListServices", mock.Anything).Return([]string{"fer", "tm"}, nil).Once()
	repo.On("ListServices", mock.Anything).Return(nil, nil).Once()
	h := newRuleRouter(repo)

	w := serve(h, http.MethodGet, "/services", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"services": ["fer", "tm"]}`, w.Body.String())

	w = serve(h, http.MethodGet, "/services", "")
	assert.JSONEq(t, `{"services": []}`, w.Body.String())
}

//Personal.AI order the ending
