package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/config"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
)

func newTestRouter(t *testing.T, repo *testutil.MockRuleRepository, keys ...string) http.Handler {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "keyprice"}, nil)
	require.NoError(t, err)

	log := testutil.NewMockLogger()
	return NewRouter(RouterConfig{
		QuoteHandler:     handlers.NewQuoteHandler(apppricing.NewQuoteService(repo, nil, nil, nil, log), log),
		RuleHandler:      handlers.NewRuleHandler(apppricing.NewRuleService(apppricing.RuleServiceDeps{Repo: repo, Logger: log}), log),
		HealthHandler:    handlers.NewHealthHandler("test"),
		APIKeyAuth:       middleware.NewAPIKeyAuth(keys, log),
		Logger:           log,
		MetricsCollector: collector,
		Metrics:          prometheus.NewAppMetrics(collector),
	})
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Routes(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListServices", mock.Anything).Return([]string{"tm"}, nil)
	repo.On("ListByService", mock.Anything, "tm").Return([]domain.PricingRule{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 100),
	}, nil)
	h := newTestRouter(t, repo)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/api/v1/services", "", http.StatusOK},
		{http.MethodGet, "/api/v1/services/tm/rules", "", http.StatusOK},
		{http.MethodPost, "/api/v1/quotes", `{"service_id": "tm", "form": {}}`, http.StatusOK},
		{http.MethodPost, "/api/v1/quotes/evaluate", `{"selection": {"kind": "trademark"}}`, http.StatusOK},
		{http.MethodPost, "/api/v1/services/tm/quotes", `{"selection": {"kind": "trademark"}}`, http.StatusCreated},
		{http.MethodPost, "/api/v1/rules/validate", `{"rules": []}`, http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/services", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewRouter_RequestIDAndMetrics(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListByService", mock.Anything, "tm").Return([]domain.PricingRule{
		testutil.Rule(domain.ApplicationIndividual, domain.KeyProfessionalFee, domain.UnitFixed, 100),
	}, nil)
	h := newTestRouter(t, repo)

	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/services/tm/rules", "").Code)

	w := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `path="/api/v1/services/{serviceID}/rules"`)
}

func TestNewRouter_WriteRoutesRequireKey(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ReplaceForService", mock.Anything, "tm", mock.Anything).Return(nil)
	h := newTestRouter(t, repo, "secret")

	body := `{"rules": [{"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": 1}]}`
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPut, "/api/v1/services/tm/rules", body).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/rules/import", body).Code)

	w := do(h, http.MethodPut, "/api/v1/services/tm/rules", body, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// reads stay open
	repo.On("ListServices", mock.Anything).Return([]string{}, nil)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/services", "").Code)
}

func TestNewRouter_CORSAndRateLimit(t *testing.T) {
	repo := new(testutil.MockRuleRepository)
	repo.On("ListServices", mock.Anything).Return([]string{"tm"}, nil)
	log := testutil.NewMockLogger()
	h := NewRouter(RouterConfig{
		RuleHandler: handlers.NewRuleHandler(apppricing.NewRuleService(apppricing.RuleServiceDeps{Repo: repo, Logger: log}), log),
		CORS:        middleware.CORS(config.CORSConfig{AllowedOrigins: []string{"https://app.keyprice.io"}}),
		RateLimiter: middleware.NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}, log),
	})

	// preflight is answered before routing
	w := do(h, http.MethodOptions, "/api/v1/services/tm/rules", "",
		"Origin", "https://app.keyprice.io", "Access-Control-Request-Method", http.MethodPut)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(h, http.MethodGet, "/api/v1/services", "", "Origin", "https://app.keyprice.io")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.keyprice.io", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/api/v1/services", "").Code)
}

func TestNewRouter_NilHandlers(t *testing.T) {
	h := NewRouter(RouterConfig{})
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/api/v1/quotes", "{}").Code)
}

//Personal.AI order the ending
