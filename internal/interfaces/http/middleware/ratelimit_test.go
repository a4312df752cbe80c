package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
)

func limitedRequest(h http.Handler, path, remote, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remote
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(config.RateLimitConfig{}, nil))
	assert.Nil(t, NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, nil))

	var l *RateLimiter
	w := limitedRequest(l.Handler(statusHandler(http.StatusOK)), "/api/v1/quotes", "10.0.0.1:1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	log := testutil.NewMockLogger()
	l := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}, log)
	require.NotNil(t, l)
	h := l.Handler(statusHandler(http.StatusOK))

	for i := 0; i < 2; i++ {
		w := limitedRequest(h, "/api/v1/quotes", "10.0.0.1:1234", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := limitedRequest(h, "/api/v1/quotes", "10.0.0.1:5678", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COMMON_007", body["code"])
	assert.True(t, log.HasMessage("warn", "rate limit exceeded"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, limitedRequest(h, "/api/v1/quotes", "10.0.0.2:1", "").Code)
	// probes are never limited
	assert.Equal(t, http.StatusOK, limitedRequest(h, "/healthz", "10.0.0.1:1", "").Code)
}

func TestRateLimiter_KeysByAPIKey(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}, nil)
	h := l.Handler(statusHandler(http.StatusOK))

	assert.Equal(t, http.StatusOK, limitedRequest(h, "/api/v1/rules/import", "10.0.0.1:1", "alpha").Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(h, "/api/v1/rules/import", "10.0.0.9:1", "alpha").Code)
	assert.Equal(t, http.StatusOK, limitedRequest(h, "/api/v1/rules/import", "10.0.0.1:1", "beta").Code)
	assert.Equal(t, 2, l.Clients())
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 10}, nil)
	now := time.Now()
	l.now = func() time.Time { return now }

	h := l.Handler(statusHandler(http.StatusOK))
	limitedRequest(h, "/api/v1/quotes", "10.0.0.1:1", "")
	limitedRequest(h, "/api/v1/quotes", "10.0.0.2:1", "")
	require.Equal(t, 2, l.Clients())

	assert.Equal(t, 0, l.Sweep())
	now = now.Add(defaultLimiterIdleTTL + time.Second)
	assert.Equal(t, 2, l.Sweep())
	assert.Equal(t, 0, l.Clients())
}

func TestClientKey_NeverStoresRawKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer super-secret")
	k := clientKey(req)
	assert.NotContains(t, k, "super-secret")
	assert.Contains(t, k, "key:")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ip:192.0.2.1", clientKey(req))
}

//Personal.AI order the ending
