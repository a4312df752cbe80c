package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
)

func corsRequest(h http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/quotes", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	assert.Nil(t, CORS(config.CORSConfig{}))
	assert.Nil(t, CORS(config.CORSConfig{AllowedOrigins: []string{" "}}))
}

func TestCORS_OriginMatching(t *testing.T) {
	mw := CORS(config.CORSConfig{AllowedOrigins: []string{"https://app.keyprice.io", "*.partners.io"}, MaxAge: 600})
	require.NotNil(t, mw)
	h := mw(statusHandler(http.StatusOK))

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.keyprice.io", "https://app.keyprice.io"},
		{"https://APP.keyprice.io", "https://APP.keyprice.io"},
		{"https://shop.partners.io", "https://shop.partners.io"},
		{"https://evil.io", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			w := corsRequest(h, http.MethodPost, tt.origin, false)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := CORS(config.CORSConfig{AllowedOrigins: []string{"https://app.keyprice.io"}, MaxAge: 600})(next)

	w := corsRequest(h, http.MethodOptions, "https://app.keyprice.io", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_WildcardAndCredentials(t *testing.T) {
	open := CORS(config.CORSConfig{AllowedOrigins: []string{"*"}})(statusHandler(http.StatusOK))
	w := corsRequest(open, http.MethodGet, "https://any.io", false)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")

	creds := CORS(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})(statusHandler(http.StatusOK))
	w = corsRequest(creds, http.MethodGet, "https://any.io", false)
	assert.Equal(t, "https://any.io", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

//Personal.AI order the ending
