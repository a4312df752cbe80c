package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

type contextKey int

const apiKeyIDContextKey contextKey = iota

// APIKeyAuth guards routes with a static key set.  Keys arrive as
// "Authorization: Bearer <key>" or "X-API-Key: <key>".
type APIKeyAuth struct {
	keys   [][]byte
	logger logging.Logger
}

// NewAPIKeyAuth returns nil when keys is empty; a nil *APIKeyAuth lets every
// request through.
func NewAPIKeyAuth(keys []string, logger logging.Logger) *APIKeyAuth {
	var kb [][]byte
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kb = append(kb, []byte(k))
		}
	}
	if len(kb) == 0 {
		return nil
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &APIKeyAuth{keys: kb, logger: logger}
}

// Handler enforces the key.
func (a *APIKeyAuth) Handler(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractBearerToken(r)
		if key == "" {
			key = strings.TrimSpace(r.Header.Get("X-API-Key"))
		}
		if key == "" || !a.valid([]byte(key)) {
			a.logger.Warn("rejected api key", logging.String("path", r.URL.Path), logging.Bool("present", key != ""))
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), apiKeyIDContextKey, keyID(key))))
	})
}

// valid compares against every key so timing does not reveal which matched.
func (a *APIKeyAuth) valid(key []byte) bool {
	ok := 0
	for _, k := range a.keys {
		ok |= subtle.ConstantTimeCompare(k, key)
	}
	return ok == 1
}

// keyID is a short non-reversible tag of key for logs and audit.
func keyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}

// ContextGetAPIKeyID returns the tag of the key that authenticated the request.
func ContextGetAPIKeyID(ctx context.Context) string {
	id, _ := ctx.Value(apiKeyIDContextKey).(string)
	return id
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="keyprice"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    errors.ErrCodeUnauthorized.String(),
		"message": "missing or invalid api key",
	})
}

//Personal.AI order the ending
