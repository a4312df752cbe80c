package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/prometheus"
)

// Metrics records http_requests_total and http_request_duration_seconds.  The
// path label is the chi route pattern so ids do not explode cardinality.
func Metrics(m *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			active := m.HTTPActiveRequests.WithLabelValues(r.Method)
			active.Inc()
			defer active.Dec()

			start := time.Now()
			ww := recorder(w, r)
			next.ServeHTTP(ww, r)

			prometheus.RecordHTTPRequest(m, r.Method, routePattern(r), statusOf(ww),
				time.Since(start), r.ContentLength, int64(ww.BytesWritten()))
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

//Personal.AI order the ending
