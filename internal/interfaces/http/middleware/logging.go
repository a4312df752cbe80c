// Package middleware holds the HTTP middleware of the pricing API.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

type LoggingConfig struct {
	// SkipPaths are never logged.
	SkipPaths []string
	// SlowThreshold promotes successful requests above it to Warn. Zero disables it.
	SlowThreshold time.Duration
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 2 * time.Second,
	}
}

// recorder wraps w unless an outer middleware already did.
func recorder(w http.ResponseWriter, r *http.Request) chimw.WrapResponseWriter {
	if ww, ok := w.(chimw.WrapResponseWriter); ok {
		return ww
	}
	return chimw.NewWrapResponseWriter(w, r.ProtoMajor)
}

// statusOf reports 200 for handlers that never wrote a header.
func statusOf(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// RequestLogging emits one line per request: Error for 5xx, Warn for 4xx and
// slow requests, Info otherwise.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ww := recorder(w, r)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			status := statusOf(ww)

			fields := make([]logging.Field, 0, 8)
			fields = append(fields,
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", status),
				logging.Duration("duration", elapsed),
				logging.Int64("bytes", int64(ww.BytesWritten())),
				logging.String("remote_addr", r.RemoteAddr),
			)
			if q := r.URL.RawQuery; q != "" {
				fields = append(fields, logging.String("query", q))
			}
			if id := chimw.GetReqID(r.Context()); id != "" {
				fields = append(fields, logging.String("request_id", id))
			}

			log, msg := logger.Info, "http request"
			switch {
			case status >= http.StatusInternalServerError:
				log, msg = logger.Error, "http request failed"
			case status >= http.StatusBadRequest:
				log, msg = logger.Warn, "http request rejected"
			case config.SlowThreshold > 0 && elapsed >= config.SlowThreshold:
				log, msg = logger.Warn, "slow http request"
			}
			log(msg, fields...)
		})
	}
}

//Personal.AI order the ending
