package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	QuoteHandler  *handlers.QuoteHandler
	RuleHandler   *handlers.RuleHandler
	HealthHandler *handlers.HealthHandler

	// APIKeyAuth guards the rule-writing routes; nil leaves them open.
	APIKeyAuth *middleware.APIKeyAuth

	// CORS and RateLimiter are optional; see middleware.CORS and
	// middleware.NewRateLimiter.
	CORS        func(http.Handler) http.Handler
	RateLimiter *middleware.RateLimiter

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics
	MetricsPath      string
}

// NewRouter builds the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerQuoteRoutes(api, cfg.QuoteHandler)
		registerRuleRoutes(api, cfg.RuleHandler, cfg.APIKeyAuth)
	})

	return r
}

func registerQuoteRoutes(r chi.Router, h *handlers.QuoteHandler) {
	if h == nil {
		return
	}
	r.Post("/quotes", h.Preview)
	r.Post("/quotes/evaluate", h.Evaluate)
	r.Post("/services/{serviceID}/quotes", h.Quote)
	r.Get("/services/{serviceID}/quotes/{quoteID}/snapshot", h.Snapshot)
}

func registerRuleRoutes(r chi.Router, h *handlers.RuleHandler, auth *middleware.APIKeyAuth) {
	if h == nil {
		return
	}
	r.Get("/services", h.Services)
	r.Get("/services/{serviceID}/rules", h.List)
	r.Post("/rules/validate", h.Validate)

	r.Group(func(w chi.Router) {
		w.Use(auth.Handler)
		w.Put("/services/{serviceID}/rules", h.Replace)
		w.Post("/rules/import", h.Import)
	})
}

//Personal.AI order the ending
