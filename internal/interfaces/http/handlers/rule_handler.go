package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// RuleHandler serves rule set management.
type RuleHandler struct {
	svc    apppricing.RuleService
	logger logging.Logger
}

func NewRuleHandler(svc apppricing.RuleService, logger logging.Logger) *RuleHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RuleHandler{svc: svc, logger: logger}
}

// RulesBody carries a rule list for replace and validate.
type RulesBody struct {
	Rules []domain.PricingRule `json:"rules"`
}

type ValidateResponse struct {
	RuleCount int                        `json:"rule_count"`
	Warnings  []domain.ValidationWarning `json:"warnings"`
	Blocking  bool                       `json:"blocking"`
}

type ServicesResponse struct {
	Services []string `json:"services"`
}

// List handles GET /api/v1/services/{serviceID}/rules.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.List(r.Context(), chi.URLParam(r, "serviceID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Replace handles PUT /api/v1/services/{serviceID}/rules.
func (h *RuleHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var body RulesBody
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Replace(r.Context(), chi.URLParam(r, "serviceID"), body.Rules)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Import handles POST /api/v1/rules/import with a schema-checked rule document.
func (h *RuleHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Import(r.Context(), raw)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Validate handles POST /api/v1/rules/validate.  Nothing is stored.
func (h *RuleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var body RulesBody
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	warnings := h.svc.Validate(body.Rules)
	if warnings == nil {
		warnings = []domain.ValidationWarning{}
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		RuleCount: len(body.Rules),
		Warnings:  warnings,
		Blocking:  domain.HasBlocking(warnings),
	})
}

// Services handles GET /api/v1/services.
func (h *RuleHandler) Services(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Services(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ServicesResponse{Services: ids})
}

//Personal.AI order the ending
