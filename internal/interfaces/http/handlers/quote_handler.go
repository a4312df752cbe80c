package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// QuoteHandler serves the pricing endpoints.
type QuoteHandler struct {
	svc    apppricing.QuoteService
	logger logging.Logger
}

func NewQuoteHandler(svc apppricing.QuoteService, logger logging.Logger) *QuoteHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &QuoteHandler{svc: svc, logger: logger}
}

// PreviewBody is the body of POST /api/v1/quotes.  Service, when set,
// overrides form.service.
type PreviewBody struct {
	ServiceID string               `json:"service_id"`
	Service   string               `json:"service,omitempty"`
	Form      apppricing.FormState `json:"form"`
}

// Preview handles POST /api/v1/quotes.
func (h *QuoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var body PreviewBody
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if body.Service != "" {
		kind, err := domain.ParseServiceKind(body.Service)
		if err != nil {
			writeAppError(w, h.logger, err)
			return
		}
		body.Form.Service = kind
	}

	p, err := h.svc.Preview(r.Context(), &apppricing.PreviewRequest{ServiceID: body.ServiceID, Form: body.Form})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Evaluate handles POST /api/v1/quotes/evaluate; rules travel in the body.
func (h *QuoteHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req apppricing.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	q, err := h.svc.Evaluate(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Quote handles POST /api/v1/services/{serviceID}/quotes.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req apppricing.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	req.ServiceID = chi.URLParam(r, "serviceID")

	q, err := h.svc.Quote(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// Snapshot handles GET /api/v1/services/{serviceID}/quotes/{quoteID}/snapshot.
func (h *QuoteHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context(), chi.URLParam(r, "serviceID"), chi.URLParam(r, "quoteID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

//Personal.AI order the ending
