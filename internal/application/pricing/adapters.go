// Package pricing is the application layer around the pricing rule engine:
// per-service adapters, the variant helpers, the preview aggregator and the
// quote and rule services used by the HTTP and CLI surfaces.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// Metrics receives pricing observations.  The Prometheus implementation
// lives in the monitoring package; NopMetrics discards everything.
type Metrics interface {
	RecordEvaluation(kind string, failed bool)
	RecordPreviewCache(hit bool)
	RecordDuplicateRules(serviceID string, count int)
	RecordQuoteDuration(kind string, seconds float64)
}

// NopMetrics implements Metrics with no-ops.
type NopMetrics struct{}

func (NopMetrics) RecordEvaluation(string, bool)       {}
func (NopMetrics) RecordPreviewCache(bool)             {}
func (NopMetrics) RecordDuplicateRules(string, int)    {}
func (NopMetrics) RecordQuoteDuration(string, float64) {}

// evaluate is swapped in tests to exercise the recovery path.
var evaluate = domain.Evaluate

// Engine wraps the evaluation core with the adapter contract: a nil rule
// list or a failed evaluation prices at zero and never reaches the caller
// as an error.
type Engine struct {
	logger  logging.Logger
	metrics Metrics
}

// NewEngine creates an Engine.  Nil collaborators are replaced by no-ops.
func NewEngine(logger logging.Logger, metrics Metrics) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Engine{logger: logger.Named("pricing"), metrics: metrics}
}

func zeroBreakdown() domain.Breakdown {
	return domain.Breakdown{
		Option1:         decimal.Zero,
		NiceClasses:     decimal.Zero,
		GoodsServices:   decimal.Zero,
		PriorUse:        decimal.Zero,
		ProfessionalFee: decimal.Zero,
		Total:           decimal.Zero,
	}
}

// Breakdown evaluates sel against the rules that apply to it.
func (e *Engine) Breakdown(rules domain.RuleSet, sel domain.ServiceSelection) (b domain.Breakdown) {
	if rules == nil || sel == nil {
		e.logger.Debug("no pricing rules supplied; pricing at zero")
		return zeroBreakdown()
	}
	kind := string(sel.Kind())

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pricing evaluation failed; pricing at zero",
				logging.String("kind", kind),
				logging.Int("rule_count", len(rules)),
				logging.String("panic", fmt.Sprint(r)))
			e.metrics.RecordEvaluation(kind, true)
			b = zeroBreakdown()
		}
	}()

	opts := sel.Options()
	b = evaluate(rules.ForSelection(opts), opts)
	e.metrics.RecordEvaluation(kind, false)
	return b
}

// Price is Breakdown(...).Total.
func (e *Engine) Price(rules domain.RuleSet, sel domain.ServiceSelection) decimal.Decimal {
	return e.Breakdown(rules, sel).Total
}

func (e *Engine) PatentabilityPrice(rules domain.RuleSet, s domain.PatentabilitySearch) decimal.Decimal {
	return e.Price(rules, s)
}

func (e *Engine) DraftingPrice(rules domain.RuleSet, s domain.Drafting) decimal.Decimal {
	return e.Price(rules, s)
}

func (e *Engine) FilingPrice(rules domain.RuleSet, s domain.Filing) decimal.Decimal {
	return e.Price(rules, s)
}

func (e *Engine) FerPrice(rules domain.RuleSet, s domain.FER) decimal.Decimal {
	return e.Price(rules, s)
}

func (e *Engine) TrademarkPrice(rules domain.RuleSet, s domain.Trademark) decimal.Decimal {
	return e.Price(rules, s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Package-level adapters, logging through the process default logger
// ─────────────────────────────────────────────────────────────────────────────

func defaultEngine() *Engine { return NewEngine(logging.Default(), nil) }

// ComputePatentabilityPrice prices a patentability search.
func ComputePatentabilityPrice(rules domain.RuleSet, s domain.PatentabilitySearch) decimal.Decimal {
	return defaultEngine().PatentabilityPrice(rules, s)
}

// ComputeDraftingPrice prices a drafting order.
func ComputeDraftingPrice(rules domain.RuleSet, s domain.Drafting) decimal.Decimal {
	return defaultEngine().DraftingPrice(rules, s)
}

// ComputeFilingPrice prices a patent application filing.
func ComputeFilingPrice(rules domain.RuleSet, s domain.Filing) decimal.Decimal {
	return defaultEngine().FilingPrice(rules, s)
}

// ComputeFerPrice prices a First Examination Response.
func ComputeFerPrice(rules domain.RuleSet, s domain.FER) decimal.Decimal {
	return defaultEngine().FerPrice(rules, s)
}

// ComputeTrademarkPrice prices the generic trademark selection as entered.
func ComputeTrademarkPrice(rules domain.RuleSet, s domain.Trademark) decimal.Decimal {
	return defaultEngine().TrademarkPrice(rules, s)
}

//Personal.AI order the ending
