package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// QuoteService prices selections against stored or inline rule sets.
type QuoteService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*Quote, error)
	Evaluate(ctx context.Context, req *EvaluateRequest) (*Quote, error)
	Preview(ctx context.Context, req *PreviewRequest) (*Preview, error)

	// Snapshot returns the stored snapshot of an earlier Quote.
	Snapshot(ctx context.Context, serviceID, quoteID string) (*QuoteSnapshot, error)
}

// QuoteRequest prices one selection against a stored service's rules.
type QuoteRequest struct {
	ServiceID       string           `json:"service_id"`
	Selection       SelectionRequest `json:"selection"`
	IncludeVariants bool             `json:"include_variants,omitempty"`
}

// EvaluateRequest prices one selection against rules supplied inline.
type EvaluateRequest struct {
	Rules           []domain.PricingRule `json:"rules"`
	Selection       SelectionRequest     `json:"selection"`
	IncludeVariants bool                 `json:"include_variants,omitempty"`
}

// PreviewRequest derives a Preview from form state.
type PreviewRequest struct {
	ServiceID string    `json:"service_id"`
	Form      FormState `json:"form"`
}

// Quote is a priced selection.
type Quote struct {
	ID              string                     `json:"id"`
	ServiceID       string                     `json:"service_id,omitempty"`
	Kind            domain.ServiceKind         `json:"kind"`
	ApplicationType domain.ApplicationType     `json:"application_type"`
	Breakdown       domain.Breakdown           `json:"breakdown"`
	Total           decimal.Decimal            `json:"total"`
	GovernmentFee   decimal.Decimal            `json:"government_fee"`
	Variants        map[string]decimal.Decimal `json:"variants,omitempty"`
	Warnings        []domain.ValidationWarning `json:"warnings,omitempty"`
	RuleCount       int                        `json:"rule_count"`
	SnapshotKey     string                     `json:"snapshot_key,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// QuoteSnapshot is what gets persisted for point-in-time reproducibility.
type QuoteSnapshot struct {
	Quote     *Quote           `json:"quote"`
	Rules     domain.RuleSet   `json:"rules"`
	Selection SelectionRequest `json:"selection"`
}

// SnapshotStore persists quote snapshots.  SaveSnapshot returns the object key.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *QuoteSnapshot) (string, error)
	LoadSnapshot(ctx context.Context, serviceID, quoteID string) (*QuoteSnapshot, error)
}

type quoteServiceImpl struct {
	repo       domain.RuleRepository
	engine     *Engine
	aggregator *PreviewAggregator
	snapshots  SnapshotStore
	metrics    Metrics
	logger     logging.Logger
}

// NewQuoteService creates a QuoteService.  snapshots may be nil to disable
// snapshotting.
func NewQuoteService(repo domain.RuleRepository, engine *Engine, aggregator *PreviewAggregator, snapshots SnapshotStore, logger logging.Logger) QuoteService {
	if engine == nil {
		engine = NewEngine(logger, nil)
	}
	if aggregator == nil {
		aggregator = NewPreviewAggregator(engine, nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &quoteServiceImpl{
		repo:       repo,
		engine:     engine,
		aggregator: aggregator,
		snapshots:  snapshots,
		metrics:    engine.metrics,
		logger:     logger,
	}
}

func (s *quoteServiceImpl) loadRules(ctx context.Context, serviceID string) (domain.RuleSet, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, errors.InvalidParam("service_id is required")
	}
	rules, err := s.repo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load pricing rules").WithDetail("service_id=" + serviceID)
	}
	if len(rules) == 0 {
		s.logger.Warn("service has no pricing rules; quotes price at zero", logging.String("service_id", serviceID))
	}
	return domain.RuleSet(rules), nil
}

func (s *quoteServiceImpl) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	if req == nil {
		return nil, errors.InvalidParam("quote request is required")
	}
	start := time.Now()

	sel, err := req.Selection.Selection()
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	q := s.price(rules, sel, req.IncludeVariants)
	q.ServiceID = req.ServiceID
	if n := domain.CountKind(q.Warnings, domain.WarnDuplicateKey); n > 0 {
		s.metrics.RecordDuplicateRules(req.ServiceID, n)
	}

	if s.snapshots != nil {
		key, err := s.snapshots.SaveSnapshot(ctx, &QuoteSnapshot{Quote: q, Rules: rules, Selection: req.Selection})
		if err != nil {
			s.logger.Warn("quote snapshot failed", logging.String("quote_id", q.ID), logging.Err(err))
		} else {
			q.SnapshotKey = key
		}
	}

	s.metrics.RecordQuoteDuration(string(q.Kind), time.Since(start).Seconds())
	s.logger.Info("quote priced",
		logging.String("quote_id", q.ID),
		logging.String("service_id", q.ServiceID),
		logging.String("kind", string(q.Kind)),
		logging.Amount("total", q.Total))
	return q, nil
}

func (s *quoteServiceImpl) Evaluate(ctx context.Context, req *EvaluateRequest) (*Quote, error) {
	if req == nil {
		return nil, errors.InvalidParam("evaluate request is required")
	}
	start := time.Now()

	sel, err := req.Selection.Selection()
	if err != nil {
		return nil, err
	}
	rules := domain.RuleSet(req.Rules)
	if rules == nil {
		rules = domain.RuleSet{}
	}
	q := s.price(rules, sel, req.IncludeVariants)
	s.metrics.RecordQuoteDuration(string(q.Kind), time.Since(start).Seconds())
	return q, nil
}

func (s *quoteServiceImpl) Preview(ctx context.Context, req *PreviewRequest) (*Preview, error) {
	if req == nil {
		return nil, errors.InvalidParam("preview request is required")
	}
	rules, err := s.loadRules(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	p := s.aggregator.Preview(rules, req.Form)
	return &p, nil
}

func (s *quoteServiceImpl) Snapshot(ctx context.Context, serviceID, quoteID string) (*QuoteSnapshot, error) {
	if s.snapshots == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "quote snapshots are disabled")
	}
	serviceID, quoteID = strings.TrimSpace(serviceID), strings.TrimSpace(quoteID)
	if serviceID == "" || quoteID == "" {
		return nil, errors.InvalidParam("service_id and quote_id are required")
	}
	return s.snapshots.LoadSnapshot(ctx, serviceID, quoteID)
}

func (s *quoteServiceImpl) price(rules domain.RuleSet, sel domain.ServiceSelection, withVariants bool) *Quote {
	b := s.engine.Breakdown(rules, sel)
	q := &Quote{
		ID:              uuid.New().String(),
		Kind:            sel.Kind(),
		ApplicationType: sel.Options().ApplicationType,
		Breakdown:       b,
		Total:           b.Total,
		GovernmentFee:   b.GovernmentFee(),
		Warnings:        domain.ValidateRules(rules),
		RuleCount:       len(rules),
		CreatedAt:       time.Now().UTC(),
	}
	if withVariants {
		q.Variants = s.engine.Variants(rules, sel)
	}
	return q
}

//Personal.AI order the ending
