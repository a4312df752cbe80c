package pricing

import (
	"context"
	"strconv"
	"strings"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// RuleCacheInvalidator drops cached rule sets for a service.
type RuleCacheInvalidator interface {
	Invalidate(ctx context.Context, serviceID string) error
}

// RuleEventPublisher announces rule set replacements.
type RuleEventPublisher interface {
	PublishRulesUpdated(ctx context.Context, event *domain.RulesUpdatedEvent) error
}

// RuleService manages stored rule sets.  It is the boundary where duplicate
// and malformed rules are surfaced; evaluation itself stays last-wins.
type RuleService interface {
	List(ctx context.Context, serviceID string) (*RuleSetView, error)
	Replace(ctx context.Context, serviceID string, rules []domain.PricingRule) (*ReplaceResult, error)
	Import(ctx context.Context, document []byte) (*ReplaceResult, error)
	Validate(rules []domain.PricingRule) []domain.ValidationWarning
	Services(ctx context.Context) ([]string, error)

	// HandleRulesUpdated drops every cached view of serviceID's rules.  It is
	// driven by rule change notifications from other instances.
	HandleRulesUpdated(ctx context.Context, serviceID string) error
}

// RuleSetView is a stored rule set with its validation warnings.
type RuleSetView struct {
	ServiceID string                     `json:"service_id"`
	Rules     []domain.PricingRule       `json:"rules"`
	Warnings  []domain.ValidationWarning `json:"warnings,omitempty"`
}

// ReplaceResult reports a successful rule set replacement.
type ReplaceResult struct {
	ServiceID string                     `json:"service_id"`
	RuleCount int                        `json:"rule_count"`
	Warnings  []domain.ValidationWarning `json:"warnings,omitempty"`
	EventID   string                     `json:"event_id,omitempty"`
}

// RuleServiceDeps are the collaborators of a RuleService.  Only Repo is
// required.
type RuleServiceDeps struct {
	Repo       domain.RuleRepository
	Cache      RuleCacheInvalidator
	Publisher  RuleEventPublisher
	Aggregator *PreviewAggregator
	Metrics    Metrics
	Logger     logging.Logger
}

type ruleServiceImpl struct {
	deps RuleServiceDeps
}

// NewRuleService creates a RuleService.
func NewRuleService(deps RuleServiceDeps) RuleService {
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &ruleServiceImpl{deps: deps}
}

func requireServiceID(serviceID string) (string, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return "", errors.InvalidParam("service_id is required")
	}
	return serviceID, nil
}

func (s *ruleServiceImpl) Validate(rules []domain.PricingRule) []domain.ValidationWarning {
	return domain.ValidateRules(rules)
}

func (s *ruleServiceImpl) List(ctx context.Context, serviceID string) (*RuleSetView, error) {
	serviceID, err := requireServiceID(serviceID)
	if err != nil {
		return nil, err
	}
	rules, err := s.deps.Repo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "list pricing rules").WithDetail("service_id=" + serviceID)
	}
	if len(rules) == 0 {
		return nil, errors.New(errors.ErrCodeServiceUnknown, "no pricing rules for service").WithDetail(serviceID)
	}

	warnings := domain.ValidateRules(rules)
	s.reportDuplicates(serviceID, warnings)
	return &RuleSetView{ServiceID: serviceID, Rules: rules, Warnings: warnings}, nil
}

func (s *ruleServiceImpl) Replace(ctx context.Context, serviceID string, rules []domain.PricingRule) (*ReplaceResult, error) {
	serviceID, err := requireServiceID(serviceID)
	if err != nil {
		return nil, err
	}

	stamped := make([]domain.PricingRule, len(rules))
	for i, r := range rules {
		if r.ServiceID != "" && r.ServiceID != serviceID {
			return nil, errors.New(errors.ErrCodeRuleInvalid, "rule belongs to another service").
				WithDetail("index=" + strconv.Itoa(i) + " service_id=" + r.ServiceID)
		}
		r.ServiceID = serviceID
		stamped[i] = r
	}

	warnings := domain.ValidateRules(stamped)
	if domain.HasBlocking(warnings) {
		msgs := make([]string, 0, len(warnings))
		for _, w := range warnings {
			if w.Blocking() {
				msgs = append(msgs, w.Message)
			}
		}
		return nil, errors.New(errors.ErrCodeRuleInvalid, "rule set rejected").WithDetail(strings.Join(msgs, "; "))
	}
	s.reportDuplicates(serviceID, warnings)

	if err := s.deps.Repo.ReplaceForService(ctx, serviceID, stamped); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "replace pricing rules").WithDetail("service_id=" + serviceID)
	}

	if err := s.HandleRulesUpdated(ctx, serviceID); err != nil {
		s.deps.Logger.Warn("rule cache invalidation failed", logging.String("service_id", serviceID), logging.Err(err))
	}

	result := &ReplaceResult{ServiceID: serviceID, RuleCount: len(stamped), Warnings: warnings}
	if s.deps.Publisher != nil {
		event := domain.NewRulesUpdatedEvent(serviceID, stamped, warnings)
		if err := s.deps.Publisher.PublishRulesUpdated(ctx, event); err != nil {
			s.deps.Logger.Warn("rules updated event not published",
				logging.String("service_id", serviceID),
				logging.Err(errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish rules updated")))
		} else {
			result.EventID = event.EventID()
		}
	}

	s.deps.Logger.Info("pricing rules replaced",
		logging.String("service_id", serviceID),
		logging.Int("rule_count", len(stamped)),
		logging.Int("warning_count", len(warnings)))
	return result, nil
}

func (s *ruleServiceImpl) Import(ctx context.Context, document []byte) (*ReplaceResult, error) {
	doc, err := ParseRuleDocument(document)
	if err != nil {
		return nil, err
	}
	return s.Replace(ctx, doc.ServiceID, doc.Rules)
}

func (s *ruleServiceImpl) Services(ctx context.Context) ([]string, error) {
	ids, err := s.deps.Repo.ListServices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "list services")
	}
	return ids, nil
}

func (s *ruleServiceImpl) HandleRulesUpdated(ctx context.Context, serviceID string) error {
	if s.deps.Aggregator != nil {
		s.deps.Aggregator.Reset()
	}
	if s.deps.Cache == nil {
		return nil
	}
	return s.deps.Cache.Invalidate(ctx, serviceID)
}

func (s *ruleServiceImpl) reportDuplicates(serviceID string, warnings []domain.ValidationWarning) {
	n := domain.CountKind(warnings, domain.WarnDuplicateKey)
	if n == 0 {
		return
	}
	s.deps.Metrics.RecordDuplicateRules(serviceID, n)
	for _, w := range warnings {
		if w.Kind == domain.WarnDuplicateKey {
			s.deps.Logger.Warn("duplicate pricing rule shadows an earlier one",
				logging.String("service_id", serviceID),
				logging.String("application_type", string(w.ApplicationType)),
				logging.String("key", string(w.Key)),
				logging.String("variant", w.Variant),
				logging.Int("index", w.Index))
		}
	}
}

//Personal.AI order the ending
