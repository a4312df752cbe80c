package redis

import (
	"context"
	"time"

	"github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

const (
	ruleKeyPrefix   = "rules:"
	servicesKey     = "services"
	replaceLockName = "rules-replace:"
)

// RuleCacheMetrics receives rule cache hits and misses.
type RuleCacheMetrics interface {
	RecordRuleCache(hit bool)
}

type nopRuleCacheMetrics struct{}

func (nopRuleCacheMetrics) RecordRuleCache(bool) {}

// cachedRules is the cached form of a service's rule set.  Wrapping the slice
// keeps an empty rule set distinguishable from a miss.
type cachedRules struct {
	Rules []pricing.PricingRule `json:"rules"`
}

// CachedRuleRepository is a read-through Redis cache in front of a rule
// store.  Replacements go to the store under a cross-replica lock and then
// drop the cached entry; reads never serve a set older than the last local
// replace.
type CachedRuleRepository struct {
	next    pricing.RuleRepository
	cache   Cache
	locks   LockFactory
	ttl     time.Duration
	metrics RuleCacheMetrics
	logger  logging.Logger
}

// NewCachedRuleRepository wraps next.  locks and metrics may be nil.
func NewCachedRuleRepository(next pricing.RuleRepository, cache Cache, locks LockFactory, ttl time.Duration, metrics RuleCacheMetrics, log logging.Logger) *CachedRuleRepository {
	if metrics == nil {
		metrics = nopRuleCacheMetrics{}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedRuleRepository{
		next:    next,
		cache:   cache,
		locks:   locks,
		ttl:     ttl,
		metrics: metrics,
		logger:  log.Named("rule-cache"),
	}
}

func (r *CachedRuleRepository) ListByService(ctx context.Context, serviceID string) ([]pricing.PricingRule, error) {
	var out cachedRules
	hit := true
	err := r.cache.GetOrSet(ctx, ruleKeyPrefix+serviceID, &out, r.ttl, func(ctx context.Context) (interface{}, error) {
		hit = false
		rules, err := r.next.ListByService(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		return cachedRules{Rules: rules}, nil
	})
	if err != nil {
		return nil, err
	}
	r.metrics.RecordRuleCache(hit)
	return out.Rules, nil
}

func (r *CachedRuleRepository) ReplaceForService(ctx context.Context, serviceID string, rules []pricing.PricingRule) error {
	if r.locks != nil {
		lock := r.locks.NewMutex(replaceLockName + serviceID)
		if err := lock.Lock(ctx); err != nil {
			return err
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("rule replace lock release failed", logging.String("service_id", serviceID), logging.Err(err))
			}
		}()
	}

	if err := r.next.ReplaceForService(ctx, serviceID, rules); err != nil {
		return err
	}
	return r.Invalidate(ctx, serviceID)
}

func (r *CachedRuleRepository) ListServices(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.cache.GetOrSet(ctx, servicesKey, &ids, r.ttl, func(ctx context.Context) (interface{}, error) {
		return r.next.ListServices(ctx)
	})
	return ids, err
}

// Invalidate drops the cached rule set of serviceID and the service list.
func (r *CachedRuleRepository) Invalidate(ctx context.Context, serviceID string) error {
	if err := r.cache.Delete(ctx, ruleKeyPrefix+serviceID, servicesKey); err != nil {
		r.logger.Warn("rule cache invalidation failed", logging.String("service_id", serviceID), logging.Err(err))
		return err
	}
	r.logger.Debug("rule cache invalidated", logging.String("service_id", serviceID))
	return nil
}

// InvalidateAll drops every cached rule set.
func (r *CachedRuleRepository) InvalidateAll(ctx context.Context) (int64, error) {
	n, err := r.cache.DeleteByPrefix(ctx, ruleKeyPrefix)
	if err != nil {
		return n, err
	}
	return n, r.cache.Delete(ctx, servicesKey)
}

//Personal.AI order the ending
