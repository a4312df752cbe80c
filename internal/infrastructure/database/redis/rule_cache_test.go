package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/testutil"
)

type countingRuleCacheMetrics struct{ hits, misses int }

func (m *countingRuleCacheMetrics) RecordRuleCache(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func newCachedRepo(t *testing.T) (*CachedRuleRepository, *testutil.MockRuleRepository, *countingRuleCacheMetrics) {
	t.Helper()
	client, _ := newMiniClient(t)
	store := &testutil.MockRuleRepository{}
	metrics := &countingRuleCacheMetrics{}
	repo := NewCachedRuleRepository(store, NewRedisCache(client, nil), NewLockFactory(client, nil), time.Minute, metrics, nil)
	return repo, store, metrics
}

func TestCachedRuleRepository_ReadThrough(t *testing.T) {
	repo, store, metrics := newCachedRepo(t)
	ctx := context.Background()
	rules := []pricing.PricingRule{
		testutil.Rule(pricing.ApplicationIndividual, pricing.KeyProfessionalFee, pricing.UnitFixed, 4500),
		testutil.VariantRule(pricing.ApplicationIndividual, pricing.KeyGoodsServices, 500, "rush"),
	}
	store.On("ListByService", mock.Anything, "svc").Return(rules, nil).Once()

	first, err := repo.ListByService(ctx, "svc")
	require.NoError(t, err)
	second, err := repo.ListByService(ctx, "svc")
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first[0].Key, second[0].Key)
	assert.True(t, second[0].Amount.Equal(rules[0].Amount))
	assert.Equal(t, "rush", second[1].Variant)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	store.AssertExpectations(t)
}

func TestCachedRuleRepository_CachesEmptyRuleSet(t *testing.T) {
	repo, store, _ := newCachedRepo(t)
	store.On("ListByService", mock.Anything, "empty").Return(nil, nil).Once()

	for i := 0; i < 3; i++ {
		rules, err := repo.ListByService(context.Background(), "empty")
		require.NoError(t, err)
		assert.Empty(t, rules)
	}
	store.AssertExpectations(t)
}

func TestCachedRuleRepository_StoreErrorIsNotCached(t *testing.T) {
	repo, store, _ := newCachedRepo(t)
	boom := errors.New("db down")
	store.On("ListByService", mock.Anything, "svc").Return(nil, boom).Once()
	store.On("ListByService", mock.Anything, "svc").Return([]pricing.PricingRule{
		testutil.Rule(pricing.ApplicationOthers, pricing.KeyProfessionalFee, pricing.UnitFixed, 1),
	}, nil).Once()

	_, err := repo.ListByService(context.Background(), "svc")
	assert.ErrorIs(t, err, boom)

	rules, err := repo.ListByService(context.Background(), "svc")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestCachedRuleRepository_ReplaceInvalidates(t *testing.T) {
	repo, store, _ := newCachedRepo(t)
	ctx := context.Background()

	oldRules := []pricing.PricingRule{testutil.Rule(pricing.ApplicationIndividual, pricing.KeyProfessionalFee, pricing.UnitFixed, 100)}
	newRules := []pricing.PricingRule{testutil.Rule(pricing.ApplicationIndividual, pricing.KeyProfessionalFee, pricing.UnitFixed, 200)}

	store.On("ListByService", mock.Anything, "svc").Return(oldRules, nil).Once()
	store.On("ReplaceForService", mock.Anything, "svc", newRules).Return(nil).Once()
	store.On("ListByService", mock.Anything, "svc").Return(newRules, nil).Once()

	_, err := repo.ListByService(ctx, "svc")
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceForService(ctx, "svc", newRules))

	got, err := repo.ListByService(ctx, "svc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(newRules[0].Amount))
	store.AssertExpectations(t)
}

func TestCachedRuleRepository_ReplaceFailureKeepsCache(t *testing.T) {
	repo, store, _ := newCachedRepo(t)
	ctx := context.Background()
	rules := []pricing.PricingRule{testutil.Rule(pricing.ApplicationIndividual, pricing.KeyProfessionalFee, pricing.UnitFixed, 100)}

	store.On("ListByService", mock.Anything, "svc").Return(rules, nil).Once()
	store.On("ReplaceForService", mock.Anything, "svc", mock.Anything).Return(errors.New("constraint")).Once()

	_, err := repo.ListByService(ctx, "svc")
	require.NoError(t, err)
	assert.Error(t, repo.ReplaceForService(ctx, "svc", nil))

	_, err = repo.ListByService(ctx, "svc")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCachedRuleRepository_ListServicesAndInvalidateAll(t *testing.T) {
	repo, store, _ := newCachedRepo(t)
	ctx := context.Background()

	store.On("ListServices", mock.Anything).Return([]string{"a", "b"}, nil).Twice()
	store.On("ListByService", mock.Anything, "a").Return([]pricing.PricingRule{}, nil).Once()

	ids, err := repo.ListServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	_, err = repo.ListServices(ctx)
	require.NoError(t, err)
	_, err = repo.ListByService(ctx, "a")
	require.NoError(t, err)

	n, err := repo.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.ListServices(ctx)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

//Personal.AI order the ending
