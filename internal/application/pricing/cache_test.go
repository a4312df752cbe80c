package pricing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
)

func TestMemoryPriceCache_EvictsOldestWhenFull(t *testing.T) {
	c := NewMemoryPriceCache(2)
	c.Set("a", decimal.NewFromInt(1))
	c.Set("b", decimal.NewFromInt(2))
	c.Set("a", decimal.NewFromInt(10)) // overwrite keeps position
	c.Set("c", decimal.NewFromInt(3))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assertAmount(t, 3, v)
}

func TestMemoryPriceCache_Unbounded(t *testing.T) {
	c := NewMemoryPriceCache(0)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprint(i), decimal.NewFromInt(int64(i)))
	}
	assert.Equal(t, 100, c.Len())
	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryPriceCache_SetMaxEntries(t *testing.T) {
	c := NewMemoryPriceCache(3)
	c.Set("a", decimal.NewFromInt(1))
	c.Set("b", decimal.NewFromInt(2))
	c.Set("c", decimal.NewFromInt(3))

	c.SetMaxEntries(1)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok)

	c.SetMaxEntries(0)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprint(i), decimal.NewFromInt(int64(i)))
	}
	assert.Equal(t, 6, c.Len())

	c.SetMaxEntries(2)
	assert.Equal(t, 2, c.Len())
	c.Set("z", decimal.Zero)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryPriceCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryPriceCache(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("%d-%d", g, i%20)
				c.Set(k, decimal.NewFromInt(int64(i)))
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestFingerprint(t *testing.T) {
	a := searchRules()
	b := searchRules()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b[1].Variant = string(domain.TurnaroundRush)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	b = searchRules()
	b[0].Amount = decimal.RequireFromString("4500.01")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestPriceKey_DistinguishesKindAndScope(t *testing.T) {
	opts := domain.SelectedOptions{ApplicationType: domain.ApplicationIndividual}
	k1 := priceKey(2, "fp", domain.ServiceFER, "service", opts)
	k2 := priceKey(2, "fp", domain.ServiceDrafting, "service", opts)
	k3 := priceKey(2, "fp", domain.ServiceFER, "generic", opts)
	k4 := priceKey(3, "fp", domain.ServiceFER, "service", opts)

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Equal(t, k1, priceKey(2, "fp", domain.ServiceFER, "service", opts))
}

//Personal.AI order the ending
