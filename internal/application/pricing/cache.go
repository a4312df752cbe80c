package pricing

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
)

// PriceCache memoizes computed totals for a PreviewAggregator.  Each
// aggregator owns its cache; implementations must be safe for concurrent use.
type PriceCache interface {
	Get(key string) (decimal.Decimal, bool)
	Set(key string, v decimal.Decimal)
	Len() int
	Reset()
}

// MemoryPriceCache is a mutex-guarded map.  With a positive bound it evicts
// the oldest insertion first once full; with a zero bound it grows without
// limit.
type MemoryPriceCache struct {
	mu      sync.RWMutex
	entries map[string]decimal.Decimal
	order   []string
	max     int
}

// NewMemoryPriceCache creates a cache holding at most maxEntries totals.
func NewMemoryPriceCache(maxEntries int) *MemoryPriceCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &MemoryPriceCache{
		entries: make(map[string]decimal.Decimal),
		max:     maxEntries,
	}
}

func (c *MemoryPriceCache) Get(key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryPriceCache) Set(key string, v decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = v
		return
	}
	if c.max > 0 && len(c.entries) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = v
	if c.max > 0 {
		c.order = append(c.order, key)
	}
}

func (c *MemoryPriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SetMaxEntries changes the bound, evicting the oldest entries when the cache
// already holds more.  Raising the bound from zero starts tracking insertion
// order from the current contents in arbitrary order.
func (c *MemoryPriceCache) SetMaxEntries(maxEntries int) {
	if maxEntries < 0 {
		maxEntries = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.max == 0 && maxEntries > 0 {
		c.order = make([]string, 0, len(c.entries))
		for k := range c.entries {
			c.order = append(c.order, k)
		}
	}
	c.max = maxEntries
	if c.max == 0 {
		c.order = nil
		return
	}
	for len(c.entries) > c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

// Reset drops every entry.
func (c *MemoryPriceCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]decimal.Decimal)
	c.order = nil
}

// Fingerprint hashes the priced content of a rule set so that two sets of
// the same size but different amounts never share cache entries.
func Fingerprint(rules domain.RuleSet) string {
	h := xxhash.New()
	for _, r := range rules {
		_, _ = h.WriteString(string(r.ApplicationType))
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(string(r.Key))
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(string(r.Unit))
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(r.Amount.String())
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(r.Variant)
		_, _ = h.WriteString(";")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

type cacheKey struct {
	Count       int                    `json:"n"`
	Fingerprint string                 `json:"fp"`
	Kind        domain.ServiceKind     `json:"kind"`
	Scope       string                 `json:"scope"`
	Selection   domain.SelectedOptions `json:"sel"`
}

// priceKey serializes (rule-set size, fingerprint, kind, selection).
func priceKey(count int, fingerprint string, kind domain.ServiceKind, scope string, opts domain.SelectedOptions) string {
	b, err := json.Marshal(cacheKey{
		Count:       count,
		Fingerprint: fingerprint,
		Kind:        kind,
		Scope:       scope,
		Selection:   opts,
	})
	if err != nil {
		return ""
	}
	return string(b)
}

//Personal.AI order the ending
