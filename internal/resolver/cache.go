package resolver

import "github.com/securityexcellence/lwsync/internal/productmap"

// Cache memoizes metafield lookup results for the duration of one webhook
// delivery. Refunds and multi-line orders commonly repeat the same variant
// or product, so a definitive miss is cached as eagerly as a hit.
//
// The cache is owned by a single in-flight request and accessed
// sequentially; it needs no locking and must not outlive the request.
type Cache struct {
	entries map[string]lookupResult
}

// lookupResult distinguishes a successful resolution from a definitive
// absence. Failed remote lookups are recorded as absent: retrying within
// the same delivery would only repeat the failure.
type lookupResult struct {
	entry productmap.Entry
	found bool
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]lookupResult)}
}

func (c *Cache) get(key string) (lookupResult, bool) {
	r, ok := c.entries[key]
	return r, ok
}

func (c *Cache) put(key string, r lookupResult) {
	c.entries[key] = r
}
