// Package productmap holds the operator-curated lookup table translating
// Shopify identifiers to LearnWorlds products.
package productmap

import (
	"fmt"
	"strings"
)

// Entry identifies one LearnWorlds product.
type Entry struct {
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
}

// Map is keyed by exact SKU, "product:<id>" or "variant:<id>".
type Map map[string]Entry

// ProductKey builds the indirect map key for a Shopify product id.
func ProductKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// VariantKey builds the indirect map key for a Shopify variant id.
func VariantKey(id int64) string {
	return fmt.Sprintf("variant:%d", id)
}

// Lookup returns the entry for an exact key.
func (m Map) Lookup(key string) (Entry, bool) {
	e, ok := m[key]
	return e, ok
}

// LookupSKUFold scans for a case-insensitive SKU match. Only meant as a
// fallback after an exact Lookup missed.
func (m Map) LookupSKUFold(sku string) (Entry, bool) {
	for k, e := range m {
		if strings.EqualFold(k, sku) {
			return e, true
		}
	}
	return Entry{}, false
}
