// Package resolver turns one Shopify line item into a LearnWorlds product
// reference through a fixed cascade of identification strategies.
package resolver

import (
	"context"
	"strings"

	"github.com/securityexcellence/lwsync/internal/domain"
	"github.com/securityexcellence/lwsync/internal/productmap"
	"github.com/securityexcellence/lwsync/pkg/logger"
	"github.com/securityexcellence/lwsync/pkg/metrics"
)

// MetafieldNamespace is the Shopify metafield namespace carrying
// LearnWorlds identifiers.
const MetafieldNamespace = "learnworlds"

const (
	MetafieldKeyProductID   = "product_id"
	MetafieldKeyProductType = "product_type"
)

// DefaultProductType is assumed when a line-item property names a product
// but not its type.
const DefaultProductType = "course"

// Historical alias keys for line-item properties. Older storefront themes
// wrote underscore-prefixed (hidden) properties.
var (
	productIDPropertyAliases = []string{
		"lw_product_id",
		"_lw_product_id",
		"learnworlds_product_id",
	}
	productTypePropertyAliases = []string{
		"lw_product_type",
		"_lw_product_type",
		"learnworlds_product_type",
	}
)

// MetadataClient reads variant and product metafields from the Shopify
// admin API. Implementations return (nil, nil) when nothing is found or
// the admin API is not configured.
type MetadataClient interface {
	VariantMetafields(ctx context.Context, variantID int64) ([]domain.Metafield, error)
	ProductMetafields(ctx context.Context, productID int64) ([]domain.Metafield, error)
}

// Resolver applies the identification strategies in fixed priority order:
//
//  1. line-item properties (operator-curated, free)
//  2. exact SKU match against the product map
//  3. case-insensitive SKU match
//  4. indirect map keys product:<id>, variant:<id>
//  5. remote metafield lookup, variant first then product, memoized per request
//
// Cheap, operator-curated sources win over remote lookups.
type Resolver struct {
	pmap productmap.Map
	meta MetadataClient
	log  *logger.Logger
}

func New(pmap productmap.Map, meta MetadataClient, l *logger.Logger) *Resolver {
	return &Resolver{pmap: pmap, meta: meta, log: l}
}

// Resolve returns the LearnWorlds product for one line item, or ok=false
// when no strategy matches. Remote lookup failures degrade to a miss; they
// never fail the request.
func (r *Resolver) Resolve(ctx context.Context, item domain.LineItem, cache *Cache) (productmap.Entry, bool) {
	if e, ok := fromProperties(item.Properties); ok {
		return e, true
	}

	if item.SKU != nil {
		sku := strings.TrimSpace(*item.SKU)
		if sku != "" {
			if e, ok := r.pmap.Lookup(sku); ok {
				return e, true
			}
			if e, ok := r.pmap.LookupSKUFold(sku); ok {
				return e, true
			}
		}
	}

	if item.ProductID != nil {
		if e, ok := r.pmap.Lookup(productmap.ProductKey(*item.ProductID)); ok {
			return e, true
		}
	}
	if item.VariantID != nil {
		if e, ok := r.pmap.Lookup(productmap.VariantKey(*item.VariantID)); ok {
			return e, true
		}
	}

	if item.VariantID != nil {
		if e, ok := r.fromMetafields(ctx, cache, productmap.VariantKey(*item.VariantID), "variant", *item.VariantID); ok {
			return e, true
		}
	}
	if item.ProductID != nil {
		if e, ok := r.fromMetafields(ctx, cache, productmap.ProductKey(*item.ProductID), "product", *item.ProductID); ok {
			return e, true
		}
	}

	return productmap.Entry{}, false
}

// fromProperties scans checkout properties for a LearnWorlds product id,
// accepting historical alias keys. An id without an explicit type defaults
// to DefaultProductType.
func fromProperties(props []domain.Property) (productmap.Entry, bool) {
	id := propertyValue(props, productIDPropertyAliases)
	if id == "" {
		return productmap.Entry{}, false
	}

	typ := propertyValue(props, productTypePropertyAliases)
	if typ == "" {
		typ = DefaultProductType
	}

	return productmap.Entry{ProductID: id, ProductType: typ}, true
}

func propertyValue(props []domain.Property, aliases []string) string {
	for _, alias := range aliases {
		for _, p := range props {
			if p.Name == alias && strings.TrimSpace(p.Value) != "" {
				return strings.TrimSpace(p.Value)
			}
		}
	}
	return ""
}

func (r *Resolver) fromMetafields(ctx context.Context, cache *Cache, key, source string, id int64) (productmap.Entry, bool) {
	if cached, ok := cache.get(key); ok {
		return cached.entry, cached.found
	}

	fields, err := r.lookup(ctx, source, id)
	if err != nil {
		r.log.Warn("resolver - metafield lookup failed: key=%s error=%v", key, err)
		metrics.MetafieldLookupsTotal.WithLabelValues(source, "error").Inc()
		// A failed lookup is memoized as a miss: retrying within the same
		// delivery would repeat the failure.
		cache.put(key, lookupResult{})
		return productmap.Entry{}, false
	}

	entry, found := extractEntry(fields)
	if found {
		metrics.MetafieldLookupsTotal.WithLabelValues(source, "hit").Inc()
	} else {
		metrics.MetafieldLookupsTotal.WithLabelValues(source, "miss").Inc()
	}

	cache.put(key, lookupResult{entry: entry, found: found})
	return entry, found
}

func (r *Resolver) lookup(ctx context.Context, source string, id int64) ([]domain.Metafield, error) {
	if source == "variant" {
		return r.meta.VariantMetafields(ctx, id)
	}
	return r.meta.ProductMetafields(ctx, id)
}

// extractEntry requires both the id and type metafields; a lone id is not
// enough to address a LearnWorlds enrollment.
func extractEntry(fields []domain.Metafield) (productmap.Entry, bool) {
	var entry productmap.Entry
	for _, f := range fields {
		if f.Namespace != MetafieldNamespace {
			continue
		}
		switch f.Key {
		case MetafieldKeyProductID:
			entry.ProductID = f.Value
		case MetafieldKeyProductType:
			entry.ProductType = f.Value
		}
	}

	if entry.ProductID == "" || entry.ProductType == "" {
		return productmap.Entry{}, false
	}
	return entry, true
}
