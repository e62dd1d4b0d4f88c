// Package shopify implements the read-only Shopify admin API client used
// for order fetches and metafield lookups.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/securityexcellence/lwsync/internal/domain"
)

type Client struct {
	storeDomain string
	accessToken string
	apiVersion  string
	HTTP        *http.Client
}

// New creates an admin API client. The store domain is normalized so both
// "my-shop.myshopify.com" and "https://my-shop.myshopify.com/" work.
func New(storeDomain, accessToken, apiVersion string, httpClient *http.Client) *Client {
	storeDomain = strings.TrimPrefix(storeDomain, "https://")
	storeDomain = strings.TrimPrefix(storeDomain, "http://")
	storeDomain = strings.TrimSuffix(storeDomain, "/")

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		storeDomain: storeDomain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		HTTP:        httpClient,
	}
}

// Configured reports whether admin API credentials were supplied. The
// service runs without them; metadata lookups just turn into misses.
func (c *Client) Configured() bool {
	return c.storeDomain != "" && c.accessToken != ""
}

type orderParams struct {
	Fields string `url:"fields,omitempty"`
}

// GetOrder fetches one order. Returns (nil, nil) when the order does not
// exist, the response is not a success, or the client is unconfigured.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	params, _ := query.Values(orderParams{
		Fields: "id,email,customer,cancelled_at,line_items",
	})

	var out struct {
		Order *domain.Order `json:"order"`
	}
	if err := c.get(ctx, fmt.Sprintf("/orders/%d.json", id), params.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

// GetProduct fetches one product. Same nil semantics as GetOrder.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out struct {
		Product *Product `json:"product"`
	}
	if err := c.get(ctx, fmt.Sprintf("/products/%d.json", id), "", &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

// Product is the subset of a Shopify product this service reads.
type Product struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// VariantMetafields lists metafields attached to a variant.
func (c *Client) VariantMetafields(ctx context.Context, variantID int64) ([]domain.Metafield, error) {
	return c.metafields(ctx, fmt.Sprintf("/variants/%d/metafields.json", variantID))
}

// ProductMetafields lists metafields attached to a product.
func (c *Client) ProductMetafields(ctx context.Context, productID int64) ([]domain.Metafield, error) {
	return c.metafields(ctx, fmt.Sprintf("/products/%d/metafields.json", productID))
}

func (c *Client) metafields(ctx context.Context, path string) ([]domain.Metafield, error) {
	var out struct {
		Metafields []domain.Metafield `json:"metafields"`
	}
	if err := c.get(ctx, path, "", &out); err != nil {
		return nil, err
	}
	return out.Metafields, nil
}

// get performs an authenticated admin API GET. A non-success status is
// treated as no data, not an error; only transport failures are returned.
func (c *Client) get(ctx context.Context, path, rawQuery string, out any) error {
	if !c.Configured() {
		return nil
	}

	url := fmt.Sprintf("https://%s/admin/api/%s%s", c.storeDomain, c.apiVersion, path)
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
