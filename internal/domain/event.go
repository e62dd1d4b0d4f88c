// Package domain holds the inbound Shopify event model and the rules that
// decide which line items require a LearnWorlds revocation.
package domain

// Shopify webhook topics this service acts on. Anything else is ignored.
const (
	TopicOrdersCancelled = "orders/cancelled"
	TopicOrdersUpdated   = "orders/updated"
	TopicRefundsCreate   = "refunds/create"
	// Some Shopify API versions deliver the refund topic in past tense.
	TopicRefundsCreated = "refunds/created"
)

// Property is one custom attribute attached to a line item at checkout.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LineItem is one product/quantity entry of a Shopify order.
// Identifier fields are pointers: Shopify sends explicit nulls for
// custom (non-catalog) line items.
type LineItem struct {
	ID            int64      `json:"id"`
	SKU           *string    `json:"sku"`
	ProductID     *int64     `json:"product_id"`
	VariantID     *int64     `json:"variant_id"`
	Properties    []Property `json:"properties"`
	SellingPlanID *int64     `json:"selling_plan_id"`
}

// RefundLineItemRef references a refunded line item. Shopify embeds the full
// line item in most payloads but some only carry the id, which must be
// joined against the parent order.
type RefundLineItemRef struct {
	LineItemID int64     `json:"line_item_id"`
	LineItem   *LineItem `json:"line_item"`
}

type Customer struct {
	Email string `json:"email"`
}

// Order is the subset of a Shopify order this service reads, either embedded
// in a webhook payload or fetched from the admin API.
type Order struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Customer    *Customer  `json:"customer"`
	CancelledAt *string    `json:"cancelled_at"`
	LineItems   []LineItem `json:"line_items"`
}

// Event is the parsed webhook payload. It covers every topic shape this
// service handles: order payloads carry line_items directly, refund payloads
// carry refund_line_items plus an order_id reference.
type Event struct {
	Email           string              `json:"email"`
	Customer        *Customer           `json:"customer"`
	Order           *Order              `json:"order"`
	OrderID         int64               `json:"order_id"`
	CancelledAt     *string             `json:"cancelled_at"`
	LineItems       []LineItem          `json:"line_items"`
	RefundLineItems []RefundLineItemRef `json:"refund_line_items"`
}

// Metafield is a namespaced key/value attribute on a Shopify product or
// variant. LearnWorlds identifiers are encoded under the "learnworlds"
// namespace.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}
