package domain

import (
	"context"

	"github.com/securityexcellence/lwsync/pkg/logger"
)

// Outcome is the terminal classification of one webhook delivery.
type Outcome int

const (
	// OutcomeRevoke means the event carries line items whose access must be revoked.
	OutcomeRevoke Outcome = iota
	// OutcomeIgnored means the topic is not handled.
	OutcomeIgnored
	// OutcomeNoEmail means no customer email could be derived, so no
	// revocation target exists.
	OutcomeNoEmail
)

// Classification is the result of interpreting one (topic, payload) pair.
type Classification struct {
	Outcome   Outcome
	Topic     string
	Email     string
	LineItems []LineItem
}

// OrderFetcher reads an order from the Shopify admin API.
// A nil order with a nil error means the order does not exist or the
// admin API is not configured.
type OrderFetcher interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
}

// Classifier maps an inbound event to the line items requiring revocation.
type Classifier struct {
	orders OrderFetcher
	log    *logger.Logger
}

func NewClassifier(orders OrderFetcher, l *logger.Logger) *Classifier {
	return &Classifier{orders: orders, log: l}
}

// Classify resolves the customer email and selects line items by topic.
//
// The email cascade tries, in order: event email, customer email, embedded
// order email, embedded order's customer email. If all are empty and the
// payload references an order, the order is fetched and the cascade retried
// against it. The fetched order is reused for refund reconstruction so one
// delivery never fetches the same order twice.
func (c *Classifier) Classify(ctx context.Context, topic string, evt *Event) Classification {
	switch {
	case topic == TopicOrdersCancelled,
		topic == TopicOrdersUpdated && evt.CancelledAt != nil:
		email, _ := c.resolveEmail(ctx, evt)
		return c.revoke(topic, email, evt.LineItems)

	case topic == TopicRefundsCreate, topic == TopicRefundsCreated:
		email, fetched := c.resolveEmail(ctx, evt)

		order := evt.Order
		if order == nil {
			order = fetched
		}
		if order == nil && evt.OrderID != 0 && needsJoin(evt.RefundLineItems) {
			order = c.fetchOrder(ctx, evt.OrderID)
		}
		return c.revoke(topic, email, ReconstructRefundItems(evt.RefundLineItems, order))

	default:
		// Topic dispatch precedes any remote work: ignored topics must
		// produce zero outbound calls.
		return Classification{Outcome: OutcomeIgnored, Topic: topic}
	}
}

// resolveEmail runs the payload cascade and, failing that, fetches the
// referenced order and retries against it. The fetched order is returned
// so refund reconstruction can reuse it.
func (c *Classifier) resolveEmail(ctx context.Context, evt *Event) (string, *Order) {
	if email := evt.email(); email != "" {
		return email, nil
	}
	if evt.OrderID == 0 {
		return "", nil
	}

	fetched := c.fetchOrder(ctx, evt.OrderID)
	if fetched == nil {
		return "", nil
	}
	return fetched.email(), fetched
}

func needsJoin(refs []RefundLineItemRef) bool {
	for _, ref := range refs {
		if ref.LineItem == nil {
			return true
		}
	}
	return false
}

func (c *Classifier) revoke(topic, email string, items []LineItem) Classification {
	if email == "" {
		return Classification{Outcome: OutcomeNoEmail, Topic: topic}
	}
	return Classification{
		Outcome:   OutcomeRevoke,
		Topic:     topic,
		Email:     email,
		LineItems: items,
	}
}

func (c *Classifier) fetchOrder(ctx context.Context, id int64) *Order {
	order, err := c.orders.GetOrder(ctx, id)
	if err != nil {
		c.log.Warn("classify - order fetch failed: order_id=%d error=%v", id, err)
		return nil
	}
	return order
}

func (e *Event) email() string {
	if e.Email != "" {
		return e.Email
	}
	if e.Customer != nil && e.Customer.Email != "" {
		return e.Customer.Email
	}
	if e.Order != nil {
		return e.Order.email()
	}
	return ""
}

func (o *Order) email() string {
	if o.Email != "" {
		return o.Email
	}
	if o.Customer != nil {
		return o.Customer.Email
	}
	return ""
}
