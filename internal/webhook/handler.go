// Package webhook receives Shopify order-lifecycle webhooks and revokes the
// matching learner's LearnWorlds access.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securityexcellence/lwsync/internal/domain"
	"github.com/securityexcellence/lwsync/internal/resolver"
	"github.com/securityexcellence/lwsync/pkg/logger"
	"github.com/securityexcellence/lwsync/pkg/metrics"
)

// Shopify webhook headers.
const (
	HeaderHmac  = "X-Shopify-Hmac-Sha256"
	HeaderTopic = "X-Shopify-Topic"
)

// Enroller issues the remote revocation call. One call mutates one
// enrollment; outcomes are isolated per line item.
type Enroller interface {
	Unenroll(ctx context.Context, email, productID, productType string) (json.RawMessage, error)
}

// Handler is the webhook request orchestrator: verify, parse, classify,
// then resolve and revoke per line item, reporting one Action each.
type Handler struct {
	secret     string
	classifier *domain.Classifier
	resolver   *resolver.Resolver
	enroller   Enroller
	log        *logger.Logger
}

func NewHandler(
	secret string,
	classifier *domain.Classifier,
	res *resolver.Resolver,
	enroller Enroller,
	l *logger.Logger,
) *Handler {
	return &Handler{
		secret:     secret,
		classifier: classifier,
		resolver:   res,
		enroller:   enroller,
		log:        l,
	}
}

// Handle processes one webhook delivery synchronously. Line items are
// processed strictly in input order; a failure on one item never aborts
// the rest. The HTTP response body is the authoritative record of what
// happened, nothing is persisted.
func (h *Handler) Handle(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{OK: false, Error: "failed to read body"})
		return
	}

	topic := c.GetHeader(HeaderTopic)

	if !VerifySignature(rawBody, c.GetHeader(HeaderHmac), h.secret) {
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, "rejected").Inc()
		c.JSON(http.StatusUnauthorized, Response{OK: false, Error: "hmac_verification_failed"})
		return
	}

	var event domain.Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		h.log.Error("webhook - malformed payload: topic=%s error=%v", topic, err)
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, "malformed").Inc()
		c.JSON(http.StatusInternalServerError, Response{OK: false, Error: err.Error()})
		return
	}

	ctx := c.Request.Context()

	cls := h.classifier.Classify(ctx, topic, &event)
	switch cls.Outcome {
	case domain.OutcomeIgnored:
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, "ignored").Inc()
		c.JSON(http.StatusOK, Response{OK: true, Ignored: topic})
		return
	case domain.OutcomeNoEmail:
		h.log.Info("webhook - no actionable email: topic=%s", topic)
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, "no_email").Inc()
		c.JSON(http.StatusOK, Response{OK: true, Skipped: "no_email"})
		return
	}

	// Revocation without credentials is a deployment error; fail the whole
	// request instead of reporting every item as failed.
	if h.enroller == nil {
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, "config_error").Inc()
		c.JSON(http.StatusInternalServerError, Response{OK: false, Error: "learnworlds_not_configured"})
		return
	}

	actions := h.process(ctx, cls)

	metrics.WebhooksReceivedTotal.WithLabelValues(topic, "processed").Inc()
	c.JSON(http.StatusOK, Response{
		OK:      true,
		Topic:   cls.Topic,
		Email:   cls.Email,
		Actions: actions,
	})
}

// process resolves and revokes each line item sequentially. Sequential
// execution keeps the per-request cache unsynchronized and makes the
// action list mirror input order.
func (h *Handler) process(ctx context.Context, cls domain.Classification) []Action {
	actions := make([]Action, 0, len(cls.LineItems))
	cache := resolver.NewCache()

	for _, item := range cls.LineItems {
		lw, ok := h.resolver.Resolve(ctx, item, cache)
		if !ok {
			metrics.RevocationsTotal.WithLabelValues(ActionUnmapped).Inc()
			actions = append(actions, unmapped(item))
			continue
		}

		resp, err := h.enroller.Unenroll(ctx, cls.Email, lw.ProductID, lw.ProductType)
		if err != nil {
			h.log.Error("webhook - unenroll failed: email=%s product=%s error=%v",
				cls.Email, lw.ProductID, err)
			metrics.RevocationsTotal.WithLabelValues(ActionFailed).Inc()
			actions = append(actions, failed(item, lw, err))
			continue
		}

		metrics.RevocationsTotal.WithLabelValues(ActionUnenrolled).Inc()
		actions = append(actions, unenrolled(item, lw, resp))
	}

	return actions
}
