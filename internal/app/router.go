package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/securityexcellence/lwsync/internal/webhook"
	"github.com/securityexcellence/lwsync/pkg/health"
	"github.com/securityexcellence/lwsync/pkg/metrics"
)

type Router struct {
	webhook        *webhook.Handler
	healthRegistry *health.Registry
}

func NewRouter(wh *webhook.Handler, healthRegistry *health.Registry) *Router {
	return &Router{
		webhook:        wh,
		healthRegistry: healthRegistry,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	// Health checks (Kubernetes-style)
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.healthRegistry, health.DefaultTimeout))

	// Prometheus metrics
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Shopify delivers all subscribed topics to this single endpoint.
	engine.POST("/api/shopify-webhook", r.webhook.Handle)
}
