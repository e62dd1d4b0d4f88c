package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WebhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwsync",
			Subsystem: "webhook",
			Name:      "received_total",
			Help:      "Inbound Shopify webhooks by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	RevocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwsync",
			Subsystem: "revocation",
			Name:      "total",
			Help:      "Per-line-item revocation outcomes",
		},
		[]string{"outcome"},
	)

	MetafieldLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwsync",
			Subsystem: "resolver",
			Name:      "metafield_lookups_total",
			Help:      "Shopify metafield lookups by source and result",
		},
		[]string{"source", "result"},
	)
)

func init() {
	Registry.MustRegister(WebhooksReceivedTotal, RevocationsTotal, MetafieldLookupsTotal)
}
