package metrics

import "github.com/prometheus/client_golang/prometheus"

// Transport-layer resilience gauges/counters, grounded on the teacher's
// pkg/metrics custom gauges (RateLimitBlockTotal/CBRejectTotal/CBState),
// relabeled onto the matchex_ namespace and the HTTP submission path
// instead of the teacher's grpc client-interceptor call sites.
var (
	RateLimitBlockTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchex",
			Name:      "ratelimit_block_total",
			Help:      "Total number of HTTP requests rejected by the admission rate limiter.",
		},
		[]string{"route"},
	)

	CBRejectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchex",
			Name:      "circuitbreaker_reject_total",
			Help:      "Total number of submissions fast-rejected by a symbol's circuit breaker.",
		},
		[]string{"symbol"},
	)

	CBState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "matchex",
			Name:      "circuitbreaker_state",
			Help:      "Per-symbol submission circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"symbol"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RateLimitBlockTotal, CBRejectTotal, CBState)
}
