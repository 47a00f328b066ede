// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"path", "method", "status"})

	// RateLimitDenials counts 429 responses per limit name.
	RateLimitDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_denials_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"limit"})

	// AgentDuration observes end-to-end assistant latency, tool calls included.
	AgentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agent_request_duration_seconds",
		Help:    "Latency of assistant responses.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// CatalogRequests counts outbound movie catalog calls per operation.
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tmdb_requests_total",
		Help: "Outbound TMDB API calls.",
	}, []string{"operation", "outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
