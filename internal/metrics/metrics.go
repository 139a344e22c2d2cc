package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for upstream API calls.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_api_requests_total",
		Help: "Requests issued against the attendance backend, by operation and outcome.",
	}, []string{"operation", "outcome"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_api_request_seconds",
		Help:    "Latency of attendance backend requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveAPIRequest records one upstream call.
func ObserveAPIRequest(operation, outcome string, elapsed time.Duration) {
	apiRequests.WithLabelValues(operation, outcome).Inc()
	apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
