// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatAttempts counts single model calls by provider and outcome ("ok", "error").
	ChatAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_chat_attempts_total",
			Help: "Total number of chat completion attempts",
		},
		[]string{"provider", "outcome"},
	)

	// ChatExhausted counts requests that ran out of retries.
	ChatExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_chat_retries_exhausted_total",
			Help: "Total number of chat requests that failed after all attempts",
		},
		[]string{"provider"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outfit_backend_request_duration_seconds",
			Help:    "Duration of requests to the hosted backend in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "status"},
	)

	// Recommendations counts recommendation requests by outcome.
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_recommendations_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outfit_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveBackend records a backend request. status 0 means a transport error.
func ObserveBackend(service, method string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestDuration.WithLabelValues(service, method, label).Observe(time.Since(started).Seconds())
}
