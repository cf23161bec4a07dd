package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors scraped from /metrics
var (
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_persistence_failures_total",
		Help: "Writes rejected because the system of record failed",
	}, []string{"operation"})

	StoreEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skillswap_store_entities",
		Help: "Number of entities held in memory per collection",
	}, []string{"collection"})

	SwapTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_swap_transitions_total",
		Help: "Swap requests moved into each status",
	}, []string{"status"})

	FeedbackRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_feedback_recorded_total",
		Help: "Feedback entries recorded",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
