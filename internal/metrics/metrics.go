// Package metrics defines the prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_llm_requests_total",
			Help: "Total number of text-generation requests by outcome",
		},
		[]string{"provider", "tier", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cold_message_llm_request_duration_seconds",
			Help:    "Duration of text-generation requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"provider", "tier"},
	)

	LinkClassificationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_link_classification_fallbacks_total",
			Help: "Number of link classifications that fell back to an empty mapping",
		},
		[]string{"reason"},
	)

	MessagesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_messages_generated_total",
			Help: "Number of message templates generated per message type",
		},
		[]string{"message_type"},
	)

	SummaryCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_summary_cache_total",
			Help: "Summary cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cold_message_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cold_message_rate_limited_total",
			Help: "Number of requests rejected by the rate limiter",
		},
		[]string{"method", "path"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Cache result labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
