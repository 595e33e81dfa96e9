package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentibot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	IntentsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibot_intents_detected_total",
			Help: "User utterances answered, by detected intent and reply source",
		},
		[]string{"intent", "source"},
	)

	SentimentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibot_sentiment_requests_total",
			Help: "Sentiment averages computed, by source",
		},
		[]string{"source"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibot_auth_attempts_total",
			Help: "Login and registration attempts",
		},
		[]string{"action", "provider", "outcome"},
	)
)
