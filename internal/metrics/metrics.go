package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QAQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_queries_total",
			Help: "Total number of assistant queries by detected intent",
		},
		[]string{"intent"},
	)

	QAFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_fallback_total",
			Help: "Total number of answers synthesized because market data was unavailable",
		},
		[]string{"handler"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of market data provider requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_clients",
			Help: "Number of connected price stream clients",
		},
	)
)
