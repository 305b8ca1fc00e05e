package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the dashboards.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route

	// Price history provider.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	HistoryCache     *prometheus.CounterVec   // labels: result={hit,miss}

	// Crop filter pipeline.
	CropRowsFiltered prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.ProviderRequests,
		m.ProviderDuration,
		m.HistoryCache,
		m.CropRowsFiltered,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_dash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "field_dash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_dash",
			Name:      "provider_requests_total",
			Help:      "Price history provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "field_dash",
			Name:      "provider_request_duration_seconds",
			Help:      "Price history provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		HistoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_dash",
			Name:      "history_cache_total",
			Help:      "History cache lookups by result.",
		}, []string{"result"}),
		CropRowsFiltered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "field_dash",
			Name:      "crop_filtered_rows",
			Help:      "Rows remaining after the crop filter pipeline.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
