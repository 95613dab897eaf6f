package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_total",
			Help: "Catalog snapshot refreshes by result",
		},
		[]string{"result"},
	)

	CatalogFilterResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_filter_results",
			Help:    "Number of properties returned by a filter",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	AdminMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_mutations_total",
			Help: "Admin property mutations by action and result",
		},
		[]string{"action", "result"},
	)

	ContactInquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_inquiries_total",
			Help: "Contact form submissions by result",
		},
		[]string{"result"},
	)

	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Identity events (signed_in, signed_out, refreshed, rejected)",
		},
		[]string{"event"},
	)

	MapSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "map_sessions_active",
			Help: "Map sessions currently held in memory",
		},
	)
)

func RecordMutation(action string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	AdminMutationsTotal.WithLabelValues(action, result).Inc()
}
