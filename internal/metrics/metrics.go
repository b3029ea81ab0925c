package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/3dmm/site/internal/event"
)

var (
	// HTTPRequestDuration is request latency in seconds by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// StoreOperationDuration is document store latency in seconds.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"backend", "operation", "collection"},
	)

	// ContactSubmissions counts contact form outcomes.
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_contact_submissions_total",
			Help: "Contact form submissions by result",
		},
		[]string{"result"}, // result: accepted, invalid, failed, rate_limited
	)

	// NewsletterUpserts counts newsletter opt-ins.
	NewsletterUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_newsletter_upserts_total",
			Help: "Newsletter subscriber upserts by outcome",
		},
		[]string{"outcome"}, // outcome: created, updated
	)

	// ViewerBoundsFetches counts point-cloud metadata fetches.
	ViewerBoundsFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_viewer_bounds_fetch_total",
			Help: "Point-cloud metadata fetches by result",
		},
		[]string{"result"}, // result: ok, fallback
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// ObserveStore records the latency of a store operation started at start.
func ObserveStore(backend, operation, collection string, start time.Time) {
	StoreOperationDuration.WithLabelValues(backend, operation, collection).Observe(time.Since(start).Seconds())
}

// IncContact increments the contact submission counter.
func IncContact(result string) {
	ContactSubmissions.WithLabelValues(result).Inc()
}

// ContactSubmitted counts a stored submission. It is subscribed to the
// contact event bus.
func ContactSubmitted(_ context.Context, _ event.ContactSubmitted) {
	IncContact("accepted")
}

// IncNewsletter increments the newsletter upsert counter.
func IncNewsletter(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	NewsletterUpserts.WithLabelValues(outcome).Inc()
}

// IncViewerBounds increments the metadata fetch counter.
func IncViewerBounds(result string) {
	ViewerBoundsFetches.WithLabelValues(result).Inc()
}
