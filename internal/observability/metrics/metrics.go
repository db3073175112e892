package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelStatus   = "status"
	LabelMethod   = "method"
	LabelRoute    = "route"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
	LabelForm     = "form"
	LabelDriver   = "driver"
	LabelSuccess  = "success"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsnext_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whatsnext_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// AuthenticationTotal counts auth gate passes and rejections by outcome
	AuthenticationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsnext_authentication_total",
			Help: "Total number of authentication attempts",
		},
		[]string{LabelProvider, LabelOutcome},
	)

	// ValidationFailuresTotal counts rejected signup/login forms
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsnext_validation_failures_total",
			Help: "Total number of request bodies rejected by validation",
		},
		[]string{LabelForm},
	)

	// ImageUploadsTotal counts profile image uploads by storage driver
	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsnext_image_uploads_total",
			Help: "Total number of profile image uploads",
		},
		[]string{LabelDriver, LabelSuccess},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request. route is the route template, not the raw path.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthentication records an auth gate outcome ("ok" or the rejection kind)
func (c *Collector) RecordAuthentication(provider, outcome string) {
	AuthenticationTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordValidationFailure records a rejected form
func (c *Collector) RecordValidationFailure(form string) {
	ValidationFailuresTotal.WithLabelValues(form).Inc()
}

// RecordImageUpload records an upload attempt
func (c *Collector) RecordImageUpload(driver string, success bool) {
	ImageUploadsTotal.WithLabelValues(driver, boolToString(success)).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
