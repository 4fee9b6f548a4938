// Package metrics holds the Prometheus collectors of the server
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector registered on one registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	completions        *prometheus.CounterVec
	reviews            *prometheus.CounterVec
	ratingRebuilds     *prometheus.CounterVec
	ratingRebuildTime  prometheus.Histogram
	ratingUsers        prometheus.Gauge
	commonPlaces       prometheus.Counter
	notificationErrors prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radruga_mission_completions_total",
			Help: "Mission completion attempts by execution type and outcome.",
		}, []string{"execution_type", "outcome"}),
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radruga_mission_reviews_total",
			Help: "Manual review resolutions by decision.",
		}, []string{"decision"}),
		ratingRebuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radruga_rating_rebuilds_total",
			Help: "Full rating cache rebuilds by trigger.",
		}, []string{"trigger"}),
		ratingRebuildTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "radruga_rating_rebuild_duration_seconds",
			Help:    "Duration of full rating cache rebuilds.",
			Buckets: prometheus.DefBuckets,
		}),
		ratingUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "radruga_rating_users",
			Help: "Users currently held by the rating cache.",
		}),
		commonPlaces: factory.NewCounter(prometheus.CounterOpts{
			Name: "radruga_common_places_approved_total",
			Help: "Common places approved by consensus.",
		}),
		notificationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "radruga_notification_errors_total",
			Help: "Notifications that could not be delivered.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radruga_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radruga_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Completion(executionType, outcome string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(executionType, outcome).Inc()
}

func (m *Metrics) Review(decision string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(decision).Inc()
}

// RatingRebuild records a full rebuild and the resulting cache size
func (m *Metrics) RatingRebuild(trigger string, took time.Duration, users int) {
	if m == nil {
		return
	}
	m.ratingRebuilds.WithLabelValues(trigger).Inc()
	m.ratingRebuildTime.Observe(took.Seconds())
	m.ratingUsers.Set(float64(users))
}

func (m *Metrics) RatingUsers(users int) {
	if m == nil {
		return
	}
	m.ratingUsers.Set(float64(users))
}

func (m *Metrics) CommonPlaceApproved() {
	if m == nil {
		return
	}
	m.commonPlaces.Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationErrors.Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
