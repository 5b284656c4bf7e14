package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics on a private registry, so several collectors
// can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	AICalls          *prometheus.CounterVec
	LocationRequests *prometheus.CounterVec
	FollowToggles    *prometheus.CounterVec
	SnapshotFailures *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "AI tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		LocationRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "location_requests_total",
				Help:      "Location requests by outcome",
			},
			[]string{"outcome"},
		),
		FollowToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "follow_toggles_total",
				Help:      "Follow toggles by resulting state",
			},
			[]string{"state"},
		),
		SnapshotFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_write_failures_total",
				Help:      "Failed snapshot writes by key",
			},
			[]string{"key"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.AICalls,
		c.LocationRequests,
		c.FollowToggles,
		c.SnapshotFailures,
	)
	return c
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveAI(tool, outcome string) {
	c.AICalls.WithLabelValues(tool, outcome).Inc()
}

func (c *Collector) ObserveLocation(outcome string) {
	c.LocationRequests.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveFollowToggle(following bool) {
	state := "unfollowed"
	if following {
		state = "followed"
	}
	c.FollowToggles.WithLabelValues(state).Inc()
}

func (c *Collector) ObserveSnapshotFailure(key string) {
	c.SnapshotFailures.WithLabelValues(key).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
