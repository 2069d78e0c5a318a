// Package metrics defines the prometheus collectors shared by the HTTP
// layer and the refresh scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_http_request_duration_seconds",
		Help:    "HTTP request duration by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	RefreshCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_refresh_cycles_total",
		Help: "Refresh cycles by outcome (completed, discovery_failed, skipped).",
	}, []string{"outcome"})

	RefreshTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_refresh_tasks_total",
		Help: "Per-location-per-language refresh tasks by outcome.",
	}, []string{"outcome"})

	RefreshCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_refresh_cycle_duration_seconds",
		Help:    "Wall-clock duration of completed refresh cycles.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	DiscoveredLocations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feed_discovered_locations",
		Help: "Location ids found by the last successful discovery.",
	})
)
