package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts profile lookups by outcome.
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coauthor_lookups_total",
			Help: "Total number of profile lookups",
		},
		[]string{"outcome"},
	)

	// LookupDuration tracks profile lookup duration in seconds.
	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coauthor_lookup_duration_seconds",
			Help:    "Profile lookup duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	// RosterSize tracks the number of entries currently in the roster.
	RosterSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coauthor_roster_size",
			Help: "Number of entries currently in the roster",
		},
	)

	// AutoExpired counts entries removed automatically after a transport error.
	AutoExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coauthor_entries_auto_expired_total",
			Help: "Total number of entries auto-removed after a transport error",
		},
	)

	// CacheLookups counts profile cache lookups by result (hit or miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coauthor_profile_cache_lookups_total",
			Help: "Total number of profile cache lookups",
		},
		[]string{"result"},
	)

	// HTTPRequests counts total HTTP requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coauthor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request duration.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coauthor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)
