package forecast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupDurationSeconds tracks provider call latency by endpoint.
	LookupDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyedge_forecast_lookup_duration_seconds",
			Help:    "Duration of forecast provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// LookupMissesTotal counts unresolvable lookups by endpoint.
	LookupMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_forecast_lookup_misses_total",
			Help: "Total number of unresolvable forecast lookups",
		},
		[]string{"endpoint"},
	)
)
