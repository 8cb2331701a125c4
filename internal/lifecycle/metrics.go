package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExitsTriggeredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "lifecycle",
		Name:      "exits_triggered_total",
		Help:      "Position exits by trigger",
	}, []string{"trigger"})

	ExitsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "lifecycle",
		Name:      "exits_failed_total",
		Help:      "Exit orders the gateway refused",
	})

	CheckDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyedge",
		Subsystem: "lifecycle",
		Name:      "check_duration_seconds",
		Help:      "Wall time of a full open-position walk",
		Buckets:   prometheus.DefBuckets,
	})
)
