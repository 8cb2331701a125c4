package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "app",
		Name:      "scan_cycles_total",
		Help:      "Completed scan cycles",
	})

	CycleFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "app",
		Name:      "scan_cycle_failures_total",
		Help:      "Scan cycles that panicked or lost the market feed",
	})

	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyedge",
		Subsystem: "app",
		Name:      "scan_cycle_duration_seconds",
		Help:      "Wall time of a full scan cycle",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
