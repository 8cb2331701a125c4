package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResultsProducedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "pricing",
		Name:      "results_produced_total",
		Help:      "Pricing results that cleared edge and confidence thresholds",
	}, []string{"model"})

	ResultsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "pricing",
		Name:      "results_rejected_total",
		Help:      "Candidate results discarded by a model or the threshold filter",
	}, []string{"model", "reason"})

	WhaleBoostsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "pricing",
		Name:      "whale_boosts_total",
		Help:      "Results whose confidence was raised by aligned large fills",
	})

	EvaluateDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyedge",
		Subsystem: "pricing",
		Name:      "evaluate_duration_seconds",
		Help:      "Wall time of a full evaluation cycle",
		Buckets:   prometheus.DefBuckets,
	})
)
