package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AutoExecutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "auto_executed_total",
		Help:      "Opportunities that cleared every auto-execute threshold",
	})

	TradesEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "trades_enqueued_total",
		Help:      "Opportunities routed to the approval queue",
	})

	TradesAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "trades_accepted_total",
		Help:      "Queued trades accepted by an operator",
	})

	TradesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "trades_rejected_total",
		Help:      "Queued trades rejected by an operator",
	})

	TradesExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "trades_expired_total",
		Help:      "Queued trades dropped after exceeding the pending TTL",
	})

	QueueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "polyedge",
		Subsystem: "gate",
		Name:      "queue_depth",
		Help:      "Live entries in the approval queue",
	})
)
