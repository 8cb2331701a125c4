package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallDurationSeconds tracks gateway call latency by endpoint.
	CallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyedge_gateway_call_duration_seconds",
			Help:    "Duration of execution gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CallErrorsTotal counts failed gateway calls by endpoint.
	CallErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_gateway_call_errors_total",
			Help: "Total number of failed gateway calls",
		},
		[]string{"endpoint"},
	)

	// OrdersSubmittedTotal counts accepted orders by side.
	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_gateway_orders_submitted_total",
			Help: "Total number of orders accepted by the gateway",
		},
		[]string{"side"},
	)

	// StreamEventsTotal counts price events consumed from the stream.
	StreamEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_gateway_stream_events_total",
		Help: "Total number of price events consumed from the websocket stream",
	})

	// StreamErrorsTotal counts websocket stream failures.
	StreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_gateway_stream_errors_total",
		Help: "Total number of websocket stream failures",
	})
)
