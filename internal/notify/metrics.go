package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "notify",
		Name:      "messages_sent_total",
		Help:      "Messages delivered to the approval channel",
	})

	MessagesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "notify",
		Name:      "messages_failed_total",
		Help:      "Messages the approval channel refused",
	})

	CommandsReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyedge",
		Subsystem: "notify",
		Name:      "commands_received_total",
		Help:      "Inbound operator commands by kind",
	}, []string{"kind"})
)
