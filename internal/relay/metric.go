package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var relayedMsgsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "outbox_relayed_messages_total",
		Help: "Number of outbox messages handed to the broker, by topic and result.",
	},
	[]string{"topic", "result"},
)

const (
	resultProduced = "produced"
	resultFailed   = "failed"
)
