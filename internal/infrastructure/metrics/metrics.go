package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MessagesTotal counts relayed queue messages by final outcome
// (delivered, discarded, deferred).
var MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "masterbot",
	Subsystem: "relay",
	Name:      "messages_total",
	Help:      "Queue messages handled by the notification relay, by outcome.",
}, []string{"outcome"})

var Reconnects = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "masterbot",
	Subsystem: "relay",
	Name:      "broker_reconnects_total",
	Help:      "Times the broker connection was re-established after a drop.",
})

var SendFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "masterbot",
	Subsystem: "relay",
	Name:      "send_failures_total",
	Help:      "Failed outbound Telegram sends (each triggers a redelivery).",
})

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
