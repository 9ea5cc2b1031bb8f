// Package metrics exposes application metrics collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// statusOf maps an error to the status label value.
func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Count of block events a subscriber missed because its backlog was full.",
	})

	eventsSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Number of active block event subscribers.",
	})
)

// Events tracks metrics for block event delivery.
type Events struct{}

// NewEvents constructs an Events recorder.
func NewEvents() Events {
	return Events{}
}

// ObserveSend records how many subscribers missed an event.
func (Events) ObserveSend(dropped int) {
	eventsDroppedTotal.Add(float64(dropped))
}

// SetSubscribers records the number of active subscribers.
func (Events) SetSubscribers(n int) {
	eventsSubscribers.Set(float64(n))
}
