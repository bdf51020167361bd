package observe

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagewatch",
			Subsystem: "observe",
			Name:      "events_total",
			Help:      "Events handled, by outcome",
		},
		[]string{"outcome"},
	)

	suppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagewatch",
			Subsystem: "observe",
			Name:      "suppressed_total",
			Help:      "Events suppressed, by rule",
		},
		[]string{"rule"},
	)

	leakedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagewatch",
			Subsystem: "observe",
			Name:      "leaked_listeners_total",
			Help:      "Subscriptions found still registered at the start of a run",
		},
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, suppressedTotal, leakedTotal)
}
