package collector

import "github.com/prometheus/client_golang/prometheus"

var (
	runsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pagewatch",
			Subsystem: "collector",
			Name:      "runs_open",
			Help:      "Runs currently open",
		},
	)

	runsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagewatch",
			Subsystem: "collector",
			Name:      "runs_reaped_total",
			Help:      "Runs ended by the idle reaper instead of the runner",
		},
	)
)

func init() {
	prometheus.MustRegister(runsOpen, runsReaped)
}
