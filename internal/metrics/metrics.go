// Package metrics exposes the daemon's prometheus counters: swap outcomes,
// offer lifecycle, and worker process counts.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SwapsInitialized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "farcasterd",
		Name:      "swaps_initialized_total",
		Help:      "Total number of swaps that reached SwapLaunched.",
	})

	SwapOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farcasterd",
		Name:      "swap_outcomes_total",
		Help:      "Total number of swaps by terminal outcome.",
	}, []string{"outcome"})

	OffersOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "farcasterd",
		Name:      "offers_open",
		Help:      "Number of currently open public offers.",
	})

	WorkersRunning = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "farcasterd",
		Name:      "workers_running",
		Help:      "Number of currently running worker processes by kind.",
	}, []string{"kind"})
)

// Register adds every collector to reg. Called once at daemon boot.
func Register(reg *prometheus.Registry) {
	reg.MustRegister(SwapsInitialized, SwapOutcomes, OffersOpen, WorkersRunning)
}
