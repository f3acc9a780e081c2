package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SwapsSubmitted counts transactions broadcast by the swap pipeline.
	SwapsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trader_swaps_submitted_total",
		Help: "Number of swap transactions broadcast to the network.",
	})

	// SwapsConfirmed counts swaps that reached one confirmation with success
	// status.
	SwapsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trader_swaps_confirmed_total",
		Help: "Number of swap transactions confirmed with on-chain success.",
	})

	// SwapsFailed counts swaps that reverted on chain or timed out pending.
	SwapsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trader_swaps_failed_total",
		Help: "Number of swap transactions that reverted or timed out.",
	})

	// TransfersSubmitted counts native and token sends broadcast.
	TransfersSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trader_transfers_submitted_total",
		Help: "Number of transfer transactions broadcast to the network.",
	})

	// ScanDuration observes wall time of full wallet scans, labeled by
	// network.
	ScanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trader_scan_duration_seconds",
		Help:    "Duration of full wallet token scans.",
		Buckets: prometheus.DefBuckets,
	}, []string{"network"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trader_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		SwapsSubmitted,
		SwapsConfirmed,
		SwapsFailed,
		TransfersSubmitted,
		ScanDuration,
		RequestDuration,
	)
}
