package core

import (
	"github.com/lobsterdao/mintreveal/pkg/core/state"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// claimsAccepted prometheus metric.
	claimsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of accepted claims by claim path",
			Name:      "claims_accepted_total",
			Namespace: "mintreveal",
		},
		[]string{"path"},
	)
	// unitsMinted prometheus metric.
	unitsMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of units minted by claim path",
			Name:      "units_minted_total",
			Namespace: "mintreveal",
		},
		[]string{"path"},
	)
	// callsRejected prometheus metric.
	callsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of rejected ledger calls by operation and reason",
			Name:      "calls_rejected_total",
			Namespace: "mintreveal",
		},
		[]string{"operation", "reason"},
	)
	// totalMinted prometheus metric.
	totalMinted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current number of minted units",
			Name:      "total_minted",
			Namespace: "mintreveal",
		},
	)
	// seedStatus prometheus metric.
	seedStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Randomness request status (0 unrequested, 1 requested, 2 fulfilled)",
			Name:      "seed_status",
			Namespace: "mintreveal",
		},
	)
)

func init() {
	prometheus.MustRegister(
		claimsAccepted,
		unitsMinted,
		callsRejected,
		totalMinted,
		seedStatus,
	)
}

func updateClaimMetrics(path string, minted int, total uint64) {
	claimsAccepted.WithLabelValues(path).Inc()
	unitsMinted.WithLabelValues(path).Add(float64(minted))
	totalMinted.Set(float64(total))
}

func updateRejectedMetric(operation string, err error) {
	callsRejected.WithLabelValues(operation, ErrorKind(err)).Inc()
}

func updateSeedMetric(s state.SeedStatus) {
	seedStatus.Set(float64(s))
}
