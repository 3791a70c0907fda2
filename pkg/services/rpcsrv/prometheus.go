package rpcsrv

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of RPC calls by method",
			Name:      "rpc_calls_total",
			Namespace: "mintreveal",
		},
		[]string{"method"},
	)
	rpcTimes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC call handling time",
			Name:      "rpc_call_time_seconds",
			Namespace: "mintreveal",
		},
		[]string{"method"},
	)
)

func addReqTimeMetric(name string, t time.Duration) {
	if _, ok := rpcHandlers[name]; !ok {
		name = "unknown"
	}
	rpcTimes.WithLabelValues(name).Observe(t.Seconds())
	rpcCounter.WithLabelValues(name).Inc()
}

func init() {
	prometheus.MustRegister(rpcCounter, rpcTimes)
}
