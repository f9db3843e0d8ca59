// Package metrics provides Prometheus-backed observability for driver RPC
// calls and sign operations. Generalized from the teacher chainadapter's
// hand-rolled PrometheusMetrics text exporter to real client_golang
// counters/histograms, per SPEC_FULL.md §9.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DriverMetrics records RPC and signing operation metrics for one driver
// instance, labeled by chain id.
type DriverMetrics struct {
	rpcCalls     *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	signCalls    *prometheus.CounterVec
	signDuration *prometheus.HistogramVec
}

// NewDriverMetrics registers a fresh set of collectors on reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with a process-wide
// default registry.
func NewDriverMetrics(reg prometheus.Registerer) *DriverMetrics {
	m := &DriverMetrics{
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vladiator_driver_rpc_calls_total",
			Help: "Total RPC calls made by a chain driver.",
		}, []string{"chain_id", "method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vladiator_driver_rpc_duration_seconds",
			Help:    "Duration of chain driver RPC calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain_id", "method"}),
		signCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vladiator_driver_sign_calls_total",
			Help: "Total signing operations performed by a chain driver.",
		}, []string{"chain_id", "status"}),
		signDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vladiator_driver_sign_duration_seconds",
			Help:    "Duration of chain driver signing operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain_id"}),
	}
	reg.MustRegister(m.rpcCalls, m.rpcDuration, m.signCalls, m.signDuration)
	return m
}

// RecordRPC records one RPC call outcome.
func (m *DriverMetrics) RecordRPC(chainID, method string, d time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.rpcCalls.WithLabelValues(chainID, method, status).Inc()
	m.rpcDuration.WithLabelValues(chainID, method).Observe(d.Seconds())
}

// RecordSign records one signing operation outcome.
func (m *DriverMetrics) RecordSign(chainID string, d time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.signCalls.WithLabelValues(chainID, status).Inc()
	m.signDuration.WithLabelValues(chainID).Observe(d.Seconds())
}
