// Package metrics provides internal metrics collection for the demo server.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector bundles the Prometheus collectors the A2A server records into.
type Collector struct {
	rpcRequestsTotal   *prometheus.CounterVec
	rpcRequestDuration *prometheus.HistogramVec
	tasksActive        prometheus.Gauge
	tasksTotal         *prometheus.CounterVec
	streamEventsTotal  *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector registers the a2aflow collectors under the given namespace.
// Collectors are registered with promauto, so a namespace must not be reused
// within one process.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Total number of JSON-RPC requests by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	c.rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "JSON-RPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	c.tasksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Number of tasks currently in a non-terminal state",
		},
	)

	c.tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Total number of tasks by final state",
		},
		[]string{"state"},
	)

	c.streamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Total number of server-sent stream events by kind",
		},
		[]string{"kind"},
	)

	return c
}

// RecordRPC records one JSON-RPC request.
func (c *Collector) RecordRPC(method, outcome string, duration time.Duration) {
	c.rpcRequestsTotal.WithLabelValues(method, outcome).Inc()
	c.rpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// TaskStarted marks one task as active.
func (c *Collector) TaskStarted() {
	c.tasksActive.Inc()
}

// TaskFinished marks one task as finished in the given state.
func (c *Collector) TaskFinished(state string) {
	c.tasksActive.Dec()
	c.tasksTotal.WithLabelValues(state).Inc()
}

// RecordStreamEvent records one server-sent event.
func (c *Collector) RecordStreamEvent(kind string) {
	c.streamEventsTotal.WithLabelValues(kind).Inc()
}
