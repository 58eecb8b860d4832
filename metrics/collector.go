// Package metrics exposes Prometheus instruments for relay sessions:
// activations, transfers, merged history, turns and tool calls.
//
// A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn status label values.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusConfig = "config_error"
)

// Collector holds the relay instruments.
type Collector struct {
	activationsTotal  *prometheus.CounterVec
	transfersTotal    *prometheus.CounterVec
	mergedItemsTotal  *prometheus.CounterVec
	mergeAnomalies    *prometheus.CounterVec
	turnsTotal        *prometheus.CounterVec
	turnDuration      *prometheus.HistogramVec
	toolCallsTotal    *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	artifactsAttached prometheus.Counter
}

// NewCollector registers the instruments with reg under namespace. A nil reg
// uses prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		activationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_activations_total",
				Help:      "Total number of agent activations",
			},
			[]string{"agent"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_transfers_total",
				Help:      "Total number of handoffs between agents",
			},
			[]string{"from", "to"},
		),
		mergedItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handoff_merged_items_total",
				Help:      "Items copied from the previous agent on activation",
			},
			[]string{"agent"},
		),
		mergeAnomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handoff_merge_anomalies_total",
				Help:      "Malformed items met while merging records",
			},
			[]string{"agent"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_turns_total",
				Help:      "Total number of agent turns",
			},
			[]string{"agent", "status"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_turn_duration_seconds",
				Help:      "Agent turn duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"agent"},
		),
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool calls answered during turns",
			},
			[]string{"agent", "tool", "status"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of open relay sessions",
			},
		),
		artifactsAttached: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_attached_total",
				Help:      "Images attached to sessions",
			},
		),
	}
}

// RecordActivation counts an activation and what its merge imported.
func (c *Collector) RecordActivation(agent string, merged, anomalies int) {
	if c == nil {
		return
	}
	c.activationsTotal.WithLabelValues(agent).Inc()
	c.mergedItemsTotal.WithLabelValues(agent).Add(float64(merged))
	c.mergeAnomalies.WithLabelValues(agent).Add(float64(anomalies))
}

// RecordTransfer counts a handoff. from is empty for the first activation.
func (c *Collector) RecordTransfer(from, to string) {
	if c == nil {
		return
	}
	c.transfersTotal.WithLabelValues(from, to).Inc()
}

// RecordTurn counts a finished turn and observes its duration.
func (c *Collector) RecordTurn(agent, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.turnsTotal.WithLabelValues(agent, status).Inc()
	c.turnDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// RecordToolCall counts one tool response.
func (c *Collector) RecordToolCall(agent, tool string, failed bool) {
	if c == nil {
		return
	}
	status := StatusOK
	if failed {
		status = StatusError
	}
	c.toolCallsTotal.WithLabelValues(agent, tool, status).Inc()
}

// SessionOpened increments the open sessions gauge.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.activeSessions.Inc()
}

// SessionClosed decrements the open sessions gauge.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.activeSessions.Dec()
}

// RecordArtifact counts an attached image.
func (c *Collector) RecordArtifact() {
	if c == nil {
		return
	}
	c.artifactsAttached.Inc()
}
