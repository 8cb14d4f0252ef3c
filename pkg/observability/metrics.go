package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/options"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weave"

// Metrics collects editor activity.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	connections   *prometheus.CounterVec
	deletions     *prometheus.CounterVec
	variableOps   *prometheus.CounterVec
	optionFetches *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	editors       prometheus.Gauge
}

// Option configures Metrics.
type Option func(*Metrics)

// WithLogger logs every hook event at Debug level, and failures at Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Metrics) {
		m.logger = logger
	}
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics(opts ...Option) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logging.NewNop(),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connection attempts by outcome (accepted or the rejection reason).",
		}, []string{"result"}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Batch deletions by outcome.",
		}, []string{"result"}),
		variableOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variable_operations_total",
			Help:      "Custom variable mutations by operation and outcome.",
		}, []string{"op", "result"}),
		optionFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "option_fetches_total",
			Help:      "Calls to the options provider by field type and outcome.",
		}, []string{"field_type", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "option_fetch_duration_seconds",
			Help:      "Duration of options provider calls.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"field_type"}),
		editors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editors_active",
			Help:      "Open editor sessions.",
		}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry.MustRegister(
		m.connections, m.deletions, m.variableOps,
		m.optionFetches, m.fetchDuration, m.editors,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle callbacks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnConnection: func(ctx context.Context, e *domain.ConnectionEvent) {
			result := "accepted"
			if e.Reason != "" {
				result = string(e.Reason)
			}
			m.connections.WithLabelValues(result).Inc()
			m.logger.Debug("connection", "workflow", e.WorkflowID, "source", e.Source, "target", e.Target, "result", result)
		},
		OnDeletion: func(ctx context.Context, e *domain.DeletionEvent) {
			result := "deleted"
			if e.Rejected {
				result = "rejected"
			}
			m.deletions.WithLabelValues(result).Inc()
			m.logger.Debug("deletion", "workflow", e.WorkflowID, "nodes", e.NodesRemoved, "edges", e.EdgesRemoved, "result", result)
		},
		OnVariable: func(ctx context.Context, e *domain.VariableEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
				m.logger.Warn("variable operation failed", "op", e.Op, "name", e.Name, "err", e.Err)
			}
			m.variableOps.WithLabelValues(e.Op, result).Inc()
		},
	}
}

// FetchObserver returns a callback for options.WithObserver.
func (m *Metrics) FetchObserver() options.FetchObserver {
	return func(fieldType string, elapsed time.Duration, err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.optionFetches.WithLabelValues(fieldType, result).Inc()
		m.fetchDuration.WithLabelValues(fieldType).Observe(elapsed.Seconds())
	}
}

// EditorOpened and EditorClosed track open sessions.
func (m *Metrics) EditorOpened() { m.editors.Inc() }

func (m *Metrics) EditorClosed() { m.editors.Dec() }
