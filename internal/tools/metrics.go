package tools

import (
	"time"

	"credentialing/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns its own registry so several dispatchers can coexist in one
// process, as they do in tests.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	guards   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credentialing",
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool and outcome kind.",
		}, []string{"tool", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "credentialing",
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		guards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credentialing",
			Name:      "guard_checks_total",
			Help:      "Guard evaluations by target state and verdict.",
		}, []string{"target", "verdict"}),
	}

	m.registry.MustRegister(m.calls, m.duration, m.guards)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeCall(tool string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	m.calls.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) observeGuard(target types.CaseState, result types.GuardResult) {
	if m == nil {
		return
	}
	verdict := "allowed"
	if !result.Allowed {
		verdict = "blocked"
	}
	m.guards.WithLabelValues(string(target), verdict).Inc()
}
