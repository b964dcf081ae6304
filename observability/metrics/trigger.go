package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type TriggerMetrics struct {
	fired     prometheus.Counter
	failed    *prometheus.CounterVec
	exhausted prometheus.Counter
	active    prometheus.Gauge
}

var (
	triggerOnce     sync.Once
	triggerRegistry *TriggerMetrics
)

func Trigger() *TriggerMetrics {
	triggerOnce.Do(func() {
		triggerRegistry = &TriggerMetrics{
			fired: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "trigger_fired_total",
				Help: "Count of trigger actions that executed successfully.",
			}),
			failed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "trigger_failed_total",
				Help: "Count of trigger actions that failed, by error kind.",
			}, []string{"kind"}),
			exhausted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "trigger_exhausted_total",
				Help: "Count of triggers removed after reaching their repeat limit.",
			}),
			active: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "trigger_active",
				Help: "Current number of registered, non-exhausted triggers.",
			}),
		}
		prometheus.MustRegister(
			triggerRegistry.fired,
			triggerRegistry.failed,
			triggerRegistry.exhausted,
			triggerRegistry.active,
		)
	})
	return triggerRegistry
}

func (m *TriggerMetrics) IncFired() {
	if m == nil {
		return
	}
	m.fired.Inc()
}

func (m *TriggerMetrics) ObserveFailed(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.failed.WithLabelValues(kind).Inc()
}

func (m *TriggerMetrics) IncExhausted() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}

func (m *TriggerMetrics) SetActive(n float64) {
	if m == nil {
		return
	}
	m.active.Set(n)
}
