package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type WasmMetrics struct {
	fuelConsumed prometheus.Histogram
	traps        *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	migrations   *prometheus.CounterVec
}

var (
	wasmOnce     sync.Once
	wasmRegistry *WasmMetrics
)

func Wasm() *WasmMetrics {
	wasmOnce.Do(func() {
		wasmRegistry = &WasmMetrics{
			fuelConsumed: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "wasmhost_fuel_consumed",
				Help:    "Fuel consumed per guest invocation.",
				Buckets: prometheus.ExponentialBuckets(1000, 4, 12),
			}),
			traps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wasmhost_traps_total",
				Help: "Count of guest invocations that ended in a trap, by error kind.",
			}, []string{"kind"}),
			invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wasmhost_invocations_total",
				Help: "Count of entry point invocations, by entry name and outcome.",
			}, []string{"entry", "outcome"}),
			migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "executor_migrations_total",
				Help: "Count of Upgrade-triggered executor migrations, by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			wasmRegistry.fuelConsumed,
			wasmRegistry.traps,
			wasmRegistry.invocations,
			wasmRegistry.migrations,
		)
	})
	return wasmRegistry
}

func (m *WasmMetrics) ObserveFuelConsumed(fuel uint64) {
	if m == nil {
		return
	}
	m.fuelConsumed.Observe(float64(fuel))
}

func (m *WasmMetrics) ObserveTrap(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.traps.WithLabelValues(kind).Inc()
}

func (m *WasmMetrics) ObserveInvocation(entry string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.invocations.WithLabelValues(entry, outcome).Inc()
}

func (m *WasmMetrics) ObserveMigration(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	m.migrations.WithLabelValues(outcome).Inc()
}
