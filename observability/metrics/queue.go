package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type QueueMetrics struct {
	pushed      *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	merged      prometheus.Counter
	queueLength prometheus.Gauge
	poppedForBlock prometheus.Counter
}

var (
	queueOnce     sync.Once
	queueRegistry *QueueMetrics
)

func Queue() *QueueMetrics {
	queueOnce.Do(func() {
		queueRegistry = &QueueMetrics{
			pushed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "mempool_transactions_pushed_total",
				Help: "Count of transactions accepted into the queue.",
			}, []string{"authority_domain"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "mempool_transactions_rejected_total",
				Help: "Count of transactions rejected at admission, by error kind.",
			}, []string{"kind"}),
			merged: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "mempool_duplicate_signatures_merged_total",
				Help: "Count of duplicate-hash submissions merged into an already-queued transaction.",
			}),
			queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "mempool_queue_length",
				Help: "Current number of transactions held in the queue.",
			}),
			poppedForBlock: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "mempool_transactions_popped_for_block_total",
				Help: "Count of transactions handed to a block builder.",
			}),
		}
		prometheus.MustRegister(
			queueRegistry.pushed,
			queueRegistry.rejected,
			queueRegistry.merged,
			queueRegistry.queueLength,
			queueRegistry.poppedForBlock,
		)
	})
	return queueRegistry
}

func (m *QueueMetrics) ObservePushed(authorityDomain string) {
	if m == nil {
		return
	}
	m.pushed.WithLabelValues(authorityDomain).Inc()
}

func (m *QueueMetrics) ObserveRejected(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.rejected.WithLabelValues(kind).Inc()
}

func (m *QueueMetrics) IncMerged() {
	if m == nil {
		return
	}
	m.merged.Inc()
}

func (m *QueueMetrics) SetQueueLength(n float64) {
	if m == nil {
		return
	}
	m.queueLength.Set(n)
}

func (m *QueueMetrics) IncPoppedForBlock(n float64) {
	if m == nil {
		return
	}
	m.poppedForBlock.Add(n)
}
