package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type MultisigMetrics struct {
	registered prometheus.Counter
	proposed   prometheus.Counter
	approved   prometheus.Counter
	executed   prometheus.Counter
	expired    prometheus.Counter
	quorumGap  prometheus.Histogram
}

var (
	multisigOnce     sync.Once
	multisigRegistry *MultisigMetrics
)

func Multisig() *MultisigMetrics {
	multisigOnce.Do(func() {
		multisigRegistry = &MultisigMetrics{
			registered: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "multisig_accounts_registered_total",
				Help: "Count of multisig accounts registered.",
			}),
			proposed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "multisig_proposals_total",
				Help: "Count of instruction batches proposed for multisig approval.",
			}),
			approved: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "multisig_approvals_total",
				Help: "Count of individual approval votes cast.",
			}),
			executed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "multisig_proposals_executed_total",
				Help: "Count of proposals that reached quorum and executed.",
			}),
			expired: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "multisig_proposals_expired_total",
				Help: "Count of proposals removed after their TTL elapsed without quorum.",
			}),
			quorumGap: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "multisig_quorum_gap",
				Help:    "Remaining weight needed to reach quorum at the time each approval was cast.",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			}),
		}
		prometheus.MustRegister(
			multisigRegistry.registered,
			multisigRegistry.proposed,
			multisigRegistry.approved,
			multisigRegistry.executed,
			multisigRegistry.expired,
			multisigRegistry.quorumGap,
		)
	})
	return multisigRegistry
}

func (m *MultisigMetrics) IncRegistered() {
	if m == nil {
		return
	}
	m.registered.Inc()
}

func (m *MultisigMetrics) IncProposed() {
	if m == nil {
		return
	}
	m.proposed.Inc()
}

func (m *MultisigMetrics) IncApproved() {
	if m == nil {
		return
	}
	m.approved.Inc()
}

func (m *MultisigMetrics) IncExecuted() {
	if m == nil {
		return
	}
	m.executed.Inc()
}

func (m *MultisigMetrics) IncExpired() {
	if m == nil {
		return
	}
	m.expired.Inc()
}

func (m *MultisigMetrics) ObserveQuorumGap(remaining float64) {
	if m == nil {
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	m.quorumGap.Observe(remaining)
}
