// Package mempool implements the transaction queue: a multi-producer,
// single-consumer admission buffer that the block builder drains through
// get_transactions_for_block, including a duplicate-hash signature-merge
// rule for transactions resubmitted with additional signatures.
package mempool

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/observability/metrics"
)

// SignatureChecker validates a transaction's multisig policy against the
// current WSV, implemented by package executor.
type SignatureChecker interface {
	CheckSignatureCondition(view state.Snapshot, tx *types.SignedTransaction) error
}

// Queue is the MPSC admission buffer. A bounded ring of hashes (guarded by
// a mutex, standing in for the lock-free ring the original implementation
// uses — see DESIGN.md) is paired with a concurrent hash map from hash to
// the accepted transaction, giving an "eventually consistent under
// concurrent push/pop" data structure pairing.
type Queue struct {
	mu          sync.Mutex
	ring        *deque.Deque[string]
	maxInQueue  int
	maxInBlock  int
	ttl         time.Duration
	future      time.Duration
	txs         cmap.ConcurrentMap[string, *types.SignedTransaction]
	checker     SignatureChecker
	ledgerSeen  func(hash string) bool
	lanes       *LaneScheduler
}

// Config bundles the admission limits drawn from state.Parameters.
type Config struct {
	MaxInQueue int
	MaxInBlock int
	TTL        time.Duration
	Future     time.Duration
}

// NewQueue constructs an empty queue. ledgerSeen reports whether a hash has
// already committed to the ledger (InBlockchain admission check); it is
// supplied by the caller so the queue package never imports block storage.
func NewQueue(cfg Config, checker SignatureChecker, ledgerSeen func(hash string) bool) *Queue {
	return &Queue{
		ring:       deque.New[string](),
		maxInQueue: cfg.MaxInQueue,
		maxInBlock: cfg.MaxInBlock,
		ttl:        cfg.TTL,
		future:     cfg.Future,
		txs:        cmap.New[*types.SignedTransaction](),
		checker:    checker,
		ledgerSeen: ledgerSeen,
		lanes:      NewLaneScheduler(),
	}
}

// Push runs the admission checks in order: future-timestamp, expiry,
// already-committed, then signature condition. On a duplicate hash it
// merges the incoming signature set into the already-queued entry instead
// of rejecting it, and does not grow the ring.
func (q *Queue) Push(now time.Time, view state.Snapshot, tx *types.SignedTransaction) error {
	reject := func(kind ledgererr.Kind, err error) error {
		metrics.Queue().ObserveRejected(string(kind))
		return err
	}
	if tx.Payload.CreatedAt.After(now.Add(q.future)) {
		return reject(ledgererr.KindInFuture, ledgererr.New(ledgererr.KindInFuture, "mempool: transaction timestamp too far in the future"))
	}
	if tx.Expired(now, q.ttl) {
		return reject(ledgererr.KindExpired, ledgererr.New(ledgererr.KindExpired, "mempool: transaction already expired"))
	}
	hash := tx.Hash.String()
	if q.ledgerSeen(hash) {
		return reject(ledgererr.KindInBlockchain, ledgererr.New(ledgererr.KindInBlockchain, "mempool: transaction %s already committed", hash))
	}
	if err := q.checker.CheckSignatureCondition(view, tx); err != nil {
		return reject(ledgererr.KindSignatureCondition, ledgererr.Wrap(ledgererr.KindSignatureCondition, err))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.txs.Count() >= q.maxInQueue {
		return reject(ledgererr.KindFull, ledgererr.New(ledgererr.KindFull, "mempool: queue is full"))
	}

	if existing, ok := q.txs.Get(hash); ok {
		for _, sig := range tx.Signatures {
			existing.AddSignature(sig)
		}
		metrics.Queue().IncMerged()
		return nil
	}

	q.txs.Set(hash, tx)
	q.ring.PushBack(hash)
	q.lanes.Track(hash, tx.Payload.Authority)
	metrics.Queue().ObservePushed(tx.Payload.Authority.Domain.String())
	metrics.Queue().SetQueueLength(float64(q.txs.Count()))
	return nil
}

// GetTransactionsForBlock runs the pop algorithm: it drains
// up to maxInBlock eligible hashes, skipping expired or already-committed
// entries (removing them) and re-signature-failing entries (keeping them
// for later), then re-pushes every hash it kept — signature-failing and
// yielded alike, since a yielded transaction stays queued until it is seen
// as committed — so fairness is preserved across builder invocations. Must not be called concurrently
// with itself — the queue enforces a single-consumer discipline by
// contract, not by the ring structure.
func (q *Queue) GetTransactionsForBlock(now time.Time, view state.Snapshot) []*types.SignedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()

	var yielded []*types.SignedTransaction
	var seenNotYielded []string

	for q.ring.Len() > 0 && len(yielded) < q.maxInBlock {
		hash := q.ring.PopFront()
		tx, ok := q.txs.Get(hash)
		if !ok {
			continue
		}
		if tx.Expired(now, q.ttl) || q.ledgerSeen(hash) {
			q.txs.Remove(hash)
			q.lanes.Forget(hash)
			continue
		}
		if err := q.checker.CheckSignatureCondition(view, tx); err != nil {
			seenNotYielded = append(seenNotYielded, hash)
			continue
		}
		seenNotYielded = append(seenNotYielded, hash)
		yielded = append(yielded, tx)
	}

	for _, hash := range seenNotYielded {
		q.ring.PushBack(hash)
	}
	out := q.lanes.Reorder(yielded)
	metrics.Queue().IncPoppedForBlock(float64(len(out)))
	metrics.Queue().SetQueueLength(float64(q.txs.Count()))
	return out
}

// Len reports the number of transactions currently tracked.
func (q *Queue) Len() int {
	return q.txs.Count()
}

// AllTransactions returns every currently tracked transaction, in no
// particular order.
func (q *Queue) AllTransactions() []*types.SignedTransaction {
	out := make([]*types.SignedTransaction, 0, q.txs.Count())
	for item := range q.txs.IterBuffered() {
		out = append(out, item.Val)
	}
	return out
}

// NRandomTransactions returns up to n tracked transactions, in map
// iteration order (which Go does not guarantee to be stable or uniform,
// but is sufficient for the sampling use this serves: MST gossip seeding).
func (q *Queue) NRandomTransactions(n int) []*types.SignedTransaction {
	out := make([]*types.SignedTransaction, 0, n)
	for item := range q.txs.IterBuffered() {
		if len(out) >= n {
			break
		}
		out = append(out, item.Val)
	}
	return out
}
