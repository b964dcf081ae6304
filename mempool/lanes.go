package mempool

import (
	"sync"

	"github.com/satu-n/iroha/core/types"
)

// LaneScheduler assigns each queued hash to its authority's lane and, when
// the pop algorithm yields a batch, interleaves lanes round-robin so one
// high-volume authority cannot starve the rest of a block's candidate set:
// per-sender classification feeding a round-robin scheduler, generalized
// from fee-based lanes to authority-based lanes since this ledger has no
// transaction fee concept.
type LaneScheduler struct {
	mu    sync.Mutex
	lane  map[string]types.AccountId // hash -> authority
}

func NewLaneScheduler() *LaneScheduler {
	return &LaneScheduler{lane: map[string]types.AccountId{}}
}

// Track records which authority a newly-admitted hash belongs to.
func (l *LaneScheduler) Track(hash string, authority types.AccountId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lane[hash] = authority
}

// Forget drops a hash's lane assignment once it leaves the queue for good.
func (l *LaneScheduler) Forget(hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lane, hash)
}

// Reorder interleaves txs round-robin by authority lane, preserving each
// lane's internal (queue) order. A transaction whose hash has no tracked
// lane (should not happen in practice) keeps its relative position at the
// end.
func (l *LaneScheduler) Reorder(txs []*types.SignedTransaction) []*types.SignedTransaction {
	if len(txs) <= 1 {
		return txs
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	order := make([]types.AccountId, 0)
	byLane := map[types.AccountId][]*types.SignedTransaction{}
	var unlaned []*types.SignedTransaction
	for _, tx := range txs {
		authority, ok := l.lane[tx.Hash.String()]
		if !ok {
			unlaned = append(unlaned, tx)
			continue
		}
		if _, seen := byLane[authority]; !seen {
			order = append(order, authority)
		}
		byLane[authority] = append(byLane[authority], tx)
	}

	out := make([]*types.SignedTransaction, 0, len(txs))
	for {
		progressed := false
		for _, authority := range order {
			lane := byLane[authority]
			if len(lane) == 0 {
				continue
			}
			out = append(out, lane[0])
			byLane[authority] = lane[1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return append(out, unlaned...)
}
