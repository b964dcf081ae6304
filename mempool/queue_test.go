package mempool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/crypto"
)

type alwaysOK struct{}

func (alwaysOK) CheckSignatureCondition(state.Snapshot, *types.SignedTransaction) error { return nil }

func neverSeen(string) bool { return false }

func sampleTx(t *testing.T, nonce uint32) *types.SignedTransaction {
	t.Helper()
	domain, err := types.NewDomainId("wonderland")
	require.NoError(t, err)
	authority := types.NewAccountId(domain, "alice-key")
	tx := &types.SignedTransaction{
		Payload: types.TransactionPayload{
			Authority: authority,
			CreatedAt: time.Now(),
			Nonce:     nonce,
		},
	}
	tx.Hash = hashOfNonce(nonce)
	return tx
}

func TestQueueOverflow(t *testing.T) {
	q := NewQueue(Config{MaxInQueue: 10, MaxInBlock: 10, TTL: time.Hour, Future: time.Second}, alwaysOK{}, neverSeen)
	view := state.NewManager(state.DefaultParameters()).View()

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Push(time.Now(), view, sampleTx(t, uint32(i))))
	}
	require.Equal(t, 10, q.Len())

	err := q.Push(time.Now(), view, sampleTx(t, 10))
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindFull))
	require.Equal(t, 10, q.Len())
}

// TestQueueFullRejectsDuplicateHashInsteadOfMerging asserts admission checks
// capacity before the duplicate-hash merge branch: a resubmission of an
// already-queued hash must still be rejected with Full once the queue is at
// capacity, not merged in as an exception to the limit.
func TestQueueFullRejectsDuplicateHashInsteadOfMerging(t *testing.T) {
	q := NewQueue(Config{MaxInQueue: 1, MaxInBlock: 10, TTL: time.Hour, Future: time.Second}, alwaysOK{}, neverSeen)
	view := state.NewManager(state.DefaultParameters()).View()

	tx := sampleTx(t, 0)
	tx.Signatures = []types.TransactionSignature{{PublicKey: "a", Signature: []byte("sig-a")}}
	require.NoError(t, q.Push(time.Now(), view, tx))
	require.Equal(t, 1, q.Len())

	dup := sampleTx(t, 0)
	dup.Hash = tx.Hash
	dup.Signatures = []types.TransactionSignature{{PublicKey: "b", Signature: []byte("sig-b")}}
	err := q.Push(time.Now(), view, dup)
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindFull))

	stored, ok := q.txs.Get(tx.Hash.String())
	require.True(t, ok)
	require.Len(t, stored.Signatures, 1, "a full queue must not merge signatures in on a rejected push")
}

func TestPushTwiceMergesSignatures(t *testing.T) {
	q := NewQueue(Config{MaxInQueue: 10, MaxInBlock: 10, TTL: time.Hour, Future: time.Second}, alwaysOK{}, neverSeen)
	view := state.NewManager(state.DefaultParameters()).View()

	tx := sampleTx(t, 0)
	tx.Signatures = []types.TransactionSignature{{PublicKey: "a", Signature: []byte("sig-a")}}
	require.NoError(t, q.Push(time.Now(), view, tx))

	dup := sampleTx(t, 0)
	dup.Hash = tx.Hash
	dup.Signatures = []types.TransactionSignature{{PublicKey: "b", Signature: []byte("sig-b")}}
	require.NoError(t, q.Push(time.Now(), view, dup))

	require.Equal(t, 1, q.Len())
	stored, ok := q.txs.Get(tx.Hash.String())
	require.True(t, ok)
	require.Len(t, stored.Signatures, 2)
}

func TestFutureTimestampRejected(t *testing.T) {
	q := NewQueue(Config{MaxInQueue: 10, MaxInBlock: 10, TTL: time.Hour, Future: time.Second}, alwaysOK{}, neverSeen)
	view := state.NewManager(state.DefaultParameters()).View()

	tx := sampleTx(t, 0)
	tx.Payload.CreatedAt = time.Now().Add(time.Hour)
	err := q.Push(time.Now(), view, tx)
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindInFuture))
}

func TestExpiredNotReturnedAndLengthShrinks(t *testing.T) {
	q := NewQueue(Config{MaxInQueue: 10, MaxInBlock: 10, TTL: time.Millisecond, Future: time.Hour}, alwaysOK{}, neverSeen)
	view := state.NewManager(state.DefaultParameters()).View()

	tx := sampleTx(t, 0)
	tx.Payload.CreatedAt = time.Now().Add(-time.Second)
	require.NoError(t, q.Push(time.Now().Add(-2*time.Second), view, tx))
	require.Equal(t, 1, q.Len())

	batch := q.GetTransactionsForBlock(time.Now(), view)
	require.Empty(t, batch)
	require.Equal(t, 0, q.Len())
}

func hashOfNonce(n uint32) crypto.Hash {
	var h crypto.Hash
	h[0] = byte(n)
	h[1] = byte(n >> 8)
	return h
}
