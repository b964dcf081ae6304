package ledgererr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/ledgererr"
)

func TestIsFollowsWrapChain(t *testing.T) {
	inner := ledgererr.New(ledgererr.KindNotFound, "missing account %s", "alice")
	outer := ledgererr.Wrap(ledgererr.KindDecode, inner)

	require.True(t, ledgererr.Is(outer, ledgererr.KindDecode))
	require.True(t, ledgererr.Is(outer, ledgererr.KindNotFound))
	require.False(t, ledgererr.Is(outer, ledgererr.KindExpired))
}

func TestIsStopsAtNonLedgerError(t *testing.T) {
	wrapped := ledgererr.Wrap(ledgererr.KindDecode, errors.New("plain cause"))
	require.True(t, ledgererr.Is(wrapped, ledgererr.KindDecode))
	require.False(t, ledgererr.Is(wrapped, ledgererr.KindNotFound))
}

func TestKindOf(t *testing.T) {
	require.Equal(t, ledgererr.KindNotFound, ledgererr.KindOf(ledgererr.New(ledgererr.KindNotFound, "x")))
	require.Equal(t, ledgererr.KindUnknown, ledgererr.KindOf(errors.New("not a ledger error")))
	require.Equal(t, ledgererr.KindUnknown, ledgererr.KindOf(nil))
}

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	err := ledgererr.New(ledgererr.KindFull, "queue at %d", 512)
	require.Equal(t, "Full: queue at 512", err.Error())

	bare := &ledgererr.Error{Kind: ledgererr.KindExpired}
	require.Equal(t, "Expired", bare.Error())
}

func TestDispositionOf(t *testing.T) {
	cases := map[ledgererr.Kind]ledgererr.Disposition{
		ledgererr.KindSignatureCondition: ledgererr.DispositionQueueReject,
		ledgererr.KindExpired:            ledgererr.DispositionQueueReject,
		ledgererr.KindInFuture:           ledgererr.DispositionQueueReject,
		ledgererr.KindInBlockchain:       ledgererr.DispositionQueueReject,
		ledgererr.KindFull:               ledgererr.DispositionQueueReject,
		ledgererr.KindInitialization:     ledgererr.DispositionFatal,
		ledgererr.KindNotPermitted:       ledgererr.DispositionTxReject,
		ledgererr.KindNotFound:           ledgererr.DispositionTxReject,
	}
	for kind, want := range cases {
		require.Equal(t, want, ledgererr.DispositionOf(kind), "kind %s", kind)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := ledgererr.Wrap(ledgererr.KindHostExecution, cause)
	require.Equal(t, cause, errors.Unwrap(err))
}
