// Package ledgererr defines the closed set of error kinds the ledger core
// raises, and how each is disposed of by the queue, the dispatcher, and the
// block pipeline. Every error the rest of this module returns across a
// component boundary (queue admission, instruction dispatch, WASM
// execution) wraps one of these kinds so a caller can branch on Kind
// without string-matching a message.
package ledgererr

import "fmt"

// Kind is the closed enum of error categories a caller branches on.
type Kind string

const (
	// KindSignatureCondition means an account's multisig policy was not
	// satisfied by the signatures presented.
	KindSignatureCondition Kind = "SignatureCondition"
	// KindExpired means a transaction's TTL elapsed before it committed.
	KindExpired Kind = "Expired"
	// KindInFuture means a transaction's timestamp is further ahead of the
	// admitting node's clock than the configured future threshold.
	KindInFuture Kind = "InFuture"
	// KindInBlockchain means a transaction with this hash already committed.
	KindInBlockchain Kind = "InBlockchain"
	// KindFull means the queue is at capacity.
	KindFull Kind = "Full"
	// KindNotPermitted means the executor denied the action.
	KindNotPermitted Kind = "NotPermitted"
	// KindTooComplex means a transaction exceeded the instruction-count cap.
	KindTooComplex Kind = "TooComplex"
	// KindNumericOverflow means an asset arithmetic operation would
	// overflow its definition's bound or go negative.
	KindNumericOverflow Kind = "NumericOverflow"
	// KindNotFound means an instruction or query referenced a missing
	// entity.
	KindNotFound Kind = "NotFound"
	// KindExecutionLimitsExceeded means a WASM contract ran out of fuel,
	// exceeded its memory limit, or hit a resource trap (stack overflow,
	// out-of-bounds memory or table access, null indirect call, interrupt).
	KindExecutionLimitsExceeded Kind = "ExecutionLimitsExceeded"
	// KindDecode means a host↔guest ABI payload was malformed.
	KindDecode Kind = "Decode"
	// KindInitialization means engine or linker setup failed; this is the
	// one kind that is fatal to the validator rather than being converted
	// to a per-transaction rejection.
	KindInitialization Kind = "Initialization"
	// KindMandatoryExport means a WASM module is missing a required export.
	KindMandatoryExport Kind = "MandatoryExport"
	// KindHostExecution means a WASM call failed with any wasmtime error
	// other than the resource traps above, including a failure inside a
	// host callback; it is reported as a contract failure.
	KindHostExecution Kind = "HostExecution"
	// KindUnknown labels an error that did not originate as an *Error —
	// used only for logging and metrics, never raised directly.
	KindUnknown Kind = "Unknown"
)

// Disposition says what layer acts on an error of a given kind and how.
type Disposition string

const (
	// DispositionQueueReject means the queue refuses admission; the
	// transaction is never queued.
	DispositionQueueReject Disposition = "queue-reject"
	// DispositionTxReject means a block's candidate set included the
	// transaction but it failed during application; the block still
	// commits, with the rejection recorded against the transaction.
	DispositionTxReject Disposition = "tx-reject"
	// DispositionFatal means the error is fatal to the validator process;
	// it is never converted into a rejection.
	DispositionFatal Disposition = "fatal"
)

// DispositionOf reports how the ledger disposes of an error of kind k.
func DispositionOf(k Kind) Disposition {
	switch k {
	case KindSignatureCondition, KindExpired, KindInFuture, KindInBlockchain, KindFull:
		return DispositionQueueReject
	case KindInitialization:
		return DispositionFatal
	default:
		return DispositionTxReject
	}
}

// Error wraps a Kind with a human-readable cause, following an
// "error kinds, not type names" design: callers branch on Kind, messages
// are for logs and clients only.
type Error struct {
	Kind  Kind
	Cause error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Cause: err}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err carries kind k, following the wrap chain.
func Is(err error, k Kind) bool {
	var le *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			le = e
			if le.Kind == k {
				return true
			}
			err = le.Cause
			continue
		}
		break
	}
	return false
}

// KindOf returns the outermost Kind carried by err, or KindUnknown if err is
// nil or not a *Error. Intended for logging and metrics labels, never for
// control flow — use Is for that.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}
