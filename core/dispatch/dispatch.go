// Package dispatch implements the instruction and query dispatcher: the
// single path through which every mutation and every read reaches the
// world-state view, mediated by an executor policy on every instruction.
package dispatch

import (
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

// Verdict is the executor's answer to a proposed instruction.
type Verdict struct {
	// Allow, when true, permits the instruction to apply as-is.
	Allow bool
	// ElevatedAuthority, if non-nil, tells the dispatcher to re-run
	// validation and application as if Authority had been this account
	// instead — the mechanism multisig's Approve uses to act as the
	// multisig account rather than the approving signatory.
	ElevatedAuthority *types.AccountId
	// Deny carries the rejection reason when Allow is false.
	Deny *ledgererr.Error
}

// Policy is the executor hook the dispatcher consults before applying any
// instruction. Implementations live in package executor.
type Policy interface {
	// ValidateInstruction is invoked for every instruction before it is
	// applied. When it returns an ElevatedAuthority, the dispatcher invokes
	// it again for the same instruction under that authority.
	ValidateInstruction(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) Verdict
	// ValidateQuery is invoked before a query result is handed back to its
	// caller; it never mutates state.
	ValidateQuery(view state.Snapshot, authority types.AccountId, q types.Query) *ledgererr.Error
	// DecodeCustom turns a Custom(Json) instruction's payload into zero or
	// more concrete instructions to re-dispatch, or an error if the payload
	// is not a custom instruction the executor recognizes.
	DecodeCustom(tx *state.InstrTx, authority types.AccountId, payload []byte) ([]types.Instruction, error)
}

// Dispatcher is the single path through which instructions reach the WSV.
type Dispatcher struct {
	policy Policy
}

func NewDispatcher(policy Policy) *Dispatcher {
	return &Dispatcher{policy: policy}
}

// maxRecursionDepth bounds Custom-instruction and ExecuteTrigger re-entry.
// Inside WASM contracts recursion depth is naturally bounded by fuel, but
// native dispatch has no fuel meter of its own, so a fixed depth cap stands
// in for it here.
const maxRecursionDepth = 64

// Apply runs the full dispatch algorithm for one instruction against tx,
// emitting events for every change and returning the first denial
// encountered. A denial aborts the instruction: the caller (block builder
// or executor) is responsible for discarding tx if Apply is the outermost
// call for this transaction.
func (d *Dispatcher) Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error {
	return d.apply(tx, authority, instr, header, 0)
}

func (d *Dispatcher) apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader, depth int) error {
	if depth > maxRecursionDepth {
		return ledgererr.New(ledgererr.KindTooComplex, "dispatch: recursion depth exceeded")
	}

	verdict := d.policy.ValidateInstruction(tx, authority, instr, header)
	if verdict.ElevatedAuthority != nil {
		return d.apply(tx, *verdict.ElevatedAuthority, instr, header, depth+1)
	}
	if !verdict.Allow {
		if verdict.Deny != nil {
			return verdict.Deny
		}
		return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: denied")
	}

	if instr.Kind == types.InstructionCustom {
		children, err := d.policy.DecodeCustom(tx, authority, instr.CustomPayload)
		if err != nil {
			return ledgererr.Wrap(ledgererr.KindDecode, err)
		}
		for _, child := range children {
			if err := d.apply(tx, authority, child, header, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if instr.Kind == types.InstructionExecuteTrigger {
		return d.applyExecuteTrigger(tx, instr, header, depth)
	}

	return applyBuiltin(tx, authority, instr)
}

// applyExecuteTrigger runs a named trigger's action instructions on demand,
// outside the event-driven trigger engine's own pass — each instruction
// still re-enters validation under the trigger's own authority, and still
// counts against this call's recursion depth, same as Custom expansion.
func (d *Dispatcher) applyExecuteTrigger(tx *state.InstrTx, instr types.Instruction, header types.BlockHeader, depth int) error {
	trig, ok := tx.View().Trigger(instr.Trigger)
	if !ok {
		return notFound("dispatch: trigger %s not found", instr.Trigger)
	}
	if trig.Exhausted() {
		return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: trigger %s is exhausted", instr.Trigger)
	}
	if trig.Action.Kind != types.ExecutableInstructions {
		return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: trigger %s is not instruction-executable from ExecuteTrigger", instr.Trigger)
	}
	for _, child := range trig.Action.Instructions {
		if err := d.apply(tx, trig.Authority, child, header, depth+1); err != nil {
			return err
		}
	}
	trig = trig.Clone()
	trig.RecordFiring()
	tx.PutTrigger(trig)
	if trig.Exhausted() {
		tx.DeleteTrigger(trig.Id)
	}
	return nil
}

// Query resolves q against the given snapshot, consulting the executor's
// read-only validation hook before returning a result.
func (d *Dispatcher) Query(view state.Snapshot, authority types.AccountId, q types.Query) (*types.QueryResult, error) {
	if err := d.policy.ValidateQuery(view, authority, q); err != nil {
		return nil, err
	}
	return resolveQuery(view, q)
}

func notFound(format string, args ...any) error {
	return ledgererr.New(ledgererr.KindNotFound, format, args...)
}
