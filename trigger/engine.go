// Package trigger runs event-triggered instruction and WASM executables
// against committed data events: a trigger fires at most once per matching
// event, at most Repeats times over its lifetime, and self-edits made
// while firing never change which triggers match events still pending in
// the same processing pass.
package trigger

import (
	"sort"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/observability/metrics"
)

var (
	errNoWasmRunner      = ledgererr.New(ledgererr.KindInitialization, "trigger: wasm action with no WasmRunner configured")
	errUnknownExecutable = ledgererr.New(ledgererr.KindDecode, "trigger: unknown executable kind")
)

// Applier is the slice of *dispatch.Dispatcher the engine needs to run a
// fired trigger's instructions against the in-flight block transaction.
type Applier interface {
	Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error
}

// WasmRunner executes a trigger whose Action.Kind is ExecutableWasm. It is
// optional: a chain with no WASM triggers registered never needs one.
type WasmRunner interface {
	RunTrigger(tx *state.InstrTx, trigger *types.Trigger, event types.DataEvent, header types.BlockHeader) error
}

// Engine matches committed events against registered triggers and runs
// the ones that fire.
type Engine struct {
	applier Applier
	wasm    WasmRunner
}

func NewEngine(applier Applier, wasm WasmRunner) *Engine {
	return &Engine{applier: applier, wasm: wasm}
}

// ProcessPass runs one event-processing pass: events, in the causal order
// they were emitted, against the trigger set as it stood at the start of
// this call. A trigger that edits the trigger registry (registers,
// unregisters, or re-targets another trigger) while firing only affects
// matching in the *next* ProcessPass call — this pass already captured its
// own trigger snapshot before the first event ran.
func (e *Engine) ProcessPass(tx *state.InstrTx, events []types.DataEvent, header types.BlockHeader) []types.DataEvent {
	snapshot := sortedTriggers(tx.View().AllTriggers())
	var fired []types.DataEvent

	for _, event := range events {
		for i, trig := range snapshot {
			if trig.Exhausted() || !trig.Filter.Matches(event) {
				continue
			}
			if err := e.fire(tx, trig, event, header); err != nil {
				metrics.Trigger().ObserveFailed(string(ledgererr.KindOf(err)))
				fired = append(fired, types.DataEvent{Kind: types.EventTriggerFailed, Subject: trig.Id.String()})
				continue
			}
			trig = trig.Clone()
			trig.RecordFiring()
			tx.PutTrigger(trig)
			snapshot[i] = trig
			metrics.Trigger().IncFired()
			fired = append(fired, types.DataEvent{Kind: types.EventTriggerFired, Subject: trig.Id.String()})
			if trig.Exhausted() {
				tx.DeleteTrigger(trig.Id)
				metrics.Trigger().IncExhausted()
			}
		}
	}
	metrics.Trigger().SetActive(float64(len(snapshot)))
	return fired
}

func (e *Engine) fire(tx *state.InstrTx, trig *types.Trigger, event types.DataEvent, header types.BlockHeader) error {
	switch trig.Action.Kind {
	case types.ExecutableInstructions:
		for _, instr := range trig.Action.Instructions {
			if err := e.applier.Apply(tx, trig.Authority, instr, header); err != nil {
				return err
			}
		}
		return nil
	case types.ExecutableWasm:
		if e.wasm == nil {
			return errNoWasmRunner
		}
		return e.wasm.RunTrigger(tx, trig, event, header)
	default:
		return errUnknownExecutable
	}
}

// sortedTriggers returns triggers ordered by TriggerId so that, within one
// event, firing order is deterministic and reproducible across replays —
// an "(event-seq, trigger-id)" ordering.
func sortedTriggers(triggers []*types.Trigger) []*types.Trigger {
	out := make([]*types.Trigger, len(triggers))
	copy(out, triggers)
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}
