package executor

import (
	"encoding/json"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/wasmhost"
)

// Applier is the subset of *dispatch.Dispatcher the executor needs to
// re-enter dispatch for a child instruction the WASM module requests
// through the host ABI, and to resolve a query the module asks the host to
// run on its behalf.
type Applier interface {
	Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error
	Query(view state.Snapshot, authority types.AccountId, q types.Query) (*types.QueryResult, error)
}

// Executor adapts the dispatcher's Policy interface to a running executor
// WASM module. It is itself code-driven: every decision below is the
// decoded answer a WASM call returned, never a hardcoded Go rule, following
// a "code, not configuration" design.
type Executor struct {
	host       *wasmhost.Host
	dispatcher Applier
	cursors    *dispatch.CursorStore
	logSink    func(level int32, message string)
}

// NewExecutor wraps an already-compiled executor Host. dispatcher is
// injected rather than constructed here to avoid a package import cycle:
// package dispatch never imports package executor.
func NewExecutor(host *wasmhost.Host, dispatcher Applier, cursors *dispatch.CursorStore, logSink func(level int32, message string)) *Executor {
	return &Executor{host: host, dispatcher: dispatcher, cursors: cursors, logSink: logSink}
}

type instructionContext struct {
	Authority types.AccountId    `json:"authority"`
	Header    types.BlockHeader  `json:"header"`
	Instr     types.Instruction  `json:"instruction"`
}

// ValidateInstruction runs the executor's execute_instruction entry point,
// translating its JSON verdict back into a dispatch.Verdict. Child
// instructions the module submits through the execute_instruction host
// import re-enter tx synchronously via e.dispatcher.Apply.
func (e *Executor) ValidateInstruction(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) dispatch.Verdict {
	executionId := authority.String() + "/" + string(instr.Kind)
	payload, err := json.Marshal(instructionContext{Authority: authority, Header: header, Instr: instr})
	if err != nil {
		return dispatch.Verdict{Deny: ledgererr.Wrap(ledgererr.KindDecode, err)}
	}

	hostFns := wasmhost.HostFunctions{
		ExecuteInstruction: func(childPayload []byte) ([]byte, error) {
			var child types.Instruction
			if err := json.Unmarshal(childPayload, &child); err != nil {
				return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
			}
			if err := e.dispatcher.Apply(tx, authority, child, header); err != nil {
				return json.Marshal(map[string]string{"error": err.Error()})
			}
			return json.Marshal(map[string]bool{"ok": true})
		},
		ExecuteQuery: func(queryPayload []byte) ([]byte, error) {
			var q types.Query
			if err := json.Unmarshal(queryPayload, &q); err != nil {
				return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
			}
			result, err := e.dispatcher.Query(tx.View(), authority, q)
			if err != nil {
				return json.Marshal(map[string]string{"error": err.Error()})
			}
			return json.Marshal(result)
		},
		SetDataModel: nil, // only the migrate entry point may call this
		Dbg: func(payload []byte) {
			if e.logSink != nil {
				e.logSink(0, string(payload))
			}
		},
		Log: func(level int32, payload []byte) {
			if e.logSink != nil {
				e.logSink(level, string(payload))
			}
		},
	}

	response, err := e.host.Call(hostFns, wasmhost.EntryExecutorExecuteInstr, payload, func() {
		if e.cursors != nil {
			e.cursors.DropAll(executionId)
		}
	})
	if err != nil {
		return dispatch.Verdict{Deny: ledgererr.Wrap(ledgererr.KindNotPermitted, err)}
	}

	var verdict wireVerdict
	if err := json.Unmarshal(response, &verdict); err != nil {
		return dispatch.Verdict{Deny: ledgererr.Wrap(ledgererr.KindDecode, err)}
	}
	if verdict.ElevatedAuthority != "" {
		elevated, err := decodeAccountId(verdict.ElevatedAuthority)
		if err != nil {
			return dispatch.Verdict{Deny: ledgererr.Wrap(ledgererr.KindDecode, err)}
		}
		return dispatch.Verdict{ElevatedAuthority: &elevated}
	}
	if !verdict.Allow {
		return dispatch.Verdict{Deny: denyError(verdict.Deny)}
	}
	return dispatch.Verdict{Allow: true}
}

// ValidateQuery runs validate_query, which may not mutate
// the WSV or execute instructions — its host wiring answers an
// execute_instruction call with a NotPermitted error.
func (e *Executor) ValidateQuery(view state.Snapshot, authority types.AccountId, q types.Query) *ledgererr.Error {
	payload, err := json.Marshal(struct {
		Authority types.AccountId `json:"authority"`
		Query     types.Query     `json:"query"`
	}{authority, q})
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindDecode, err)
	}

	hostFns := wasmhost.HostFunctions{
		ExecuteInstruction: func([]byte) ([]byte, error) {
			return nil, ledgererr.New(ledgererr.KindNotPermitted, "executor: validate_query may not execute instructions")
		},
		ExecuteQuery: func(queryPayload []byte) ([]byte, error) {
			var nested types.Query
			if err := json.Unmarshal(queryPayload, &nested); err != nil {
				return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
			}
			result, err := e.dispatcher.Query(view, authority, nested)
			if err != nil {
				return json.Marshal(map[string]string{"error": err.Error()})
			}
			return json.Marshal(result)
		},
		Dbg: func([]byte) {},
		Log: func(int32, []byte) {},
	}

	response, err := e.host.Call(hostFns, wasmhost.EntryExecutorValidateQuery, payload, nil)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNotPermitted, err)
	}
	var verdict wireVerdict
	if err := json.Unmarshal(response, &verdict); err != nil {
		return ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	if !verdict.Allow {
		return denyError(verdict.Deny)
	}
	return nil
}

// DecodeCustom asks the executor to interpret a Custom(Json) instruction
// payload, returning the concrete instructions it expands to. This reuses
// the execute_instruction entry point with a well-known Custom-decode
// marker rather than a fifth entry point, since the WASM ABI fixes the
// export set.
func (e *Executor) DecodeCustom(tx *state.InstrTx, authority types.AccountId, payload []byte) ([]types.Instruction, error) {
	instr := types.Instruction{Kind: types.InstructionCustom, CustomPayload: payload}
	verdict := e.ValidateInstruction(tx, authority, instr, types.BlockHeader{})
	if !verdict.Allow {
		if verdict.Deny != nil {
			return nil, verdict.Deny
		}
		return nil, ledgererr.New(ledgererr.KindNotPermitted, "executor: custom instruction denied")
	}
	var expanded struct {
		Instructions []types.Instruction `json:"instructions"`
	}
	if err := json.Unmarshal(payload, &expanded); err != nil {
		return nil, err
	}
	return expanded.Instructions, nil
}

func decodeAccountId(s string) (types.AccountId, error) {
	var id types.AccountId
	if err := json.Unmarshal([]byte(s), &id); err != nil {
		return types.AccountId{}, err
	}
	return id, nil
}
