// Package wasmhost is the fuel-metered, memory-limited WASM sandbox that
// runs executor and smart-contract/trigger modules. It builds one linker
// per store exposing the fixed "iroha" host import set, and enforces the
// guest export contract (allocator, memory, one entry point) before any
// call proceeds.
package wasmhost

import "encoding/binary"

// Fixed ABI string constants .
const (
	ExportMemory  = "memory"
	ExportAlloc   = "_iroha_smart_contract_alloc"
	ExportDealloc = "_iroha_smart_contract_dealloc"

	EntrySmartContractMain        = "_iroha_smart_contract_main"
	EntryTriggerMain              = "_iroha_trigger_main"
	EntryExecutorExecuteTx        = "_iroha_executor_execute_transaction"
	EntryExecutorExecuteInstr     = "_iroha_executor_execute_instruction"
	EntryExecutorValidateQuery    = "_iroha_executor_validate_query"
	EntryExecutorMigrate          = "_iroha_executor_migrate"

	HostModule           = "iroha"
	HostExecuteInstr     = "execute_instruction"
	HostExecuteQuery     = "execute_query"
	HostSetDataModel     = "set_data_model"
	HostDbg              = "dbg"
	HostLog              = "log"
)

// encodeFrame length-prefixes payload with a little-endian u32, the
// framing every host↔guest call uses. The payload body itself is JSON
// (see DESIGN.md's wire encoding addendum); only this outer frame
// substitutes for SCALE's length-prefixed convention.
func encodeFrame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// decodeFrame strips the length prefix written by encodeFrame, validating
// that the declared length matches what is actually present.
func decodeFrame(framed []byte) ([]byte, error) {
	if len(framed) < 4 {
		return nil, errShortFrame
	}
	n := binary.LittleEndian.Uint32(framed[:4])
	if uint32(len(framed)-4) < n {
		return nil, errShortFrame
	}
	return framed[4 : 4+n], nil
}

var errShortFrame = frameError("wasmhost: frame shorter than declared length")

type frameError string

func (e frameError) Error() string { return string(e) }
