package wasmhost

import (
	"github.com/bytecodealliance/wasmtime-go/v25"
)

// Host wraps one compiled module for repeated invocation. For
// execute_transaction, a Host is reused across every transaction within a
// single block: each call still gets a brand new store (fuel re-
// initialized, store data replaced rather than mutated in place), so
// nothing from a prior transaction ever leaks into the next.
type Host struct {
	runtime *Runtime
	module  *wasmtime.Module
	limits  Limits
}

// NewHost compiles wasmBytes once (validating its export contract against
// every name in requiredEntries) and returns a reusable Host.
func NewHost(runtime *Runtime, wasmBytes []byte, limits Limits, requiredEntries ...string) (*Host, error) {
	module, err := runtime.Compile(wasmBytes, requiredEntries...)
	if err != nil {
		return nil, err
	}
	return &Host{runtime: runtime, module: module, limits: limits}, nil
}

// Call invokes entry with input, building a fresh store/instance pair for
// this call only. cursorCleanup, if non-nil, always runs after the call
// completes (success or trap) — implementing the host's query-cursor
// hygiene contract: every cursor id opened during this execution is
// evicted from the live-query store on exit.
func (h *Host) Call(host HostFunctions, entry string, input []byte, cursorCleanup func()) (response []byte, err error) {
	if cursorCleanup != nil {
		defer cursorCleanup()
	}
	return h.runtime.Invoke(h.module, h.limits, host, entry, input)
}
