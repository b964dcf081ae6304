package wasmhost

import (
	"github.com/bytecodealliance/wasmtime-go/v25"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/observability/metrics"
)

// Invoke runs one entry point export with input as its single length-
// prefixed argument, returning the guest's return payload with its length
// prefix removed.
// A fresh store and instance are built for every call — instance reuse is
// implemented one level up, in Host (see instance.go), which keeps a
// compiled Module around and only pays the instantiation cost again, not
// recompilation.
func (r *Runtime) Invoke(module *wasmtime.Module, limits Limits, host HostFunctions, entry string, input []byte) (out []byte, outErr error) {
	defer func() {
		metrics.Wasm().ObserveInvocation(entry, outErr == nil)
		if outErr != nil {
			metrics.Wasm().ObserveTrap(string(ledgererr.KindOf(outErr)))
		}
	}()

	exec, err := r.instantiate(module, limits, host)
	if err != nil {
		return nil, err
	}
	defer func() {
		if consumed, ok := exec.store.FuelConsumed(); ok {
			metrics.Wasm().ObserveFuelConsumed(limits.Fuel - consumed)
		}
	}()

	entryFnExport := exec.instance.GetExport(exec.store, entry)
	if entryFnExport == nil || entryFnExport.Func() == nil {
		return nil, ledgererr.New(ledgererr.KindMandatoryExport, "wasmhost: module missing entry %q", entry)
	}
	entryFn := entryFnExport.Func()

	allocFn := exec.instance.GetExport(exec.store, ExportAlloc).Func()
	deallocFn := exec.instance.GetExport(exec.store, ExportDealloc).Func()

	framed := encodeFrame(input)
	allocResult, err := allocFn.Call(exec.store, int32(len(framed)))
	if err != nil {
		return nil, classifyTrap(err)
	}
	inPtr, _ := allocResult.(int32)

	data := exec.mem.UnsafeData(exec.store)
	if int(inPtr)+len(framed) > len(data) {
		return nil, ledgererr.New(ledgererr.KindExecutionLimitsExceeded, "wasmhost: guest allocation outside memory bounds")
	}
	copy(data[inPtr:int(inPtr)+len(framed)], framed)

	result, err := entryFn.Call(exec.store, inPtr, int32(len(framed)))
	if err != nil {
		return nil, classifyTrap(err)
	}
	outPtr, _ := result.(int32)

	out := exec.mem.UnsafeData(exec.store)
	if int(outPtr) < 0 || int(outPtr)+4 > len(out) {
		return nil, ledgererr.New(ledgererr.KindDecode, "wasmhost: guest returned out-of-bounds pointer")
	}
	response, err := decodeFrame(out[outPtr:])
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	// Copy the response out before deallocating: the guest owns the
	// buffer's storage, and the host must not read it after release.
	responseCopy := append([]byte(nil), response...)

	if _, err := deallocFn.Call(exec.store, outPtr, int32(len(response)+4)); err != nil {
		return nil, classifyTrap(err)
	}

	return responseCopy, nil
}
