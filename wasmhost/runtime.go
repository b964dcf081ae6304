package wasmhost

import (
	"fmt"

	"github.com/bytecodealliance/wasmtime-go/v25"

	"github.com/satu-n/iroha/core/ledgererr"
)

// Limits bounds one store's resource consumption: memory size, instance
// count, memory count, and table count, all enforced by the engine itself.
type Limits struct {
	Fuel         uint64
	MemoryBytes  int64
	MaxInstances int
	MaxMemories  int
	MaxTables    int
}

// HostFunctions is the set of callbacks the embedder wires into the
// "iroha" import module, one per host import the guest can call.
// ExecuteInstruction/ExecuteQuery/SetDataModel are per-call closures built
// fresh for every entry point invocation, since they close over that
// invocation's authority, block header, and in-flight InstrTx.
type HostFunctions struct {
	ExecuteInstruction func(payload []byte) (response []byte, err error)
	ExecuteQuery       func(payload []byte) (response []byte, err error)
	SetDataModel       func(payload []byte) error // nil unless entry == migrate
	Dbg                func(payload []byte)
	Log                func(level int32, payload []byte)
}

// Runtime owns one wasmtime engine, shared across every module instantiated
// from it. Engines are expensive to build and cheap to share; stores are
// created fresh per execution.
type Runtime struct {
	engine *wasmtime.Engine
}

// NewRuntime builds a fuel-metering-capable engine.
func NewRuntime() *Runtime {
	cfg := wasmtime.NewConfig()
	cfg.SetConsumeFuel(true)
	return &Runtime{engine: wasmtime.NewEngineWithConfig(cfg)}
}

// Compile parses and validates a WASM module, checking it against the
// mandatory export contract before returning. A module missing any of the
// required exports fails with KindMandatoryExport PBT
// property 5.
func (r *Runtime) Compile(wasmBytes []byte, requiredEntries ...string) (*wasmtime.Module, error) {
	module, err := wasmtime.NewModule(r.engine, wasmBytes)
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	required := append([]string{ExportMemory, ExportAlloc, ExportDealloc}, requiredEntries...)
	have := map[string]bool{}
	for _, exp := range module.Exports() {
		have[exp.Name()] = true
	}
	for _, name := range required {
		if !have[name] {
			return nil, ledgererr.New(ledgererr.KindMandatoryExport, "wasmhost: module missing export %q", name)
		}
	}
	return module, nil
}

// execution is one store+instance pairing, live for exactly one entry
// point invocation.
type execution struct {
	store    *wasmtime.Store
	instance *wasmtime.Instance
	mem      *wasmtime.Memory
}

// instantiate builds a fresh store (with fuel and limits applied) and
// instance, wiring host in hostFns into the "iroha" import module.
func (r *Runtime) instantiate(module *wasmtime.Module, limits Limits, host HostFunctions) (*execution, error) {
	store := wasmtime.NewStore(r.engine)
	if err := store.SetFuel(limits.Fuel); err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindInitialization, err)
	}
	store.Limiter(limits.MemoryBytes, -1, int64(limits.MaxInstances), int64(limits.MaxTables), int64(limits.MaxMemories))

	linker := wasmtime.NewLinker(r.engine)
	if err := wireHostFunctions(linker, store, host); err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindInitialization, err)
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, classifyTrap(err)
	}
	memExport := instance.GetExport(store, ExportMemory)
	if memExport == nil || memExport.Memory() == nil {
		return nil, ledgererr.New(ledgererr.KindInitialization, "wasmhost: module exports no memory")
	}
	return &execution{store: store, instance: instance, mem: memExport.Memory()}, nil
}

func wireHostFunctions(linker *wasmtime.Linker, store *wasmtime.Store, host HostFunctions) error {
	mustDefine := func(name string, fn func(caller *wasmtime.Caller, ptr, length int32) int32) error {
		return linker.DefineFunc(store, HostModule, name, fn)
	}

	readFrame := func(caller *wasmtime.Caller, ptr, length int32) ([]byte, error) {
		mem := caller.GetExport(ExportMemory).Memory()
		data := mem.UnsafeData(caller)
		if int(ptr) < 0 || int(ptr)+int(length) > len(data) {
			return nil, ledgererr.New(ledgererr.KindDecode, "wasmhost: guest pointer out of bounds")
		}
		raw := make([]byte, length)
		copy(raw, data[ptr:ptr+length])
		return decodeFrame(raw)
	}

	writeResponse := func(caller *wasmtime.Caller, response []byte) int32 {
		framed := encodeFrame(response)
		allocFn := caller.GetExport(ExportAlloc).Func()
		result, err := allocFn.Call(caller, int32(len(framed)))
		if err != nil {
			return 0
		}
		outPtr, _ := result.(int32)
		mem := caller.GetExport(ExportMemory).Memory()
		data := mem.UnsafeData(caller)
		copy(data[outPtr:int(outPtr)+len(framed)], framed)
		return outPtr
	}

	if err := mustDefine(HostExecuteInstr, func(caller *wasmtime.Caller, ptr, length int32) int32 {
		payload, err := readFrame(caller, ptr, length)
		if err != nil {
			return 0
		}
		response, err := host.ExecuteInstruction(payload)
		if err != nil {
			response, _ = encodeError(err)
		}
		return writeResponse(caller, response)
	}); err != nil {
		return err
	}

	if err := mustDefine(HostExecuteQuery, func(caller *wasmtime.Caller, ptr, length int32) int32 {
		payload, err := readFrame(caller, ptr, length)
		if err != nil {
			return 0
		}
		response, err := host.ExecuteQuery(payload)
		if err != nil {
			response, _ = encodeError(err)
		}
		return writeResponse(caller, response)
	}); err != nil {
		return err
	}

	if err := linker.DefineFunc(store, HostModule, HostSetDataModel, func(caller *wasmtime.Caller, ptr, length int32) {
		payload, err := readFrame(caller, ptr, length)
		if err != nil {
			panic(err)
		}
		if host.SetDataModel == nil {
			panic(ledgererr.New(ledgererr.KindNotPermitted, "wasmhost: set_data_model called outside migrate"))
		}
		if err := host.SetDataModel(payload); err != nil {
			panic(err)
		}
	}); err != nil {
		return err
	}

	if err := linker.DefineFunc(store, HostModule, HostDbg, func(caller *wasmtime.Caller, ptr, length int32) {
		payload, err := readFrame(caller, ptr, length)
		if err != nil {
			return
		}
		host.Dbg(payload)
	}); err != nil {
		return err
	}

	return linker.DefineFunc(store, HostModule, HostLog, func(caller *wasmtime.Caller, level, ptr, length int32) {
		payload, err := readFrame(caller, ptr, length)
		if err != nil {
			return
		}
		host.Log(level, payload)
	})
}

func encodeError(err error) ([]byte, error) {
	return []byte(fmt.Sprintf("error: %v", err)), nil
}

// classifyTrap maps a wasmtime error to the ledger's closed error-kind
// taxonomy trap table.
func classifyTrap(err error) error {
	if err == nil {
		return nil
	}
	trap, ok := err.(*wasmtime.Trap)
	if !ok {
		return ledgererr.Wrap(ledgererr.KindHostExecution, err)
	}
	code := trap.Code()
	if code == nil {
		return ledgererr.Wrap(ledgererr.KindHostExecution, err)
	}
	switch *code {
	case wasmtime.StackOverflow, wasmtime.OutOfFuel, wasmtime.Interrupt,
		wasmtime.MemoryOutOfBounds, wasmtime.TableOutOfBounds, wasmtime.IndirectCallToNull:
		return ledgererr.Wrap(ledgererr.KindExecutionLimitsExceeded, err)
	default:
		return ledgererr.Wrap(ledgererr.KindHostExecution, err)
	}
}
