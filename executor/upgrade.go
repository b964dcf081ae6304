package executor

import (
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/observability/metrics"
	"github.com/satu-n/iroha/wasmhost"
)

// Migrate compiles candidate as a full executor module (validating all
// four mandatory entry points) and runs its migrate entry point with
// set_data_model wired — migrate is the only entry point permitted to
// call it host-import table. dataModel receives
// whatever schema payload the module passes to set_data_model; the caller
// decides what that means for its own bookkeeping.
//
// A failing compile or a trapping/denying migrate call returns an error
// and no *wasmhost.Host: the caller must leave its prior Host installed,
// requirement that a failed migrate aborts the
// Upgrade instruction rather than leaving the chain executor-less.
func Migrate(runtime *wasmhost.Runtime, candidate []byte, limits wasmhost.Limits, dataModel func([]byte) error) (*wasmhost.Host, error) {
	host, err := wasmhost.NewHost(runtime, candidate, limits,
		wasmhost.EntryExecutorExecuteTx,
		wasmhost.EntryExecutorExecuteInstr,
		wasmhost.EntryExecutorValidateQuery,
		wasmhost.EntryExecutorMigrate,
	)
	if err != nil {
		metrics.Wasm().ObserveMigration(false)
		return nil, err
	}

	hostFns := wasmhost.HostFunctions{
		ExecuteInstruction: func([]byte) ([]byte, error) {
			return nil, ledgererr.New(ledgererr.KindNotPermitted, "executor: migrate may not execute instructions")
		},
		ExecuteQuery: func([]byte) ([]byte, error) {
			return nil, ledgererr.New(ledgererr.KindNotPermitted, "executor: migrate may not run queries")
		},
		SetDataModel: dataModel,
		Dbg:          func([]byte) {},
		Log:          func(int32, []byte) {},
	}

	if _, err := host.Call(hostFns, wasmhost.EntryExecutorMigrate, nil, nil); err != nil {
		metrics.Wasm().ObserveMigration(false)
		return nil, ledgererr.Wrap(ledgererr.KindInitialization, err)
	}
	metrics.Wasm().ObserveMigration(true)
	return host, nil
}
