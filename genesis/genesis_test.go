package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/executor"
	"github.com/satu-n/iroha/genesis"
)

type lazyApplier struct{ d *dispatch.Dispatcher }

func (l *lazyApplier) Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error {
	return l.d.Apply(tx, authority, instr, header)
}
func (l *lazyApplier) Query(view state.Snapshot, authority types.AccountId, q types.Query) (*types.QueryResult, error) {
	return l.d.Query(view, authority, q)
}

func newDispatcher() *dispatch.Dispatcher {
	la := &lazyApplier{}
	policy := executor.NewNativePolicy(la)
	d := dispatch.NewDispatcher(policy)
	la.d = d
	return d
}

func writeGenesisFile(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRejectsMissingChainId(t *testing.T) {
	path := writeGenesisFile(t, `{"instructions":[{"Kind":"Register"}]}`)
	_, err := genesis.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsEmptyInstructions(t *testing.T) {
	path := writeGenesisFile(t, `{"chain_id":"test","instructions":[]}`)
	_, err := genesis.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	_, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadAcceptsWellFormedFile(t *testing.T) {
	path := writeGenesisFile(t, `{
		"chain_id": "test-chain",
		"instructions": [{"Kind":"SetParameter","ParameterName":"Block.MaxTransactions","ParameterValue":200}]
	}`)
	g, err := genesis.Load(path)
	require.NoError(t, err)
	require.Equal(t, "test-chain", g.ChainId)
	require.Len(t, g.Instructions, 1)
}

func TestExecutorBytesEmptyPathReturnsNil(t *testing.T) {
	g := &genesis.RawGenesisTransaction{}
	raw, err := g.ExecutorBytes(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestExecutorBytesReadsFileRelativeToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "executor.wasm"), []byte("fake-module"), 0o644))

	g := &genesis.RawGenesisTransaction{ExecutorPath: "executor.wasm"}
	raw, err := g.ExecutorBytes(dir)
	require.NoError(t, err)
	require.Equal(t, []byte("fake-module"), raw)
}

func TestApplyCommitsParametersAndInstructionsInOneBlock(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	d := newDispatcher()
	domain := mustDomain(t, "wonderland")
	genesisAccount := types.NewAccountId(domain, "genesis-key")

	g := &genesis.RawGenesisTransaction{
		ChainId: "test-chain",
		Parameters: map[string]int64{
			"Block.MaxTransactions": 999,
		},
		Instructions: []types.Instruction{{
			Kind:           types.InstructionRegister,
			Registrable:    types.RegistrableDomain,
			RegisterDomain: types.NewDomain(domain, genesisAccount),
		}},
	}

	require.NoError(t, genesis.Apply(mgr, d, g, genesisAccount))

	view := mgr.View()
	require.Equal(t, uint64(1), view.Height())
	require.Equal(t, uint32(999), view.Parameters().BlockMaxTransactions)
	_, ok := view.Domain(domain)
	require.True(t, ok)
}

func TestApplyRollsBackWholeBlockOnInstructionFailure(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	d := newDispatcher()
	domain := mustDomain(t, "wonderland")
	genesisAccount := types.NewAccountId(domain, "genesis-key")

	g := &genesis.RawGenesisTransaction{
		ChainId: "test-chain",
		Instructions: []types.Instruction{
			{
				Kind:           types.InstructionRegister,
				Registrable:    types.RegistrableDomain,
				RegisterDomain: types.NewDomain(domain, genesisAccount),
			},
			{
				Kind:        types.InstructionUnregister,
				Registrable: types.RegistrableAccount,
				// malformed identifier: fails decode, aborting the block.
				UnregisterId: nil,
			},
		},
	}

	err := genesis.Apply(mgr, d, g, genesisAccount)
	require.Error(t, err)

	view := mgr.View()
	require.Equal(t, uint64(0), view.Height())
	_, ok := view.Domain(domain)
	require.False(t, ok, "a failed genesis instruction must roll back the whole block, including earlier successes")
}

func TestApplyRejectsUnknownParameter(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	d := newDispatcher()
	domain := mustDomain(t, "wonderland")
	genesisAccount := types.NewAccountId(domain, "genesis-key")

	g := &genesis.RawGenesisTransaction{
		ChainId:    "test-chain",
		Parameters: map[string]int64{"Not.A.Real.Parameter": 1},
		Instructions: []types.Instruction{{
			Kind:           types.InstructionRegister,
			Registrable:    types.RegistrableDomain,
			RegisterDomain: types.NewDomain(domain, genesisAccount),
		}},
	}

	err := genesis.Apply(mgr, d, g, genesisAccount)
	require.Error(t, err)
	require.Equal(t, uint64(0), mgr.View().Height())
}

func mustDomain(t *testing.T, name string) types.DomainId {
	id, err := types.NewDomainId(name)
	require.NoError(t, err)
	return id
}
