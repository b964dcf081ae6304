package dispatch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/executor"
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

func mustDomain(t *testing.T, name string) types.DomainId {
	id, err := types.NewDomainId(name)
	require.NoError(t, err)
	return id
}

func TestApplyRegisterDomainEmitsEvent(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	instr := types.Instruction{
		Kind:           types.InstructionRegister,
		Registrable:    types.RegistrableDomain,
		RegisterDomain: types.NewDomain(domain, owner),
	}
	require.NoError(t, d.Apply(itx, owner, instr, types.BlockHeader{Height: 1}))
	events := itx.Commit()
	require.Len(t, events, 1)
	require.Equal(t, types.EventDomainCreated, events[0].Kind)

	_, ok := wtx.View().Domain(domain)
	require.True(t, ok)
	wtx.Rollback()
}

func TestApplyRegisterDomainTwiceIsDenied(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	instr := types.Instruction{
		Kind:           types.InstructionRegister,
		Registrable:    types.RegistrableDomain,
		RegisterDomain: types.NewDomain(domain, owner),
	}
	require.NoError(t, d.Apply(itx, owner, instr, types.BlockHeader{Height: 1}))
	itx.Commit()

	itx2 := wtx.Transaction()
	err := d.Apply(itx2, owner, instr, types.BlockHeader{Height: 1})
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindNotPermitted))
	wtx.Rollback()
}

// TestApplyGrantOnPreexistingAccountDoesNotLeakIntoOlderSnapshot guards
// against applyGrant mutating the fetched *types.Account in place: a
// Snapshot taken before the Grant runs must still see the account with no
// roles, even while the Grant's own (later rolled-back) transaction is
// staging the role onto its own copy.
func TestApplyGrantOnPreexistingAccountDoesNotLeakIntoOlderSnapshot(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	holder := types.NewAccountId(domain, "holder-key")

	seed := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	seedTx := seed.Transaction()
	seedTx.PutDomain(types.NewDomain(domain, holder))
	seedTx.PutAccount(types.NewAccount(holder))
	seedTx.Commit()
	seed.Commit()

	before := mgr.View()
	holderBefore, ok := before.Account(holder)
	require.True(t, ok)
	require.False(t, holderBefore.HasRole(types.RoleId{Name: "minter"}))

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()
	instr := types.Instruction{
		Kind:        types.InstructionGrant,
		Grantable:   types.GrantableRole,
		GrantHolder: holder,
		GrantRole:   types.RoleId{Name: "minter"},
	}
	require.NoError(t, d.Apply(itx, holder, instr, types.BlockHeader{Height: 2}))
	itx.Commit()
	wtx.Rollback()

	require.False(t, holderBefore.HasRole(types.RoleId{Name: "minter"}), "a rolled-back Grant must not retroactively appear on an entity an older snapshot already fetched")
	holderAfter, ok := mgr.View().Account(holder)
	require.True(t, ok)
	require.False(t, holderAfter.HasRole(types.RoleId{Name: "minter"}), "the whole block was rolled back, so the committed state must not show the grant either")
}

func TestApplyUnregisterUnknownDomainIsNotFound(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "ghost")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	idRaw, err := json.Marshal(domain)
	require.NoError(t, err)
	instr := types.Instruction{
		Kind:         types.InstructionUnregister,
		Registrable:  types.RegistrableDomain,
		UnregisterId: idRaw,
	}
	applyErr := d.Apply(itx, types.AccountId{}, instr, types.BlockHeader{Height: 1})
	require.Error(t, applyErr)
	require.True(t, ledgererr.Is(applyErr, ledgererr.KindNotFound))
	wtx.Rollback()
}

func TestApplySetParameterUpdatesSnapshot(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	instr := types.Instruction{
		Kind:           types.InstructionSetParameter,
		ParameterName:  "Block.MaxTransactions",
		ParameterValue: json.RawMessage(`123`),
	}
	require.NoError(t, d.Apply(itx, types.AccountId{}, instr, types.BlockHeader{Height: 1}))
	require.Equal(t, uint32(123), itx.View().Parameters().BlockMaxTransactions)
	wtx.Rollback()
}

func TestApplyCustomWithUndecodablePayloadIsDenied(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	instr := types.Instruction{Kind: types.InstructionCustom, CustomPayload: json.RawMessage(`not json`)}
	err := d.Apply(itx, types.AccountId{}, instr, types.BlockHeader{Height: 1})
	require.Error(t, err)
	wtx.Rollback()
}

func TestApplyExecuteTriggerRunsStoredInstructions(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	triggerId := types.TriggerId{Name: "fee-bump"}
	action := types.Executable{
		Kind: types.ExecutableInstructions,
		Instructions: []types.Instruction{{
			Kind:           types.InstructionSetParameter,
			ParameterName:  "Block.MaxTransactions",
			ParameterValue: json.RawMessage(`55`),
		}},
	}
	trig := types.NewTrigger(triggerId, action, types.EventFilter{}, owner, types.Unlimited)
	itx.PutTrigger(trig)

	execInstr := types.Instruction{Kind: types.InstructionExecuteTrigger, Trigger: triggerId}
	require.NoError(t, d.Apply(itx, owner, execInstr, types.BlockHeader{Height: 1}))
	require.Equal(t, uint32(55), itx.View().Parameters().BlockMaxTransactions)
	wtx.Rollback()
}

func TestApplyExecuteTriggerUnknownIsNotFound(t *testing.T) {
	d := newDispatcher()
	mgr := state.NewManager(state.DefaultParameters())

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	execInstr := types.Instruction{Kind: types.InstructionExecuteTrigger, Trigger: types.TriggerId{Name: "ghost"}}
	err := d.Apply(itx, types.AccountId{}, execInstr, types.BlockHeader{Height: 1})
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindNotFound))
	wtx.Rollback()
}
