package executor_test

import (
	"encoding/json"
	"math/big"
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

func mustAssetDefId(t *testing.T, name string, domain types.DomainId) types.AssetDefinitionId {
	id, err := types.NewAssetDefinitionId(name, domain)
	require.NoError(t, err)
	return id
}

// setup builds a domain owned by owner, an unmintable-until-explicit numeric
// asset definition, and a plain account with no roles or grants.
func setup(t *testing.T) (mgr *state.Manager, domain types.DomainId, owner, plain types.AccountId, defId types.AssetDefinitionId) {
	mgr = state.NewManager(state.DefaultParameters())
	domain = mustDomain(t, "wonderland")
	owner = types.NewAccountId(domain, "owner-key")
	plain = types.NewAccountId(domain, "plain-key")
	defId = mustAssetDefId(t, "coin", domain)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	itx.PutDomain(types.NewDomain(domain, owner))
	itx.PutAccount(types.NewAccount(owner))
	itx.PutAccount(types.NewAccount(plain))
	itx.PutAssetDefinition(types.NewNumericAssetDefinition(defId, owner, 2, nil, types.MintableInfinitely))
	itx.Commit()
	wtx.Commit()
	return
}

func mintInstr(defId types.AssetDefinitionId, account types.AccountId) types.Instruction {
	return types.Instruction{
		Kind:         types.InstructionMint,
		TargetAsset:  types.AssetId{Definition: defId, Account: account},
		NumericDelta: types.Numeric{Value: big.NewInt(100), Scale: 2},
	}
}

func TestDomainOwnerMaySkipPermissionCheck(t *testing.T) {
	mgr, _, owner, _, defId := setup(t)
	d := newDispatcher()

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()
	require.NoError(t, d.Apply(itx, owner, mintInstr(defId, owner), types.BlockHeader{Height: 2}))
	wtx.Rollback()
}

func TestPlainAccountWithoutGrantIsDenied(t *testing.T) {
	mgr, _, _, plain, defId := setup(t)
	d := newDispatcher()

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()
	err := d.Apply(itx, plain, mintInstr(defId, plain), types.BlockHeader{Height: 2})
	require.Error(t, err)
	require.True(t, ledgererr.Is(err, ledgererr.KindNotPermitted))
	wtx.Rollback()
}

func TestDirectPermissionGrantAllowsMint(t *testing.T) {
	mgr, _, _, plain, defId := setup(t)
	d := newDispatcher()

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()

	account, ok := itx.View().Account(plain)
	require.True(t, ok)
	account.Permissions[types.Name("CanMintAssets")] = json.RawMessage(`{}`)
	itx.PutAccount(account)

	require.NoError(t, d.Apply(itx, plain, mintInstr(defId, plain), types.BlockHeader{Height: 2}))
	wtx.Rollback()
}

// TestTransferToNewAccountRequiresRegisterPermission reproduces the
// auto-registration scenario: an account holding CanTransferUserAssets but
// not CanRegisterAccountInDomain may move funds between existing accounts,
// but is denied when the destination does not exist yet, even though the
// transfer itself would otherwise be allowed. Granting
// CanRegisterAccountInDomain on the destination's domain then lets the
// same transfer through.
func TestTransferToNewAccountRequiresRegisterPermission(t *testing.T) {
	mgr, domain, owner, _, defId := setup(t)
	d := newDispatcher()

	carol := types.NewAccountId(domain, "carol-key")
	dave := types.NewAccountId(domain, "dave-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()
	itx.PutAccount(types.NewAccount(carol))
	require.NoError(t, d.Apply(itx, owner, mintInstr(defId, carol), types.BlockHeader{Height: 2}))

	account, ok := itx.View().Account(carol)
	require.True(t, ok)
	account.Permissions[types.Name("CanTransferUserAssets")] = json.RawMessage(`{}`)
	itx.PutAccount(account)
	itx.Commit()
	wtx.Commit()

	transfer := types.TransferQuantity(
		types.AssetId{Definition: defId, Account: carol},
		dave,
		types.Numeric{Value: big.NewInt(10), Scale: 2},
	)

	wtx2 := mgr.BlockTransaction(types.BlockHeader{Height: 3})
	itx2 := wtx2.Transaction()
	err := d.Apply(itx2, carol, transfer, types.BlockHeader{Height: 3})
	require.Error(t, err, "CanTransferUserAssets alone must not authorize registering a new destination account")
	require.True(t, ledgererr.Is(err, ledgererr.KindNotPermitted))
	wtx2.Rollback()

	wtx3 := mgr.BlockTransaction(types.BlockHeader{Height: 3})
	itx3 := wtx3.Transaction()
	account, ok = itx3.View().Account(carol)
	require.True(t, ok)
	account.Permissions[types.Name("CanRegisterAccountInDomain")] = json.RawMessage(`{}`)
	itx3.PutAccount(account)
	require.NoError(t, d.Apply(itx3, carol, transfer, types.BlockHeader{Height: 3}), "granting CanRegisterAccountInDomain must allow the same transfer through")
	wtx3.Rollback()
}

func TestRoleGrantedPermissionAllowsMint(t *testing.T) {
	mgr, _, _, plain, defId := setup(t)
	d := newDispatcher()

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()

	roleId := types.RoleId{Name: "minter"}
	role := types.NewRole(roleId)
	role.Permissions[types.Name("CanMintAssets")] = json.RawMessage(`{}`)
	itx.PutRole(role)

	account, ok := itx.View().Account(plain)
	require.True(t, ok)
	account.Roles[roleId] = struct{}{}
	itx.PutAccount(account)

	require.NoError(t, d.Apply(itx, plain, mintInstr(defId, plain), types.BlockHeader{Height: 2}))
	wtx.Rollback()
}
