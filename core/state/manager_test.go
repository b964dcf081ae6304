package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

func mustDomain(t *testing.T, name string) types.DomainId {
	id, err := types.NewDomainId(name)
	require.NoError(t, err)
	return id
}

func TestCommitInstallsNewSnapshotAndBumpsHeight(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	before := mgr.View()
	require.Equal(t, uint64(0), before.Height())

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	itx.PutDomain(types.NewDomain(domain, owner))
	itx.Commit()
	wtx.Commit()

	after := mgr.View()
	require.Equal(t, uint64(1), after.Height())
	_, ok := after.Domain(domain)
	require.True(t, ok)

	// the snapshot taken before commit never observes the write.
	_, ok = before.Domain(domain)
	require.False(t, ok)
}

func TestRollbackDiscardsBlockTransaction(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	itx.PutDomain(types.NewDomain(domain, owner))
	itx.Commit()
	wtx.Rollback()

	view := mgr.View()
	require.Equal(t, uint64(0), view.Height())
	_, ok := view.Domain(domain)
	require.False(t, ok)
}

func TestInstrTxDiscardLeavesParentUnaffected(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})

	abandoned := wtx.Transaction()
	abandoned.PutDomain(types.NewDomain(domain, owner))
	abandoned.Discard()

	// a second inner transaction, never folded from the abandoned one,
	// commits its own unrelated write.
	other := mustDomain(t, "other")
	otherOwner := types.NewAccountId(other, "other-owner")
	kept := wtx.Transaction()
	kept.PutDomain(types.NewDomain(other, otherOwner))
	kept.Commit()

	wtx.Commit()

	view := mgr.View()
	_, ok := view.Domain(domain)
	require.False(t, ok, "discarded transaction's write must not reach the block")
	_, ok = view.Domain(other)
	require.True(t, ok)
}

func TestInstrTxViewReadsThroughUncommittedWrites(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	itx.PutDomain(types.NewDomain(domain, owner))

	_, ok := itx.View().Domain(domain)
	require.True(t, ok, "an inner transaction must see its own uncommitted write")

	_, ok = wtx.View().Domain(domain)
	require.False(t, ok, "the enclosing block transaction must not see it before Commit folds it back")

	itx.Commit()
	_, ok = wtx.View().Domain(domain)
	require.True(t, ok)

	wtx.Rollback()
}

func TestEmitReturnsEventsOnCommit(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()
	itx.Emit(types.DataEvent{Kind: types.EventAccountCreated, Subject: "alice"})
	events := itx.Commit()
	require.Len(t, events, 1)
	require.Equal(t, types.EventAccountCreated, events[0].Kind)
	wtx.Rollback()
}

// TestMutatingAnExistingEntityNeverLeaksIntoAnOlderSnapshot guards the
// entity-granularity half of copy-on-write: shallowCopy only duplicates
// the top-level maps, so a caller that fetches an existing entity and
// edits its fields in place (rather than cloning it first) would make
// that edit visible through any Snapshot taken before the edit, not just
// ones taken after. This asserts a pre-existing account's field is
// untouched in a snapshot held before the mutating (and rolled-back)
// block transaction even runs.
func TestMutatingAnExistingEntityNeverLeaksIntoAnOlderSnapshot(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")

	seed := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	seedTx := seed.Transaction()
	seedTx.PutAccount(types.NewAccount(owner))
	seedTx.Commit()
	seed.Commit()

	before := mgr.View()
	account, ok := before.Account(owner)
	require.True(t, ok)
	require.Empty(t, account.Metadata)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 2})
	itx := wtx.Transaction()
	mutated, ok := itx.View().Account(owner)
	require.True(t, ok)
	mutated = mutated.Clone()
	mutated.Metadata["k"] = []byte(`"v"`)
	itx.PutAccount(mutated)
	itx.Commit()
	wtx.Rollback()

	// the rolled-back write must not have touched the entity the earlier
	// snapshot is still holding a pointer to.
	account, ok = before.Account(owner)
	require.True(t, ok)
	require.Empty(t, account.Metadata, "a rolled-back mutation of a pre-existing entity must not leak into an older snapshot")

	// nor into the current committed snapshot, since the whole block was
	// rolled back.
	current, ok := mgr.View().Account(owner)
	require.True(t, ok)
	require.Empty(t, current.Metadata)
}

func TestCommitTwicePanics(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	wtx.Commit()
	require.Panics(t, func() { wtx.Commit() })
}
