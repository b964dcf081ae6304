// Package state implements the world-state view (WSV): the ledger's sole
// authoritative copy of every domain, account, asset definition, asset,
// role, and trigger. It offers read-only snapshots to queries and the
// executor's validation path, and a nested block/instruction write
// transaction to the dispatcher.
package state

import (
	"sync"

	"github.com/satu-n/iroha/core/types"
)

// Manager owns the current snapshot and hands out new ones as writes
// commit. Exactly one write transaction may be open at a time — enforced
// by lock, matching the single-threaded-mutation scheduling model.
type Manager struct {
	mu   sync.RWMutex
	cur  *snapshot
	lock sync.Mutex // serializes BlockTransaction callers
}

// NewManager constructs a WSV seeded with the given parameters and no
// entities; genesis population happens through a WriteTx like any other
// mutation.
func NewManager(params Parameters) *Manager {
	return &Manager{cur: newEmptySnapshot(params)}
}

// View returns a read-only snapshot of the current committed state.
func (m *Manager) View() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{s: m.cur}
}

// BlockTransaction opens a block-scoped write transaction. Only one may be
// open at a time; callers must Commit or Rollback it before starting
// another, matching an "exactly one block builder" scheduling model.
func (m *Manager) BlockTransaction(header types.BlockHeader) *WriteTx {
	m.lock.Lock()
	m.mu.RLock()
	base := m.cur
	m.mu.RUnlock()
	return &WriteTx{
		mgr:    m,
		header: header,
		work:   base.shallowCopy(),
	}
}

// WriteTx is the block-scoped write transaction. It accumulates committed
// instruction-scoped transactions into work, and installs work as the new
// current snapshot on Commit.
type WriteTx struct {
	mgr    *Manager
	header types.BlockHeader
	work   *snapshot
	done   bool
}

// View reads through to the in-progress block transaction's own writes,
// invariant (c).
func (w *WriteTx) View() Snapshot {
	return Snapshot{s: w.work}
}

// Transaction opens a fresh instruction-scoped inner transaction nested
// inside this block transaction.
func (w *WriteTx) Transaction() *InstrTx {
	return &InstrTx{
		parent: w,
		work:   w.work.shallowCopy(),
		events: nil,
	}
}

// Commit installs work as the manager's new current snapshot, bumping
// height by one. It is a programming error to call Commit twice or after
// Rollback; both panic since no legitimate caller does so.
func (w *WriteTx) Commit() {
	if w.done {
		panic("state: WriteTx already finalized")
	}
	w.done = true
	w.work.height++
	w.mgr.mu.Lock()
	w.mgr.cur = w.work
	w.mgr.mu.Unlock()
	w.mgr.lock.Unlock()
}

// Rollback discards the block transaction without installing it, releasing
// the single-writer lock so another block builder attempt can proceed.
func (w *WriteTx) Rollback() {
	if w.done {
		return
	}
	w.done = true
	w.mgr.lock.Unlock()
}

// InstrTx is the instruction-scoped inner transaction. Apply stages a
// mutation against a private copy; Apply's own caller decides whether to
// call Commit (fold the copy back into the parent WriteTx) or to discard it
// entirely — invariant (b), a failed apply_instruction
// leaves the InstrTx buffer semantically empty, which here just means the
// caller never calls Commit.
type InstrTx struct {
	parent *WriteTx
	work   *snapshot
	events []types.DataEvent
}

// View reads through to this inner transaction's own uncommitted writes.
func (t *InstrTx) View() Snapshot {
	return Snapshot{s: t.work}
}

// Emit appends a DataEvent to this transaction's pending event sequence, in
// causal order (parent-before-child, create-before-update, update-before-
// delete — the caller is responsible for calling Emit in that order).
func (t *InstrTx) Emit(e types.DataEvent) {
	t.events = append(t.events, e)
}

// Commit folds this inner transaction's work and accumulated events back
// into the enclosing block transaction, and returns the events so the
// dispatcher can pass them to the trigger engine after the block's inner
// transaction commits.
func (t *InstrTx) Commit() []types.DataEvent {
	t.parent.work = t.work
	return t.events
}

// Discard drops this inner transaction's staged writes and events without
// touching the enclosing block transaction.
func (t *InstrTx) Discard() {
	t.work = nil
	t.events = nil
}

// --- entity mutators used by core/dispatch; each mutates InstrTx.work
// directly, since the copy-on-write discipline already isolates it from
// the parent until Commit folds it back. ---

func (t *InstrTx) PutDomain(d *types.Domain)               { t.work.domains[d.Id] = d }
func (t *InstrTx) DeleteDomain(id types.DomainId)          { delete(t.work.domains, id) }
func (t *InstrTx) PutAccount(a *types.Account)             { t.work.accounts[a.Id] = a }
func (t *InstrTx) DeleteAccount(id types.AccountId)        { delete(t.work.accounts, id) }
func (t *InstrTx) PutAssetDefinition(d *types.AssetDefinition) {
	t.work.assetDefs[d.Id] = d
}
func (t *InstrTx) DeleteAssetDefinition(id types.AssetDefinitionId) {
	delete(t.work.assetDefs, id)
}
func (t *InstrTx) PutAsset(a *types.Asset)          { t.work.assets[a.Id] = a }
func (t *InstrTx) DeleteAsset(id types.AssetId)     { delete(t.work.assets, id) }
func (t *InstrTx) PutRole(r *types.Role)            { t.work.roles[r.Id] = r }
func (t *InstrTx) DeleteRole(id types.RoleId)       { delete(t.work.roles, id) }
func (t *InstrTx) PutTrigger(tr *types.Trigger)     { t.work.triggers[tr.Id] = tr }
func (t *InstrTx) DeleteTrigger(id types.TriggerId) { delete(t.work.triggers, id) }
func (t *InstrTx) SetParameters(p Parameters)       { t.work.parameters = p }

// SetExecutorModule installs wasm as the WSV's record of the currently
// installed executor. It does not itself run migrate or swap any live
// wasmhost.Host — that happens one layer up, in executor.Migrate, once
// this instruction's block commits.
func (t *InstrTx) SetExecutorModule(wasm []byte) { t.work.executorModule = wasm }
