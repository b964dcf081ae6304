package state

import "github.com/satu-n/iroha/core/types"

// snapshot is the immutable body of a world-state view at one instant. Every
// map is keyed by the entity's structural identifier ("cross-
// entity references are by identifier, never by pointer"). A snapshot is
// never mutated in place: WriteTx.commit installs a new snapshot built from
// a shallow copy, so concurrent readers holding an older snapshot never
// observe a torn read — provided every mutator clones an entity fetched
// from a Snapshot (via its Clone method) before changing any of its
// fields, since shallowCopy only duplicates the maps, not the entities the
// maps point to. core/dispatch, package multisig, and package trigger all
// follow that discipline; a new mutator that edits a fetched pointer's
// fields in place without cloning it first breaks this guarantee.
type snapshot struct {
	domains    map[types.DomainId]*types.Domain
	accounts   map[types.AccountId]*types.Account
	assetDefs  map[types.AssetDefinitionId]*types.AssetDefinition
	assets     map[types.AssetId]*types.Asset
	roles      map[types.RoleId]*types.Role
	triggers   map[types.TriggerId]*types.Trigger
	parameters Parameters
	height     uint64
	// executorModule is the currently installed executor's raw WASM bytes,
	// written by an applied Upgrade instruction. Genesis installs the first
	// one; nil means the chain is running the in-process NativePolicy
	// reference executor (see package executor).
	executorModule []byte
}

func newEmptySnapshot(params Parameters) *snapshot {
	return &snapshot{
		domains:    map[types.DomainId]*types.Domain{},
		accounts:   map[types.AccountId]*types.Account{},
		assetDefs:  map[types.AssetDefinitionId]*types.AssetDefinition{},
		assets:     map[types.AssetId]*types.Asset{},
		roles:      map[types.RoleId]*types.Role{},
		triggers:   map[types.TriggerId]*types.Trigger{},
		parameters: params,
	}
}

// shallowCopy duplicates the top-level maps (not the entities they point
// to) so a new snapshot can diverge from its parent without disturbing
// readers still holding the parent.
func (s *snapshot) shallowCopy() *snapshot {
	next := &snapshot{
		domains:    make(map[types.DomainId]*types.Domain, len(s.domains)),
		accounts:   make(map[types.AccountId]*types.Account, len(s.accounts)),
		assetDefs:  make(map[types.AssetDefinitionId]*types.AssetDefinition, len(s.assetDefs)),
		assets:     make(map[types.AssetId]*types.Asset, len(s.assets)),
		roles:      make(map[types.RoleId]*types.Role, len(s.roles)),
		triggers:   make(map[types.TriggerId]*types.Trigger, len(s.triggers)),
		parameters:     s.parameters,
		height:         s.height,
		executorModule: s.executorModule,
	}
	for k, v := range s.domains {
		next.domains[k] = v
	}
	for k, v := range s.accounts {
		next.accounts[k] = v
	}
	for k, v := range s.assetDefs {
		next.assetDefs[k] = v
	}
	for k, v := range s.assets {
		next.assets[k] = v
	}
	for k, v := range s.roles {
		next.roles[k] = v
	}
	for k, v := range s.triggers {
		next.triggers[k] = v
	}
	return next
}

// Snapshot is the read-only view handed to queries and executor validation.
// Its lifetime is bounded by the enclosing block transaction: callers never
// retain one past that scope.
type Snapshot struct {
	s *snapshot
}

func (v Snapshot) Domain(id types.DomainId) (*types.Domain, bool) {
	d, ok := v.s.domains[id]
	return d, ok
}

func (v Snapshot) Account(id types.AccountId) (*types.Account, bool) {
	a, ok := v.s.accounts[id]
	return a, ok
}

func (v Snapshot) AssetDefinition(id types.AssetDefinitionId) (*types.AssetDefinition, bool) {
	d, ok := v.s.assetDefs[id]
	return d, ok
}

func (v Snapshot) Asset(id types.AssetId) (*types.Asset, bool) {
	a, ok := v.s.assets[id]
	return a, ok
}

func (v Snapshot) Role(id types.RoleId) (*types.Role, bool) {
	r, ok := v.s.roles[id]
	return r, ok
}

func (v Snapshot) Trigger(id types.TriggerId) (*types.Trigger, bool) {
	t, ok := v.s.triggers[id]
	return t, ok
}

func (v Snapshot) Parameters() Parameters { return v.s.parameters }

func (v Snapshot) Height() uint64 { return v.s.height }

// ExecutorModule returns the raw WASM bytes of the currently installed
// executor, or nil if the chain is still running the reference policy.
func (v Snapshot) ExecutorModule() []byte { return v.s.executorModule }

// AllDomains, AllAccountsInDomain, AllRoles, AllTriggers back the iterable
// query kinds; each returns a fresh slice so callers cannot observe later
// mutation of the snapshot's maps.
func (v Snapshot) AllDomains() []*types.Domain {
	out := make([]*types.Domain, 0, len(v.s.domains))
	for _, d := range v.s.domains {
		out = append(out, d)
	}
	return out
}

func (v Snapshot) AllAccountsInDomain(domain types.DomainId) []*types.Account {
	out := make([]*types.Account, 0)
	for id, a := range v.s.accounts {
		if id.Domain == domain {
			out = append(out, a)
		}
	}
	return out
}

func (v Snapshot) AllRoles() []*types.Role {
	out := make([]*types.Role, 0, len(v.s.roles))
	for _, r := range v.s.roles {
		out = append(out, r)
	}
	return out
}

func (v Snapshot) AllTriggers() []*types.Trigger {
	out := make([]*types.Trigger, 0, len(v.s.triggers))
	for _, t := range v.s.triggers {
		out = append(out, t)
	}
	return out
}

func (v Snapshot) AssetsByAccount(account types.AccountId) []*types.Asset {
	out := make([]*types.Asset, 0)
	for id, a := range v.s.assets {
		if id.Account == account {
			out = append(out, a)
		}
	}
	return out
}
