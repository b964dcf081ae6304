package types

import "encoding/json"

// Account is the ledger's principal. Authority to act as an account is
// proven by a signature verifying under its AccountId's public key (or, for
// multisig accounts, by the overlay in package multisig).
type Account struct {
	Id           AccountId
	Metadata     map[Name]json.RawMessage
	Roles        map[RoleId]struct{}
	// Permissions holds tokens granted directly to this account, outside any
	// role. Key is the permission's stable name (e.g. "CanTransferUserAssets"),
	// value is its JSON-encoded payload (e.g. {"asset_id": "..."}).
	Permissions map[Name]json.RawMessage
}

// NewAccount constructs an Account with no roles or direct grants.
func NewAccount(id AccountId) *Account {
	return &Account{
		Id:          id,
		Metadata:    map[Name]json.RawMessage{},
		Roles:       map[RoleId]struct{}{},
		Permissions: map[Name]json.RawMessage{},
	}
}

// HasRole reports whether the account carries role.
func (a *Account) HasRole(role RoleId) bool {
	_, ok := a.Roles[role]
	return ok
}

// Clone returns a deep-enough copy of a: a caller that fetched a from a
// Snapshot may freely mutate the clone's fields and maps without affecting
// the snapshot it came from.
func (a *Account) Clone() *Account {
	clone := *a
	clone.Metadata = make(map[Name]json.RawMessage, len(a.Metadata))
	for k, v := range a.Metadata {
		clone.Metadata[k] = v
	}
	clone.Roles = make(map[RoleId]struct{}, len(a.Roles))
	for k := range a.Roles {
		clone.Roles[k] = struct{}{}
	}
	clone.Permissions = make(map[Name]json.RawMessage, len(a.Permissions))
	for k, v := range a.Permissions {
		clone.Permissions[k] = v
	}
	return &clone
}
