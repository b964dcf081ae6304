package types

import "encoding/json"

// Role is a named, reusable bundle of permission grants. Granting a role to
// an account is equivalent to granting each of its permissions directly.
type Role struct {
	Id          RoleId
	Permissions map[Name]json.RawMessage
}

// NewRole constructs an empty role.
func NewRole(id RoleId) *Role {
	return &Role{Id: id, Permissions: map[Name]json.RawMessage{}}
}

// Clone returns a deep-enough copy of r: a caller that fetched r from a
// Snapshot may freely mutate the clone's Permissions without affecting the
// snapshot it came from.
func (r *Role) Clone() *Role {
	clone := *r
	clone.Permissions = make(map[Name]json.RawMessage, len(r.Permissions))
	for k, v := range r.Permissions {
		clone.Permissions[k] = v
	}
	return &clone
}
