package types

import "encoding/json"

// Domain is the top-level namespace owning accounts and asset definitions.
type Domain struct {
	Id       DomainId
	Owner    AccountId
	Metadata map[Name]json.RawMessage
	Logo     string
}

// NewDomain constructs a Domain owned by owner, with empty metadata.
func NewDomain(id DomainId, owner AccountId) *Domain {
	return &Domain{Id: id, Owner: owner, Metadata: map[Name]json.RawMessage{}}
}

// Clone returns a deep-enough copy of d: a caller that fetched d from a
// Snapshot may freely mutate the clone's fields (including Metadata)
// without affecting the snapshot it came from.
func (d *Domain) Clone() *Domain {
	clone := *d
	clone.Metadata = make(map[Name]json.RawMessage, len(d.Metadata))
	for k, v := range d.Metadata {
		clone.Metadata[k] = v
	}
	return &clone
}
