package types

import "math/big"

// AssetDefinition declares the shape and mint policy of every Asset
// instantiated under it.
type AssetDefinition struct {
	Id          AssetDefinitionId
	Owner       AccountId
	Type        AssetDefinitionType
	Mintable    Mintability
	// everMinted records whether a Mint instruction has ever succeeded
	// against this definition, so MintableOnce can be enforced across the
	// definition's entire lifetime rather than just within one block.
	everMinted bool
	TotalQuantity Numeric
}

// NewNumericAssetDefinition declares a fixed-point asset definition. max may
// be nil for an unbounded supply.
func NewNumericAssetDefinition(id AssetDefinitionId, owner AccountId, scale uint32, max *big.Int, mintable Mintability) *AssetDefinition {
	return &AssetDefinition{
		Id:            id,
		Owner:         owner,
		Type:          AssetDefinitionType{Scale: scale, Max: max},
		Mintable:      mintable,
		TotalQuantity: ZeroNumeric(scale),
	}
}

// NewStoreAssetDefinition declares a key-value store asset definition.
// Store assets are never mintable in the fixed-point sense: SetKeyValue and
// RemoveKeyValue are the only mutators.
func NewStoreAssetDefinition(id AssetDefinitionId, owner AccountId) *AssetDefinition {
	return &AssetDefinition{
		Id:       id,
		Owner:    owner,
		Type:     AssetDefinitionType{Store: true},
		Mintable: MintableNot,
	}
}

// CanMint reports whether a Mint instruction against this definition is
// permitted given its mint policy and history.
func (d *AssetDefinition) CanMint() bool {
	switch d.Mintable {
	case MintableNot:
		return false
	case MintableOnce:
		return !d.everMinted
	default:
		return true
	}
}

// RecordMint marks a successful mint against this definition, closing the
// door on further mints if the policy is MintableOnce.
func (d *AssetDefinition) RecordMint() {
	d.everMinted = true
}

// Clone returns a copy of d: a caller that fetched d from a Snapshot may
// freely mutate the clone's fields (TotalQuantity, everMinted) without
// affecting the snapshot it came from. AssetDefinition carries no maps, so
// a value copy suffices.
func (d *AssetDefinition) Clone() *AssetDefinition {
	clone := *d
	return &clone
}
