package types

import (
	"encoding/json"
	"math/big"
)

// InstructionKind tags the variant carried by an Instruction box.
type InstructionKind string

const (
	InstructionRegister       InstructionKind = "Register"
	InstructionUnregister     InstructionKind = "Unregister"
	InstructionMint           InstructionKind = "Mint"
	InstructionBurn           InstructionKind = "Burn"
	InstructionTransfer       InstructionKind = "Transfer"
	InstructionSetKeyValue    InstructionKind = "SetKeyValue"
	InstructionRemoveKeyValue InstructionKind = "RemoveKeyValue"
	InstructionGrant          InstructionKind = "Grant"
	InstructionRevoke         InstructionKind = "Revoke"
	InstructionExecuteTrigger InstructionKind = "ExecuteTrigger"
	InstructionSetParameter   InstructionKind = "SetParameter"
	InstructionUpgrade        InstructionKind = "Upgrade"
	InstructionLog            InstructionKind = "Log"
	InstructionCustom         InstructionKind = "Custom"
)

// RegistrableKind names the entity kind a Register/Unregister instruction
// targets.
type RegistrableKind string

const (
	RegistrableDomain          RegistrableKind = "Domain"
	RegistrableAccount         RegistrableKind = "Account"
	RegistrableAssetDefinition RegistrableKind = "AssetDefinition"
	RegistrableAsset           RegistrableKind = "Asset"
	RegistrableRole            RegistrableKind = "Role"
	RegistrableTrigger         RegistrableKind = "Trigger"
)

// GrantableKind names what a Grant/Revoke instruction moves between holder
// and target.
type GrantableKind string

const (
	GrantablePermission GrantableKind = "Permission"
	GrantableRole       GrantableKind = "Role"
)

// Instruction is the sum type dispatched by core/dispatch. Exactly one of
// its payload fields is populated, selected by Kind — a closed box rather
// than a Go interface, so it serializes as a single JSON record and
// crosses the WASM ABI as one tagged value.
type Instruction struct {
	Kind InstructionKind

	// Register / Unregister
	Registrable RegistrableKind
	RegisterDomain     *Domain
	RegisterAccount    *Account
	RegisterAssetDef   *AssetDefinition
	RegisterAsset      *Asset
	RegisterRole       *Role
	RegisterTrigger    *Trigger
	UnregisterId       json.RawMessage // encoded identifier matching Registrable

	// Mint / Burn
	TargetAsset  AssetId
	NumericDelta Numeric
	StoreKey     Name
	StoreValue   json.RawMessage

	// Transfer
	Source      AssetId
	Destination AccountId
	Quantity    Numeric

	// SetKeyValue / RemoveKeyValue
	KVTarget json.RawMessage // identifier of the entity holding metadata
	KVKey    Name
	KVValue  json.RawMessage

	// Grant / Revoke
	Grantable     GrantableKind
	GrantHolder   AccountId
	GrantRole     RoleId
	GrantPerm     Name
	GrantPermArgs json.RawMessage

	// ExecuteTrigger
	Trigger TriggerId

	// SetParameter
	ParameterName  Name
	ParameterValue json.RawMessage

	// Upgrade
	ExecutorWasm []byte

	// Log
	LogLevel   string
	LogMessage string

	// Custom — an application-defined instruction outside the built-in set,
	// dispatched to the executor's custom-instruction hook rather than a
	// built-in handler.
	CustomPayload json.RawMessage
}

// MintQuantity builds a Mint instruction against a numeric asset.
func MintQuantity(asset AssetId, amount Numeric) Instruction {
	return Instruction{Kind: InstructionMint, TargetAsset: asset, NumericDelta: amount}
}

// BurnQuantity builds a Burn instruction against a numeric asset.
func BurnQuantity(asset AssetId, amount Numeric) Instruction {
	return Instruction{Kind: InstructionBurn, TargetAsset: asset, NumericDelta: amount}
}

// TransferQuantity builds a Transfer instruction moving amount of asset
// source's balance to destination's mirrored asset, auto-registering the
// destination asset if it does not yet exist .
func TransferQuantity(source AssetId, destination AccountId, amount Numeric) Instruction {
	return Instruction{Kind: InstructionTransfer, Source: source, Destination: destination, Quantity: amount}
}

// maxBigOrNil builds AssetDefinitionType.Max from an optional decimal
// string, returning nil for an empty or malformed one. Nothing in this
// module calls it.
func maxBigOrNil(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil
	}
	return v
}
