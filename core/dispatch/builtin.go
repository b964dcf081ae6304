package dispatch

import (
	"encoding/json"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

// applyBuiltin mutates tx for every instruction kind except Custom, which
// the caller expands before reaching here. Register and Unregister of
// domains, accounts, asset definitions and assets, Mint, Burn, Transfer,
// the key-value and Grant/Revoke branches emit their DataEvents in causal
// order. Registering a role or a trigger, SetParameter and Upgrade change
// state without emitting any event.
func applyBuiltin(tx *state.InstrTx, authority types.AccountId, instr types.Instruction) error {
	switch instr.Kind {
	case types.InstructionRegister:
		return applyRegister(tx, instr)
	case types.InstructionUnregister:
		return applyUnregister(tx, instr)
	case types.InstructionMint:
		return applyMint(tx, instr)
	case types.InstructionBurn:
		return applyBurn(tx, instr)
	case types.InstructionTransfer:
		return applyTransfer(tx, authority, instr)
	case types.InstructionSetKeyValue:
		return applySetKeyValue(tx, instr)
	case types.InstructionRemoveKeyValue:
		return applyRemoveKeyValue(tx, instr)
	case types.InstructionGrant:
		return applyGrant(tx, instr)
	case types.InstructionRevoke:
		return applyRevoke(tx, instr)
	case types.InstructionSetParameter:
		return applySetParameter(tx, instr)
	case types.InstructionUpgrade:
		return applyUpgrade(tx, instr)
	case types.InstructionLog:
		return nil // logging has no WSV effect; the host handles emission
	default:
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unsupported instruction kind %q", instr.Kind)
	}
}

func applyRegister(tx *state.InstrTx, instr types.Instruction) error {
	switch instr.Registrable {
	case types.RegistrableDomain:
		d := instr.RegisterDomain
		if _, ok := tx.View().Domain(d.Id); ok {
			return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: domain %s already registered", d.Id)
		}
		tx.PutDomain(d)
		tx.Emit(types.DataEvent{Kind: types.EventDomainCreated, Subject: d.Id.String()})
		return nil
	case types.RegistrableAccount:
		a := instr.RegisterAccount
		if _, ok := tx.View().Account(a.Id); ok {
			return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: account %s already registered", a.Id)
		}
		if _, ok := tx.View().Domain(a.Id.Domain); !ok {
			return ledgererr.New(ledgererr.KindNotFound, "dispatch: domain %s not found", a.Id.Domain)
		}
		tx.PutAccount(a)
		tx.Emit(types.DataEvent{Kind: types.EventAccountCreated, Subject: a.Id.String()})
		return nil
	case types.RegistrableAssetDefinition:
		def := instr.RegisterAssetDef
		if _, ok := tx.View().AssetDefinition(def.Id); ok {
			return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: asset definition %s already registered", def.Id)
		}
		tx.PutAssetDefinition(def)
		tx.Emit(types.DataEvent{Kind: types.EventAssetDefCreated, Subject: def.Id.String()})
		return nil
	case types.RegistrableAsset:
		asset := instr.RegisterAsset
		if _, ok := tx.View().Asset(asset.Id); ok {
			return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: asset %s already registered", asset.Id)
		}
		tx.PutAsset(asset)
		tx.Emit(types.DataEvent{Kind: types.EventAssetCreated, Subject: asset.Id.String()})
		return nil
	case types.RegistrableRole:
		r := instr.RegisterRole
		tx.PutRole(r)
		return nil
	case types.RegistrableTrigger:
		t := instr.RegisterTrigger
		tx.PutTrigger(t)
		return nil
	default:
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unknown registrable kind %q", instr.Registrable)
	}
}

func applyUnregister(tx *state.InstrTx, instr types.Instruction) error {
	switch instr.Registrable {
	case types.RegistrableDomain:
		var id types.DomainId
		if err := json.Unmarshal(instr.UnregisterId, &id); err != nil {
			return ledgererr.Wrap(ledgererr.KindDecode, err)
		}
		if _, ok := tx.View().Domain(id); !ok {
			return notFound("dispatch: domain %s not found", id)
		}
		tx.DeleteDomain(id)
		tx.Emit(types.DataEvent{Kind: types.EventDomainDeleted, Subject: id.String()})
		return nil
	case types.RegistrableAccount:
		var id types.AccountId
		if err := json.Unmarshal(instr.UnregisterId, &id); err != nil {
			return ledgererr.Wrap(ledgererr.KindDecode, err)
		}
		if _, ok := tx.View().Account(id); !ok {
			return notFound("dispatch: account %s not found", id)
		}
		tx.DeleteAccount(id)
		tx.Emit(types.DataEvent{Kind: types.EventAccountDeleted, Subject: id.String()})
		return nil
	default:
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unsupported unregister target %q", instr.Registrable)
	}
}

func applyMint(tx *state.InstrTx, instr types.Instruction) error {
	def, ok := tx.View().AssetDefinition(instr.TargetAsset.Definition)
	if !ok {
		return notFound("dispatch: asset definition %s not found", instr.TargetAsset.Definition)
	}
	def = def.Clone()
	if !def.CanMint() {
		return ledgererr.New(ledgererr.KindNotPermitted, "dispatch: asset definition %s is not mintable", def.Id)
	}
	asset, ok := tx.View().Asset(instr.TargetAsset)
	if ok {
		asset = asset.Clone()
	} else {
		asset = types.NewNumericAsset(instr.TargetAsset, def.Type.Scale)
	}
	newValue, err := asset.Value.Numeric.CheckedAdd(instr.NumericDelta, def.Type.Max)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	newTotal, err := def.TotalQuantity.CheckedAdd(instr.NumericDelta, def.Type.Max)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	asset.Value.Numeric = newValue
	def.TotalQuantity = newTotal
	def.RecordMint()
	tx.PutAsset(asset)
	tx.PutAssetDefinition(def)
	tx.Emit(types.DataEvent{Kind: types.EventAssetChanged, Subject: asset.Id.String()})
	return nil
}

func applyBurn(tx *state.InstrTx, instr types.Instruction) error {
	def, ok := tx.View().AssetDefinition(instr.TargetAsset.Definition)
	if !ok {
		return notFound("dispatch: asset definition %s not found", instr.TargetAsset.Definition)
	}
	def = def.Clone()
	asset, ok := tx.View().Asset(instr.TargetAsset)
	if !ok {
		return notFound("dispatch: asset %s not found", instr.TargetAsset)
	}
	asset = asset.Clone()
	newValue, err := asset.Value.Numeric.CheckedSub(instr.NumericDelta)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	newTotal, err := def.TotalQuantity.CheckedSub(instr.NumericDelta)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	asset.Value.Numeric = newValue
	def.TotalQuantity = newTotal
	tx.PutAsset(asset)
	tx.PutAssetDefinition(def)
	tx.Emit(types.DataEvent{Kind: types.EventAssetChanged, Subject: asset.Id.String()})
	return nil
}

// applyTransfer moves Quantity from Source to a mirrored asset under
// Destination, auto-registering the destination account and asset if
// either is missing. The executor's ValidateInstruction already confirmed
// authority may perform that auto-registration (CanRegisterAccountInDomain
// or destination-domain ownership) before this function is reached.
func applyTransfer(tx *state.InstrTx, authority types.AccountId, instr types.Instruction) error {
	def, ok := tx.View().AssetDefinition(instr.Source.Definition)
	if !ok {
		return notFound("dispatch: asset definition %s not found", instr.Source.Definition)
	}
	source, ok := tx.View().Asset(instr.Source)
	if !ok {
		return notFound("dispatch: asset %s not found", instr.Source)
	}
	source = source.Clone()
	if _, ok := tx.View().Account(instr.Destination); !ok {
		tx.PutAccount(types.NewAccount(instr.Destination))
		tx.Emit(types.DataEvent{Kind: types.EventAccountCreated, Subject: instr.Destination.String()})
	}
	destId := types.AssetId{Definition: instr.Source.Definition, Account: instr.Destination}
	dest, ok := tx.View().Asset(destId)
	if ok {
		dest = dest.Clone()
	} else {
		dest = types.NewNumericAsset(destId, def.Type.Scale)
		tx.Emit(types.DataEvent{Kind: types.EventAssetCreated, Subject: destId.String()})
	}

	newSource, err := source.Value.Numeric.CheckedSub(instr.Quantity)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	newDest, err := dest.Value.Numeric.CheckedAdd(instr.Quantity, def.Type.Max)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindNumericOverflow, err)
	}
	source.Value.Numeric = newSource
	dest.Value.Numeric = newDest
	tx.PutAsset(source)
	tx.PutAsset(dest)
	tx.Emit(types.DataEvent{Kind: types.EventAssetChanged, Subject: source.Id.String()})
	tx.Emit(types.DataEvent{Kind: types.EventAssetChanged, Subject: dest.Id.String()})
	return nil
}

func applySetKeyValue(tx *state.InstrTx, instr types.Instruction) error {
	var accountId types.AccountId
	if err := json.Unmarshal(instr.KVTarget, &accountId); err == nil {
		account, ok := tx.View().Account(accountId)
		if !ok {
			return notFound("dispatch: account %s not found", accountId)
		}
		account = account.Clone()
		account.Metadata[instr.KVKey] = instr.KVValue
		tx.PutAccount(account)
		tx.Emit(types.DataEvent{Kind: types.EventMetadataSet, Subject: accountId.String()})
		return nil
	}
	return ledgererr.New(ledgererr.KindDecode, "dispatch: unsupported SetKeyValue target")
}

func applyRemoveKeyValue(tx *state.InstrTx, instr types.Instruction) error {
	var accountId types.AccountId
	if err := json.Unmarshal(instr.KVTarget, &accountId); err == nil {
		account, ok := tx.View().Account(accountId)
		if !ok {
			return notFound("dispatch: account %s not found", accountId)
		}
		account = account.Clone()
		delete(account.Metadata, instr.KVKey)
		tx.PutAccount(account)
		tx.Emit(types.DataEvent{Kind: types.EventMetadataRemoved, Subject: accountId.String()})
		return nil
	}
	return ledgererr.New(ledgererr.KindDecode, "dispatch: unsupported RemoveKeyValue target")
}

func applyGrant(tx *state.InstrTx, instr types.Instruction) error {
	account, ok := tx.View().Account(instr.GrantHolder)
	if !ok {
		return notFound("dispatch: account %s not found", instr.GrantHolder)
	}
	account = account.Clone()
	switch instr.Grantable {
	case types.GrantableRole:
		account.Roles[instr.GrantRole] = struct{}{}
		tx.Emit(types.DataEvent{Kind: types.EventRoleGranted, Subject: instr.GrantHolder.String()})
	case types.GrantablePermission:
		account.Permissions[instr.GrantPerm] = instr.GrantPermArgs
		tx.Emit(types.DataEvent{Kind: types.EventPermGranted, Subject: instr.GrantHolder.String()})
	default:
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unknown grantable kind %q", instr.Grantable)
	}
	tx.PutAccount(account)
	return nil
}

func applyRevoke(tx *state.InstrTx, instr types.Instruction) error {
	account, ok := tx.View().Account(instr.GrantHolder)
	if !ok {
		return notFound("dispatch: account %s not found", instr.GrantHolder)
	}
	account = account.Clone()
	switch instr.Grantable {
	case types.GrantableRole:
		delete(account.Roles, instr.GrantRole)
		tx.Emit(types.DataEvent{Kind: types.EventRoleRevoked, Subject: instr.GrantHolder.String()})
	case types.GrantablePermission:
		delete(account.Permissions, instr.GrantPerm)
		tx.Emit(types.DataEvent{Kind: types.EventPermRevoked, Subject: instr.GrantHolder.String()})
	default:
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unknown grantable kind %q", instr.Grantable)
	}
	tx.PutAccount(account)
	return nil
}

func applySetParameter(tx *state.InstrTx, instr types.Instruction) error {
	var value int64
	if err := json.Unmarshal(instr.ParameterValue, &value); err != nil {
		return ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	params := tx.View().Parameters()
	if !params.Set(state.ParameterName(instr.ParameterName), value) {
		return ledgererr.New(ledgererr.KindNotFound, "dispatch: unknown parameter %q", instr.ParameterName)
	}
	tx.SetParameters(params)
	return nil
}

// applyUpgrade records the proposed executor module's bytes on the WSV.
// It does not validate or run the module: that happens one layer up, in
// executor.Migrate, which the block builder calls once this instruction's
// enclosing block commits, swapping the live Policy only if migrate
// succeeds .
func applyUpgrade(tx *state.InstrTx, instr types.Instruction) error {
	if len(instr.ExecutorWasm) == 0 {
		return ledgererr.New(ledgererr.KindDecode, "dispatch: Upgrade instruction carries no executor bytes")
	}
	tx.SetExecutorModule(instr.ExecutorWasm)
	return nil
}
