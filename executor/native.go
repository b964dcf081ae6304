package executor

import (
	"encoding/json"
	"time"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/multisig"
)

// NativePolicy is the in-process reference executor: the same policy a
// genesis executor.wasm module would encode, expressed directly in Go so
// the rest of the module (tests, the default chain config) has a working
// executor without depending on a compiled WASM binary. Upgrade still
// replaces it with a real Host-backed Executor at runtime under the same
// upgradability contract — NativePolicy is simply what a freshly
// initialized chain starts with.
type NativePolicy struct {
	dispatcher Applier
	now        func() time.Time
}

// NewNativePolicy builds the reference policy. dispatcher lets the
// multisig overlay re-enter Apply under an elevated authority once a
// proposal reaches quorum.
func NewNativePolicy(dispatcher Applier) *NativePolicy {
	return &NativePolicy{dispatcher: dispatcher, now: time.Now}
}

func (p *NativePolicy) ValidateInstruction(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) dispatch.Verdict {
	if instr.Kind == types.InstructionCustom {
		return p.validateMultisig(tx, authority, instr)
	}
	if err := p.checkBuiltinPermission(tx.View(), authority, instr); err != nil {
		return dispatch.Verdict{Deny: err.(*ledgererr.Error)}
	}
	return dispatch.Verdict{Allow: true}
}

func (p *NativePolicy) ValidateQuery(view state.Snapshot, authority types.AccountId, q types.Query) *ledgererr.Error {
	return nil
}

// DecodeCustom performs the multisig Register/Propose/Approve side effects
// directly (NativePolicy has tx in hand already, unlike the WASM-backed
// Executor which must round-trip through a guest call) and never asks the
// dispatcher to re-apply further children — HandleApprove applies its
// stored instructions itself, under the elevated multisig authority.
func (p *NativePolicy) DecodeCustom(tx *state.InstrTx, authority types.AccountId, payload []byte) ([]types.Instruction, error) {
	var env multisig.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	switch env.Type {
	case multisig.CustomRegister:
		if env.Register == nil {
			return nil, ledgererr.New(ledgererr.KindDecode, "multisig: Register payload missing")
		}
		return nil, multisig.HandleRegister(tx, *env.Register)
	case multisig.CustomPropose:
		if env.Propose == nil {
			return nil, ledgererr.New(ledgererr.KindDecode, "multisig: Propose payload missing")
		}
		return nil, multisig.HandlePropose(tx, authority, *env.Propose)
	case multisig.CustomApprove:
		if env.Approve == nil {
			return nil, ledgererr.New(ledgererr.KindDecode, "multisig: Approve payload missing")
		}
		return nil, multisig.HandleApprove(tx, authority, *env.Approve, p.now(), p.dispatcher, types.BlockHeader{})
	default:
		return nil, ledgererr.New(ledgererr.KindDecode, "executor: unrecognized custom instruction %q", env.Type)
	}
}

func (p *NativePolicy) validateMultisig(tx *state.InstrTx, authority types.AccountId, instr types.Instruction) dispatch.Verdict {
	var env multisig.Envelope
	if err := json.Unmarshal(instr.CustomPayload, &env); err != nil {
		return dispatch.Verdict{Deny: ledgererr.Wrap(ledgererr.KindDecode, err)}
	}
	view := tx.View()
	switch env.Type {
	case multisig.CustomRegister:
		if env.Register == nil {
			return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindDecode, "multisig: Register payload missing")}
		}
		owner, err := multisig.DomainOwner(view, env.Register.Account.Domain)
		if err != nil {
			return dispatch.Verdict{Deny: err.(*ledgererr.Error)}
		}
		if authority != owner {
			elevated := owner
			return dispatch.Verdict{ElevatedAuthority: &elevated}
		}
		return dispatch.Verdict{Allow: true}
	case multisig.CustomPropose:
		if env.Propose == nil {
			return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindDecode, "multisig: Propose payload missing")}
		}
		if !multisig.HasSignatoryRole(view, env.Propose.Account, authority) {
			return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindNotPermitted, "multisig: %s is not a signatory of %s", authority, env.Propose.Account)}
		}
		return dispatch.Verdict{Allow: true}
	case multisig.CustomApprove:
		if env.Approve == nil {
			return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindDecode, "multisig: Approve payload missing")}
		}
		if !multisig.HasSignatoryRole(view, env.Approve.Account, authority) {
			return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindNotPermitted, "multisig: %s is not a signatory of %s", authority, env.Approve.Account)}
		}
		return dispatch.Verdict{Allow: true}
	default:
		return dispatch.Verdict{Deny: ledgererr.New(ledgererr.KindDecode, "executor: unrecognized custom instruction %q", env.Type)}
	}
}

// checkBuiltinPermission gates the built-in instructions that move value or
// expose metadata: a domain owner acting within their own domain always
// passes, otherwise the authority must hold a permission token naming the
// instruction's target. A Transfer whose destination account does not yet
// exist additionally requires CanRegisterAccountInDomain (or ownership of
// the destination's domain) — CanTransferUserAssets alone never authorizes
// auto-registering a new account. Register/Unregister/ExecuteTrigger/
// SetParameter/Upgrade/Log carry their own preconditions inside
// applyBuiltin and are not additionally gated here.
func (p *NativePolicy) checkBuiltinPermission(view state.Snapshot, authority types.AccountId, instr types.Instruction) error {
	switch instr.Kind {
	case types.InstructionMint, types.InstructionBurn:
		return p.requirePermission(view, authority, instr.TargetAsset.Account.Domain, "CanMintAssets", instr.TargetAsset.Definition.String())
	case types.InstructionTransfer:
		if err := p.requirePermission(view, authority, instr.Source.Account.Domain, "CanTransferUserAssets", instr.Source.String()); err != nil {
			return err
		}
		if _, ok := view.Account(instr.Destination); ok {
			return nil
		}
		return p.requirePermission(view, authority, instr.Destination.Domain, "CanRegisterAccountInDomain", instr.Destination.Domain.String())
	case types.InstructionSetKeyValue, types.InstructionRemoveKeyValue:
		return p.requirePermission(view, authority, authority.Domain, "CanSetKeyValueInAccount", string(instr.KVTarget))
	case types.InstructionGrant, types.InstructionRevoke:
		return p.requirePermission(view, authority, authority.Domain, "CanManageRoles", string(instr.GrantRole.Name))
	default:
		return nil
	}
}

func (p *NativePolicy) requirePermission(view state.Snapshot, authority types.AccountId, domain types.DomainId, token string, target string) error {
	if d, ok := view.Domain(domain); ok && d.Owner == authority {
		return nil
	}
	account, ok := view.Account(authority)
	if !ok {
		return ledgererr.New(ledgererr.KindNotFound, "executor: authority %s not found", authority)
	}
	if hasToken(account, token, target) {
		return nil
	}
	for roleId := range account.Roles {
		if role, ok := view.Role(roleId); ok {
			if raw, ok := role.Permissions[types.Name(token)]; ok && matchesTarget(raw, target) {
				return nil
			}
		}
	}
	return ledgererr.New(ledgererr.KindNotPermitted, "executor: %s lacks %s for %s", authority, token, target)
}

func hasToken(account *types.Account, token, target string) bool {
	raw, ok := account.Permissions[types.Name(token)]
	return ok && matchesTarget(raw, target)
}

// matchesTarget treats an empty or wildcard payload as matching any target,
// and otherwise requires the stored payload to name target exactly.
func matchesTarget(raw json.RawMessage, target string) bool {
	var args struct {
		Target string `json:"target"`
	}
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return true
	}
	if args.Target == "" || args.Target == "*" {
		return true
	}
	return args.Target == target
}
