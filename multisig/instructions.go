package multisig

import (
	"encoding/json"
	"time"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/observability/metrics"
)

// Applier is the narrow slice of the dispatcher the overlay needs to run a
// quorum-reached proposal's stored instructions under the multisig
// account's own authority.
type Applier interface {
	Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error
}

// CustomKind discriminates the three multisig custom instructions carried
// in Instruction::Custom(Json).
type CustomKind string

const (
	CustomRegister CustomKind = "multisig.Register"
	CustomPropose  CustomKind = "multisig.Propose"
	CustomApprove  CustomKind = "multisig.Approve"
)

// Envelope is the outer shape every multisig Custom payload decodes to
// before dispatching on Type.
type Envelope struct {
	Type     CustomKind      `json:"type"`
	Register *RegisterPayload `json:"register,omitempty"`
	Propose  *ProposePayload  `json:"propose,omitempty"`
	Approve  *ApprovePayload  `json:"approve,omitempty"`
}

type RegisterPayload struct {
	Account     types.AccountId `json:"account"`
	Signatories []Signatory     `json:"signatories"`
	Quorum      uint32          `json:"quorum"`
	TTLMillis   int64           `json:"ttl_ms"`
}

type ProposePayload struct {
	Account      types.AccountId     `json:"account"`
	Instructions []types.Instruction `json:"instructions"`
}

type ApprovePayload struct {
	Account         types.AccountId `json:"account"`
	InstructionsHash string         `json:"instructions_hash"`
}

// DomainOwner resolves the owning account of account.Domain, the target
// authority Register elevates to.
func DomainOwner(view state.Snapshot, domain types.DomainId) (types.AccountId, error) {
	d, ok := view.Domain(domain)
	if !ok {
		return types.AccountId{}, ledgererr.New(ledgererr.KindNotFound, "multisig: domain %s not found", domain)
	}
	return d.Owner, nil
}

// HandleRegister creates the multisig account, writes its policy metadata,
// creates its signatory role, and grants that role to every signatory.
// The caller (executor.NativePolicy) has already confirmed authority is
// the domain owner before invoking this.
func HandleRegister(tx *state.InstrTx, p RegisterPayload) error {
	if _, exists := tx.View().Account(p.Account); exists {
		return ledgererr.New(ledgererr.KindNotPermitted, "multisig: account %s already registered", p.Account)
	}
	account := types.NewAccount(p.Account)

	sigRaw, _ := json.Marshal(p.Signatories)
	quorumRaw, _ := json.Marshal(p.Quorum)
	ttlRaw, _ := json.Marshal(p.TTLMillis)
	account.Metadata[types.Name(metaSignatories)] = sigRaw
	account.Metadata[types.Name(metaQuorum)] = quorumRaw
	account.Metadata[types.Name(metaTTLMillis)] = ttlRaw

	roleId := roleForAccount(p.Account)
	account.Roles[roleId] = struct{}{}
	tx.PutAccount(account)
	tx.Emit(types.DataEvent{Kind: types.EventAccountCreated, Subject: p.Account.String()})

	role := types.NewRole(roleId)
	tx.PutRole(role)

	for _, s := range p.Signatories {
		signatory, ok := tx.View().Account(s.Account)
		if ok {
			signatory = signatory.Clone()
		} else {
			signatory = types.NewAccount(s.Account)
		}
		signatory.Roles[roleId] = struct{}{}
		tx.PutAccount(signatory)
		tx.Emit(types.DataEvent{Kind: types.EventRoleGranted, Subject: s.Account.String()})
	}
	metrics.Multisig().IncRegistered()
	return nil
}

// HasSignatoryRole reports whether authority holds account's multisig
// signatory role — the precondition Propose and Approve both require.
func HasSignatoryRole(view state.Snapshot, account types.AccountId, authority types.AccountId) bool {
	holder, ok := view.Account(authority)
	if !ok {
		return false
	}
	return holder.HasRole(roleForAccount(account))
}

// HandlePropose records a fresh proposal under account's well-known
// metadata keys, seeded with the proposer's own approval.
func HandlePropose(tx *state.InstrTx, proposer types.AccountId, p ProposePayload) error {
	account, ok := tx.View().Account(p.Account)
	if !ok {
		return ledgererr.New(ledgererr.KindNotFound, "multisig: account %s not found", p.Account)
	}
	account = account.Clone()
	hash := instructionsHash(p.Instructions)
	if _, exists := loadProposal(account, hash); exists {
		return ledgererr.New(ledgererr.KindNotPermitted, "multisig: proposal %s already exists", hash)
	}
	prop := &proposal{
		hash:         hash,
		Instructions: p.Instructions,
		ProposedAtMs: time.Now().UnixMilli(),
		Approvals:    map[string]struct{}{proposer.String(): {}},
	}
	storeProposal(account, prop)
	tx.PutAccount(account)
	metrics.Multisig().IncProposed()
	return nil
}

// HandleApprove adds approver's vote to the named proposal. If the
// combined weight now meets quorum and the proposal has not expired, it
// elevates authority to the multisig account and applies every stored
// instruction in order through applier, then deletes the proposal keys
// regardless of outcome (executed or expired).
func HandleApprove(tx *state.InstrTx, approver types.AccountId, p ApprovePayload, now time.Time, applier Applier, header types.BlockHeader) error {
	account, ok := tx.View().Account(p.Account)
	if !ok {
		return ledgererr.New(ledgererr.KindNotFound, "multisig: account %s not found", p.Account)
	}
	account = account.Clone()
	policy, ok := loadPolicy(account)
	if !ok {
		return errNoMultisigPolicy
	}
	prop, ok := loadProposal(account, p.InstructionsHash)
	if !ok {
		return ledgererr.New(ledgererr.KindNotFound, "multisig: proposal %s not found", p.InstructionsHash)
	}

	expired := now.After(time.UnixMilli(prop.ProposedAtMs).Add(policy.TTL))
	if expired {
		deleteProposal(account, prop.hash)
		tx.PutAccount(account)
		metrics.Multisig().IncExpired()
		return nil
	}

	prop.Approvals[approver.String()] = struct{}{}
	metrics.Multisig().IncApproved()
	approvedWeight := policy.approvedWeight(prop.Approvals)
	metrics.Multisig().ObserveQuorumGap(float64(policy.Quorum) - float64(approvedWeight))
	if approvedWeight < policy.Quorum {
		storeProposal(account, prop)
		tx.PutAccount(account)
		return nil
	}

	deleteProposal(account, prop.hash)
	tx.PutAccount(account)
	for _, instr := range prop.Instructions {
		if err := applier.Apply(tx, p.Account, instr, header); err != nil {
			return err
		}
	}
	tx.Emit(types.DataEvent{Kind: types.EventTriggerFired, Subject: p.Account.String()})
	metrics.Multisig().IncExecuted()
	return nil
}

func instructionsHash(instrs []types.Instruction) string {
	raw, _ := json.Marshal(instrs)
	return jsonDigest(raw)
}

// InstructionsHash exposes the deterministic digest Propose stores a
// proposal under, so a caller assembling a matching Approve instruction
// can name the right proposal without having read it back first.
func InstructionsHash(instrs []types.Instruction) string {
	return instructionsHash(instrs)
}
