// Package multisig implements the multisig authorization overlay: three
// custom instructions (Register, Propose, Approve) carried inside
// Instruction::Custom(Json), plus the executor policy and queue signature-
// condition check that give them meaning. It is a pure data-model overlay
// — every multisig account is an ordinary Account, and every pending
// proposal lives under well-known metadata keys .
package multisig

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/crypto"
)

// jsonDigest hashes a JSON-encoded instruction list down to the stable
// hex string used as a proposal's well-known metadata key suffix.
func jsonDigest(raw []byte) string {
	return crypto.HashOf(raw).String()
}

// Well-known metadata key prefixes the overlay reads and writes directly
// on the multisig account "Pending-multisig-proposal"
// entity description.
const (
	metaSignatories   = "multisig/signatories"
	metaQuorum        = "multisig/quorum"
	metaTTLMillis     = "multisig/transaction_ttl_ms"
	proposalInstrFmt  = "multisig/proposals/%s/instructions"
	proposalAtFmt     = "multisig/proposals/%s/proposed_at_ms"
	proposalApprovals = "multisig/proposals/%s/approvals"
)

func roleForAccount(account types.AccountId) types.RoleId {
	return types.RoleId{Name: types.Name("multisig_signatory_" + account.String())}
}

// Signatory is one entry in a multisig account's signatory set: an account
// paired with its approval weight.
type Signatory struct {
	Account types.AccountId `json:"account"`
	Weight  uint32          `json:"weight"`
}

// Policy describes a multisig account's quorum rule, stored as account
// metadata under metaSignatories/metaQuorum/metaTTLMillis.
type Policy struct {
	Signatories []Signatory   `json:"signatories"`
	Quorum      uint32        `json:"quorum"`
	TTL         time.Duration `json:"ttl"`
}

func loadPolicy(account *types.Account) (*Policy, bool) {
	raw, ok := account.Metadata[types.Name(metaSignatories)]
	if !ok {
		return nil, false
	}
	var sigs []Signatory
	if err := json.Unmarshal(raw, &sigs); err != nil {
		return nil, false
	}
	var quorum uint32
	if q, ok := account.Metadata[types.Name(metaQuorum)]; ok {
		json.Unmarshal(q, &quorum)
	}
	var ttlMs int64
	if t, ok := account.Metadata[types.Name(metaTTLMillis)]; ok {
		json.Unmarshal(t, &ttlMs)
	}
	return &Policy{Signatories: sigs, Quorum: quorum, TTL: time.Duration(ttlMs) * time.Millisecond}, true
}

// proposal is the decoded form of the three well-known proposal keys for
// one instructions-hash H.
type proposal struct {
	hash         string
	Instructions []types.Instruction    `json:"instructions"`
	ProposedAtMs int64                  `json:"proposed_at_ms"`
	Approvals    map[string]struct{}    `json:"approvals"`
}

func loadProposal(account *types.Account, hash string) (*proposal, bool) {
	instrKey := types.Name(fmt.Sprintf(proposalInstrFmt, hash))
	atKey := types.Name(fmt.Sprintf(proposalAtFmt, hash))
	apprKey := types.Name(fmt.Sprintf(proposalApprovals, hash))

	instrRaw, ok := account.Metadata[instrKey]
	if !ok {
		return nil, false
	}
	p := &proposal{hash: hash, Approvals: map[string]struct{}{}}
	if err := json.Unmarshal(instrRaw, &p.Instructions); err != nil {
		return nil, false
	}
	if atRaw, ok := account.Metadata[atKey]; ok {
		json.Unmarshal(atRaw, &p.ProposedAtMs)
	}
	if apprRaw, ok := account.Metadata[apprKey]; ok {
		json.Unmarshal(apprRaw, &p.Approvals)
	}
	return p, true
}

func storeProposal(account *types.Account, p *proposal) {
	instrKey := types.Name(fmt.Sprintf(proposalInstrFmt, p.hash))
	atKey := types.Name(fmt.Sprintf(proposalAtFmt, p.hash))
	apprKey := types.Name(fmt.Sprintf(proposalApprovals, p.hash))

	instrRaw, _ := json.Marshal(p.Instructions)
	atRaw, _ := json.Marshal(p.ProposedAtMs)
	apprRaw, _ := json.Marshal(p.Approvals)
	account.Metadata[instrKey] = instrRaw
	account.Metadata[atKey] = atRaw
	account.Metadata[apprKey] = apprRaw
}

func deleteProposal(account *types.Account, hash string) {
	delete(account.Metadata, types.Name(fmt.Sprintf(proposalInstrFmt, hash)))
	delete(account.Metadata, types.Name(fmt.Sprintf(proposalAtFmt, hash)))
	delete(account.Metadata, types.Name(fmt.Sprintf(proposalApprovals, hash)))
}

func (p *Policy) approvedWeight(approvals map[string]struct{}) uint32 {
	var sum uint32
	for _, s := range p.Signatories {
		if _, ok := approvals[s.Account.String()]; ok {
			sum += s.Weight
		}
	}
	return sum
}

// errNoMultisigPolicy is returned when an account referenced by a multisig
// custom instruction has no stored signatory policy.
var errNoMultisigPolicy = ledgererr.New(ledgererr.KindNotFound, "multisig: account has no multisig policy")
