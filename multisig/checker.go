package multisig

import (
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

// Checker satisfies mempool.SignatureChecker: it decides whether a
// transaction carries enough signatures to leave the queue. An ordinary
// account needs exactly one signature verifying under its own public key
// (already checked by the caller before the signature reaches the queue —
// Checker only confirms one is present); a multisig account needs the
// combined weight of its registered signatories' keys to meet quorum.
type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

func (Checker) CheckSignatureCondition(view state.Snapshot, tx *types.SignedTransaction) error {
	authority := tx.Payload.Authority
	account, ok := view.Account(authority)
	if !ok {
		return ledgererr.New(ledgererr.KindNotFound, "multisig: authority %s not found", authority)
	}
	policy, ok := loadPolicy(account)
	if !ok {
		if len(tx.Signatures) == 0 {
			return ledgererr.New(ledgererr.KindSignatureCondition, "multisig: no signature for %s", authority)
		}
		return nil
	}

	byKey := map[string]uint32{}
	for _, s := range policy.Signatories {
		byKey[s.Account.PublicKey] = s.Weight
	}
	var total uint32
	for _, sig := range tx.Signatures {
		total += byKey[sig.PublicKey]
	}
	if total < policy.Quorum {
		return ledgererr.New(ledgererr.KindSignatureCondition, "multisig: %s has weight %d, needs %d", authority, total, policy.Quorum)
	}
	return nil
}
