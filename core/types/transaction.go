package types

import (
	"time"

	"github.com/satu-n/iroha/crypto"
)

// TransactionPayload is the unsigned body of a transaction: who authored
// it, what it runs, and the admission constraints the queue enforces
// before it ever reaches a block.
type TransactionPayload struct {
	Authority   AccountId
	Executable  Executable
	CreatedAt   time.Time
	// TimeToLive bounds how long the queue holds the transaction before
	// expiring it unconfirmed. Zero means the queue's configured default.
	TimeToLive time.Duration
	// Nonce distinguishes otherwise-identical payloads from the same
	// authority submitted in quick succession.
	Nonce uint32
	Metadata map[Name]string
}

// TransactionSignature pairs a signing public key with its signature over
// the payload hash, so a transaction can carry more than one signer during
// multisig aggregation (see package mempool and package multisig).
type TransactionSignature struct {
	PublicKey string // bech32, matches crypto.PublicKey.String()
	Signature []byte
}

// SignedTransaction is what the queue admits and a block ultimately
// commits: a payload plus the signature set gathered for it so far.
type SignedTransaction struct {
	Payload    TransactionPayload
	Signatures []TransactionSignature
	// Hash is the content hash of Payload, computed once at construction and
	// used as the queue's dedup/merge key.
	Hash crypto.Hash
}

// AddSignature appends sig if no signature from the same public key is
// already present, returning whether it was added. This is the merge rule
// the queue applies when a duplicate-hash submission carries a new signer
// .
func (t *SignedTransaction) AddSignature(sig TransactionSignature) bool {
	for _, existing := range t.Signatures {
		if existing.PublicKey == sig.PublicKey {
			return false
		}
	}
	t.Signatures = append(t.Signatures, sig)
	return true
}

// Expired reports whether the transaction has outlived its TTL as of now.
func (t *SignedTransaction) Expired(now time.Time, defaultTTL time.Duration) bool {
	ttl := t.Payload.TimeToLive
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return now.After(t.Payload.CreatedAt.Add(ttl))
}
