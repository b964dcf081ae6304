package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureScheme enumerates the signature algorithms a public key may carry.
// Only one is implemented today (secp256k1, matching this codebase's address
// derivation), but the enum keeps the trigger/executor ABI stable if a
// second scheme is ever added.
type SignatureScheme string

// SchemeSecp256k1 is the only signature scheme this ledger issues keys for.
const SchemeSecp256k1 SignatureScheme = "secp256k1"

// hrp is the bech32 human-readable prefix used for every public key,
// regardless of the domain the holding account lives in — the identifier
// grammar in this ledger pairs a bare public key with a domain name (see
// core/types.AccountId), so the encoding itself carries no domain
// information and needs no per-domain prefix.
const hrp = "ed"

// PublicKey is an account's on-chain identity. Per the data model, an
// account has no address distinct from its key: "the public_key *is* the
// identity."
type PublicKey struct {
	scheme SignatureScheme
	key    *ecdsa.PublicKey
}

// PrivateKey signs on behalf of a PublicKey.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GeneratePrivateKey creates a new secp256k1 keypair.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes restores a private key from its raw scalar bytes.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the raw scalar encoding of the private key.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.key)
}

// Public returns the key's public counterpart.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{scheme: SchemeSecp256k1, key: &k.key.PublicKey}
}

// Sign produces a 65-byte recoverable signature (r, s, v) over a 32-byte
// digest, following this codebase's transaction-signing convention.
func (k *PrivateKey) Sign(digest Hash) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest[:], k.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign: %w", err)
	}
	return sig, nil
}

// Bytes returns the uncompressed SEC1 encoding of the public key.
func (p *PublicKey) Bytes() []byte {
	return ethcrypto.FromECDSAPub(p.key)
}

// Scheme reports the signature algorithm this key uses.
func (p *PublicKey) Scheme() SignatureScheme {
	return p.scheme
}

// String renders the public key as bech32, matching this codebase's
// human-readable address encoding but over the raw key bytes rather than a
// derived 20-byte address, since the key itself is the identity.
func (p *PublicKey) String() string {
	conv, err := bech32.ConvertBits(p.Bytes(), 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(hrp, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Verify checks sig (65-byte recoverable form) against digest and reports
// whether it recovers to this public key.
func (p *PublicKey) Verify(digest Hash, sig []byte) bool {
	if len(sig) != 65 {
		return false
	}
	recovered, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return false
	}
	return recovered.X.Cmp(p.key.X) == 0 && recovered.Y.Cmp(p.key.Y) == 0
}

// PublicKeyFromBytes parses the uncompressed SEC1 encoding produced by
// PublicKey.Bytes.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	key, err := ethcrypto.UnmarshalPubkey(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key: %w", err)
	}
	return &PublicKey{scheme: SchemeSecp256k1, key: key}, nil
}

// DecodePublicKey parses the bech32 form produced by PublicKey.String.
func DecodePublicKey(s string) (*PublicKey, error) {
	prefix, decoded, err := bech32.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid bech32 public key: %w", err)
	}
	if prefix != hrp {
		return nil, fmt.Errorf("crypto: unexpected public key prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key bits: %w", err)
	}
	return PublicKeyFromBytes(conv)
}
