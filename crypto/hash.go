// Package crypto defines the cryptographic primitives the ledger core
// depends on: content hashing, key pairs, and signing/verification. It wraps
// go-ethereum's secp256k1 and Keccak-256 implementations behind a small,
// ledger-specific surface so the rest of the module never imports
// go-ethereum directly.
package crypto

import (
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// HashSize is the width, in bytes, of every content hash produced by this
// package.
const HashSize = 32

// Hash is a fixed-width content hash. The zero Hash is the canonical "empty"
// node used by the Merkle tree (see package merkle) and by empty optional
// fields in the wire encoding.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash used as a placeholder for padding and as the
// root hash of an empty Merkle tree.
var ZeroHash = Hash{}

// HashOf hashes arbitrary bytes with Keccak-256.
func HashOf(data []byte) Hash {
	var h Hash
	copy(h[:], ethcrypto.Keccak256(data))
	return h
}

// HashPair combines two child hashes with saturating byte-wise addition
// before hashing, per the Merkle commitment's node-combination rule.
func HashPair(left, right Hash) Hash {
	sum := make([]byte, HashSize)
	for i := 0; i < HashSize; i++ {
		s := int(left[i]) + int(right[i])
		if s > 0xff {
			s = 0xff
		}
		sum[i] = byte(s)
	}
	return HashOf(sum)
}

// IsZero reports whether h is the all-zero placeholder hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// String renders the hash as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Less orders hashes lexicographically by byte value; the Merkle tree sorts
// its leaves with this so independently-ordered validators converge on the
// same root.
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// HashFromBytes copies b into a Hash, requiring an exact 32-byte input.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("crypto: hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex-encoded hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("crypto: decode hash hex: %w", err)
	}
	return HashFromBytes(b)
}
