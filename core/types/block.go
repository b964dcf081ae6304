package types

import (
	"time"

	"github.com/satu-n/iroha/crypto"
)

// BlockHeader is the committed, hashable summary of one block. The full
// block body (its transactions) is addressed by TransactionsHash and
// retrieved through the kura.Store boundary; the ledger core only ever
// carries headers plus the transactions it just finalized in-memory.
type BlockHeader struct {
	Height           uint64
	PreviousBlockHash crypto.Hash
	TransactionsHash crypto.Hash // Merkle root over the block's committed transactions
	Timestamp        time.Time
	// ConsensusEstimation is an opaque byte blob the consensus layer
	// attaches (view number, round, whatever its protocol needs); the
	// ledger core never interprets it, only stores and forwards it.
	ConsensusEstimation []byte
}

// Block is a committed header plus the transactions it finalizes, in
// commit order.
type Block struct {
	Header       BlockHeader
	Transactions []SignedTransaction
	// Rejected holds transactions that were included in the block's
	// candidate set but failed executor validation, paired with the reason,
	// so clients can distinguish "not yet seen" from "seen and rejected".
	Rejected []RejectedTransaction
}

// RejectedTransaction records why a candidate transaction did not commit.
type RejectedTransaction struct {
	Transaction SignedTransaction
	Reason      string
}

// IdentityHash computes the block's identity hash over its header fields. This is
// distinct from TransactionsHash: the former identifies the block, the
// latter commits to its contents.
func (h BlockHeader) IdentityHash() crypto.Hash {
	buf := make([]byte, 0, 8+crypto.HashSize*2+8)
	buf = appendUint64(buf, h.Height)
	buf = append(buf, h.PreviousBlockHash.Bytes()...)
	buf = append(buf, h.TransactionsHash.Bytes()...)
	buf = appendUint64(buf, uint64(h.Timestamp.UnixNano()))
	return crypto.HashOf(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	for i := 7; i >= 0; i-- {
		buf = append(buf, byte(v>>(uint(i)*8)))
	}
	return buf
}
