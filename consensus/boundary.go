// Package consensus names the ordering boundary this module sits behind.
// Block production, view changes, and peer agreement on block order live
// outside this module — it only applies "what happens inside one block",
// not the protocol that decides which transactions land in it. The two
// interfaces below are what a real consensus implementation would sit on
// either side of.
package consensus

import "github.com/satu-n/iroha/core/types"

// BlockSource hands the next block to commit to whatever applies it
// against the world-state view (core/dispatch, in this module).
type BlockSource interface {
	NextBlock() (*types.Block, error)
}

// BlockSink receives a block once it has been fully applied and its
// Merkle root computed, for whatever the consensus layer does with a
// finalized block (gossip it, persist a vote, advance a view).
type BlockSink interface {
	BlockFinalized(block *types.Block) error
}
