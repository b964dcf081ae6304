// Package kura names the durable block storage boundary. This module's
// world-state view and dispatcher operate entirely in memory; persisting
// blocks to disk and replaying them on restart live on the other side of
// this seam, which Store names for a real block store to implement.
package kura

import "github.com/satu-n/iroha/core/types"

// Store durably persists committed blocks and replays them back in order.
type Store interface {
	Append(block *types.Block) error
	BlockAt(height uint64) (*types.Block, error)
	Height() uint64
}
