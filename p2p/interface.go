// Package p2p names the gossip boundary peer transport sits behind:
// signed transaction relay, block propagation, and topology changes cross
// it, but this module implements neither wire protocol nor peer discovery
// — both are out of scope by design. No package in this module imports
// the interfaces below; they name the seam a real transport sits behind.
package p2p

// Envelope is one framed message crossing the peer transport: a kind tag
// plus its opaque, already-encoded body. What "encoded" means (RLP, JSON,
// gRPC) is a transport concern this package does not fix.
type Envelope struct {
	Kind    byte
	Payload []byte
}

const (
	KindTransaction byte = iota
	KindBlock
	KindTopologyChange
)

// Broadcaster sends an Envelope to every connected peer.
type Broadcaster interface {
	Broadcast(msg *Envelope) error
}

// Receiver processes one Envelope a peer delivered to this node.
type Receiver interface {
	Receive(msg *Envelope) error
}
