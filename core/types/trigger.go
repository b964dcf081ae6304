package types

// ExecutableKind tags what a trigger or transaction actually runs.
type ExecutableKind string

const (
	// ExecutableInstructions runs a fixed list of instructions.
	ExecutableInstructions ExecutableKind = "Instructions"
	// ExecutableWasm runs a compiled WASM module through wasmhost.
	ExecutableWasm ExecutableKind = "Wasm"
)

// Executable is the payload a Trigger (or a transaction's payload) runs
// when invoked.
type Executable struct {
	Kind         ExecutableKind
	Instructions []Instruction
	Wasm         []byte
}

// Unlimited marks a Trigger as having no repeat bound.
const Unlimited uint32 = 0

// Trigger binds an Executable to an event filter. It fires at most once per
// matching event per block, and at most Repeats times over its lifetime
// unless Repeats is Unlimited.
type Trigger struct {
	Id         TriggerId
	Action     Executable
	Filter     EventFilter
	Authority  AccountId
	Repeats    uint32
	// firings counts successful invocations so far; compared against
	// Repeats by the trigger engine to decide when to self-unregister.
	firings uint32
}

// NewTrigger constructs a trigger with zero firings recorded.
func NewTrigger(id TriggerId, action Executable, filter EventFilter, authority AccountId, repeats uint32) *Trigger {
	return &Trigger{Id: id, Action: action, Filter: filter, Authority: authority, Repeats: repeats}
}

// Exhausted reports whether the trigger has used up its bounded repeat
// count and should be unregistered.
func (t *Trigger) Exhausted() bool {
	return t.Repeats != Unlimited && t.firings >= t.Repeats
}

// RecordFiring increments the trigger's firing count.
func (t *Trigger) RecordFiring() {
	t.firings++
}

// Firings reports how many times the trigger has successfully run.
func (t *Trigger) Firings() uint32 {
	return t.firings
}

// Clone returns a copy of t: a caller that fetched t from a Snapshot may
// record a firing against the clone without affecting the snapshot it came
// from. Trigger carries no maps, so a value copy suffices.
func (t *Trigger) Clone() *Trigger {
	clone := *t
	return &clone
}
