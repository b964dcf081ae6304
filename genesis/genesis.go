// Package genesis loads and applies the raw genesis transaction that seeds
// a chain's first block: chain identity, the initial executor module, the
// instruction list that populates domains/accounts/roles, and the starting
// topology and system parameters .
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

// RawGenesisTransaction is the on-disk JSON shape of the genesis file.
type RawGenesisTransaction struct {
	ChainId      string              `json:"chain_id"`
	ExecutorPath string              `json:"executor_path"`
	Instructions []types.Instruction `json:"instructions"`
	Topology     []string            `json:"topology"` // peer public keys, opaque to this module
	Parameters   map[string]int64    `json:"parameters"`
}

// Load reads and decodes a genesis file from path.
func Load(path string) (*RawGenesisTransaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindInitialization, err)
	}
	var g RawGenesisTransaction
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindDecode, err)
	}
	if g.ChainId == "" {
		return nil, ledgererr.New(ledgererr.KindInitialization, "genesis: chain_id is required")
	}
	if len(g.Instructions) == 0 {
		return nil, ledgererr.New(ledgererr.KindInitialization, "genesis: at least one instruction is required")
	}
	return &g, nil
}

// ExecutorBytes reads the executor module named by ExecutorPath, resolved
// relative to dir (the genesis file's own directory).
func (g *RawGenesisTransaction) ExecutorBytes(dir string) ([]byte, error) {
	if g.ExecutorPath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(dir + string(os.PathSeparator) + g.ExecutorPath)
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindInitialization, err)
	}
	return raw, nil
}

// Apply runs the genesis instruction list as block 0: every instruction
// under a single genesis account authority, committed atomically. A
// failure at any instruction aborts the whole genesis block — a chain
// never starts from a partially-applied genesis.
func Apply(mgr *state.Manager, d *dispatch.Dispatcher, g *RawGenesisTransaction, genesisAccount types.AccountId) error {
	params := mgr.View().Parameters()
	for name, value := range g.Parameters {
		if !params.Set(state.ParameterName(name), value) {
			return ledgererr.New(ledgererr.KindInitialization, "genesis: unknown parameter %q", name)
		}
	}

	header := types.BlockHeader{
		Height:    0,
		Timestamp: time.Unix(0, 0).UTC(),
	}
	wtx := mgr.BlockTransaction(header)
	itx := wtx.Transaction()
	itx.SetParameters(params)

	for i, instr := range g.Instructions {
		if err := d.Apply(itx, genesisAccount, instr, header); err != nil {
			wtx.Rollback()
			return fmt.Errorf("genesis: instruction %d: %w", i, err)
		}
	}
	itx.Commit()
	wtx.Commit()
	return nil
}

