package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/satu-n/iroha/config"
	"github.com/satu-n/iroha/consensus"
	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/crypto"
	"github.com/satu-n/iroha/executor"
	"github.com/satu-n/iroha/genesis"
	"github.com/satu-n/iroha/kura"
	"github.com/satu-n/iroha/mempool"
	"github.com/satu-n/iroha/multisig"
	"github.com/satu-n/iroha/observability/logging"
	"github.com/satu-n/iroha/trigger"
	"github.com/satu-n/iroha/wasmhost"
)

func main() {
	configFile := flag.String("config", "./config.toml", "path to the node configuration file")
	genesisFlag := flag.String("genesis", "", "path to a genesis transaction JSON file, overriding the configured GenesisPath")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("IROHA_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger := logging.Setup(cfg.ChainId, env)

	validatorKey, err := loadValidatorKey(cfg)
	if err != nil {
		logger.Error("failed to load validator key", logging.KindError("Initialization"), slog.Any("error", err))
		os.Exit(1)
	}

	genesisDomain, genesisAccount, err := genesisIdentity(cfg.ChainId, validatorKey)
	if err != nil {
		logger.Error("failed to derive genesis identity", slog.Any("error", err))
		os.Exit(1)
	}

	mgr := state.NewManager(state.DefaultParameters())

	la := &lazyApplier{}
	native := executor.NewNativePolicy(la)
	dispatcher := dispatch.NewDispatcher(native)
	la.d = dispatcher

	genesisPath := strings.TrimSpace(*genesisFlag)
	if genesisPath == "" {
		genesisPath = cfg.GenesisPath
	}
	raw, err := genesis.Load(genesisPath)
	if err != nil {
		logger.Error("failed to load genesis transaction", slog.Any("error", err))
		os.Exit(1)
	}
	if err := genesis.Apply(mgr, dispatcher, raw, genesisAccount); err != nil {
		logger.Error("failed to apply genesis block", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("genesis applied", slog.String("chain_id", raw.ChainId), slog.Int("instructions", len(raw.Instructions)))

	runtime := wasmhost.NewRuntime()
	if executorBytes, err := raw.ExecutorBytes(genesisDir(genesisPath)); err != nil {
		logger.Error("failed to read genesis executor module", slog.Any("error", err))
		os.Exit(1)
	} else if len(executorBytes) > 0 {
		limits := wasmhost.Limits{
			Fuel:         cfg.ExecutorFuelDefault,
			MemoryBytes:  int64(cfg.ExecutorMemoryDefault),
			MaxInstances: 1,
			MaxMemories:  1,
			MaxTables:    1,
		}
		cursors := dispatch.NewCursorStore()
		host, err := executor.Migrate(runtime, executorBytes, limits, nil)
		if err != nil {
			logger.Error("genesis executor module failed to install", slog.Any("error", err))
			os.Exit(1)
		}
		wasmExecutor := executor.NewExecutor(host, la, cursors, func(level int32, message string) {
			logger.Debug("wasm log", slog.Int("level", int(level)), slog.String("message", message))
		})
		dispatcher = dispatch.NewDispatcher(wasmExecutor)
		la.d = dispatcher
	}

	checker := multisig.NewChecker()

	store := newMemoryStore()
	ledgerSeen := func(hash string) bool { return store.Seen(hash) }

	queue := mempool.NewQueue(mempool.Config{
		MaxInQueue: int(mgr.View().Parameters().QueueMaxTransactionsInQueue),
		MaxInBlock: int(mgr.View().Parameters().QueueMaxTransactionsInBlock),
		TTL:        mgr.View().Parameters().QueueTransactionTTL,
		Future:     mgr.View().Parameters().QueueFutureThreshold,
	}, checker, ledgerSeen)

	// engine is wired for the block-production loop to drive once a real
	// consensus.BlockSource is plugged in behind dispatcher; a standalone
	// node with no block production never calls ProcessPass.
	engine := trigger.NewEngine(la, nil)

	logger.Info("node initialized",
		slog.String("chain_id", cfg.ChainId),
		slog.String("data_dir", cfg.DataDir),
		slog.String("genesis_domain", genesisDomain.String()),
		slog.Int("queue_depth", queue.Len()),
		slog.Int("triggers_active", len(mgr.View().AllTriggers())),
	)

	waitForShutdown(logger, engine)
}

// lazyApplier breaks the construction cycle between dispatch.NewDispatcher
// (which needs a Policy) and executor.NewNativePolicy (which needs
// something satisfying executor.Applier so multisig approvals can re-enter
// Apply under the multisig account's elevated authority). d is nil until
// the real Dispatcher is constructed immediately afterward.
type lazyApplier struct {
	mu sync.RWMutex
	d  *dispatch.Dispatcher
}

func (l *lazyApplier) Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error {
	l.mu.RLock()
	d := l.d
	l.mu.RUnlock()
	return d.Apply(tx, authority, instr, header)
}

func (l *lazyApplier) Query(view state.Snapshot, authority types.AccountId, q types.Query) (*types.QueryResult, error) {
	l.mu.RLock()
	d := l.d
	l.mu.RUnlock()
	return d.Query(view, authority, q)
}

// memoryStore is an in-memory stand-in for kura.Store that also answers
// the queue's already-committed lookup, sufficient for local development;
// a real deployment swaps in a durable implementation behind the same
// interface.
type memoryStore struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
	blocks []*types.Block
}

func newMemoryStore() *memoryStore {
	return &memoryStore{hashes: make(map[string]struct{})}
}

func (s *memoryStore) Seen(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok
}

func (s *memoryStore) Append(block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range block.Transactions {
		s.hashes[tx.Hash.String()] = struct{}{}
	}
	s.blocks = append(s.blocks, block)
	return nil
}

func (s *memoryStore) BlockAt(height uint64) (*types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if height == 0 || height > uint64(len(s.blocks)) {
		return nil, fmt.Errorf("irohad: no block at height %d", height)
	}
	return s.blocks[height-1], nil
}

func (s *memoryStore) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.blocks))
}

var (
	_ kura.Store          = (*memoryStore)(nil)
	_ consensus.BlockSink = blockSinkFunc(nil)
)

type blockSinkFunc func(block *types.Block) error

func (f blockSinkFunc) BlockFinalized(block *types.Block) error { return f(block) }

func loadValidatorKey(cfg *config.Config) (*crypto.PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(cfg.ValidatorKey), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("irohad: no validator key configured")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("irohad: decode validator key: %w", err)
	}
	return crypto.PrivateKeyFromBytes(raw)
}

func genesisIdentity(chainId string, key *crypto.PrivateKey) (types.DomainId, types.AccountId, error) {
	name := strings.TrimSpace(chainId)
	if name == "" {
		name = "genesis"
	}
	domain, err := types.NewDomainId(name)
	if err != nil {
		return types.DomainId{}, types.AccountId{}, err
	}
	account := types.NewAccountId(domain, key.Public().String())
	return domain, account, nil
}

func genesisDir(genesisPath string) string {
	idx := strings.LastIndexByte(genesisPath, '/')
	if idx < 0 {
		return "."
	}
	return genesisPath[:idx]
}

// waitForShutdown blocks until an interrupt or termination signal arrives.
// engine has nothing to drive yet without a real consensus.BlockSource, but
// is accepted here so its lifetime is visibly tied to the node's.
func waitForShutdown(logger *slog.Logger, engine *trigger.Engine) {
	_ = engine
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	logger.Info("shutting down", slog.String("signal", received.String()))
}
