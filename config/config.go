package config

import (
	"encoding/hex"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/satu-n/iroha/crypto"
)

// Config is the node's on-disk configuration: where its data and genesis
// live, what it listens on, and the default resource limits a freshly
// compiled WASM module runs under until a genesis SetParameter overrides
// them.
type Config struct {
	ChainId        string   `toml:"ChainId"`
	DataDir        string   `toml:"DataDir"`
	GenesisPath    string   `toml:"GenesisPath"`
	ListenAddress  string   `toml:"ListenAddress"`
	RPCAddress     string   `toml:"RPCAddress"`
	ValidatorKey   string   `toml:"ValidatorKey"`
	BootstrapPeers []string `toml:"BootstrapPeers"`

	ExecutorFuelDefault        uint64 `toml:"ExecutorFuelDefault"`
	ExecutorMemoryDefault      uint32 `toml:"ExecutorMemoryDefault"`
	SmartContractFuelDefault   uint64 `toml:"SmartContractFuelDefault"`
	SmartContractMemoryDefault uint32 `toml:"SmartContractMemoryDefault"`
}

// Load reads the configuration at path, generating a fresh default file
// (with a new validator key) if none exists yet. An existing file missing
// its ValidatorKey gets one generated and persisted back.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.ValidatorKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		cfg.ValidatorKey = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file suitable
// for a single local node.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ChainId:        "iroha-local",
		DataDir:        "./iroha-data",
		GenesisPath:    "./genesis.json",
		ListenAddress:  ":6001",
		RPCAddress:     ":8080",
		ValidatorKey:   hex.EncodeToString(key.Bytes()),
		BootstrapPeers: []string{},

		ExecutorFuelDefault:        500_000_000,
		ExecutorMemoryDefault:      32 * 1024 * 1024,
		SmartContractFuelDefault:   100_000_000,
		SmartContractMemoryDefault: 16 * 1024 * 1024,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
