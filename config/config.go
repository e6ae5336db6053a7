package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the daemon configuration.
type Config struct {
	// RPCAddress is the listen address for the JSON-RPC server.
	RPCAddress string `toml:"RPCAddress"`
	// DataDir holds the LevelDB escrow registry.
	DataDir string `toml:"DataDir"`
	// Environment tags log output (e.g. "dev", "prod").
	Environment string `toml:"Environment"`
	// LegacyFundsCheck keeps the narrow first-entry deposit comparison of
	// earlier deployments instead of full-aggregate equality.
	LegacyFundsCheck bool `toml:"LegacyFundsCheck"`
	// RejectDeadlineShortening refuses milestone extensions that move a
	// deadline backwards.
	RejectDeadlineShortening bool `toml:"RejectDeadlineShortening"`
}

// Load reads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./escrowd-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "dev"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: write default %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode default: %w", err)
	}
	return cfg, nil
}
