package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default well-known identities for local development. Deployments override
// them in the config file; nothing in the protocol depends on these literals.
const (
	defaultProgramID         = "9d6f2c07c61a4a9c6fd5f1f9a07a2e6c32a2c1d04bbf25c82fbe4c32d1a90b55"
	defaultMetadataProgramID = "0b54c8ad2f8a2be2f3c6c5d87c1be6e0f4a5b9731d7a3f5c2e9d0a6b8c4e1f27"
)

// Config carries the deployment-level settings for a market node: where state
// lives and which program identities addresses are derived under.
type Config struct {
	DataDir           string `toml:"DataDir"`
	ProgramID         string `toml:"ProgramID"`
	MetadataProgramID string `toml:"MetadataProgramID"`
	Environment       string `toml:"Environment"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the program identities decode to 32-byte values.
func (c *Config) Validate() error {
	if _, err := decodeID(c.ProgramID); err != nil {
		return fmt.Errorf("config: ProgramID: %w", err)
	}
	if _, err := decodeID(c.MetadataProgramID); err != nil {
		return fmt.Errorf("config: MetadataProgramID: %w", err)
	}
	return nil
}

// ProgramIDBytes returns the decoded market program identity.
func (c *Config) ProgramIDBytes() ([32]byte, error) {
	return decodeID(c.ProgramID)
}

// MetadataProgramIDBytes returns the decoded metadata program identity.
func (c *Config) MetadataProgramIDBytes() ([32]byte, error) {
	return decodeID(c.MetadataProgramID)
}

func decodeID(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./marketdata"
	}
	if strings.TrimSpace(cfg.ProgramID) == "" {
		cfg.ProgramID = defaultProgramID
	}
	if strings.TrimSpace(cfg.MetadataProgramID) == "" {
		cfg.MetadataProgramID = defaultMetadataProgramID
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
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
