// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the node configuration from a TOML file, environment
// variables and command line flags, in increasing order of priority.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"

	"github.com/mccoysc/validatordao/genesis"
	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/treasury"
)

// Config is the full node configuration.
type Config struct {
	Node       NodeConfig
	HTTP       HTTPConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Genesis    GenesisConfig
	Governance GovernanceConfig
	Treasury   TreasuryConfig
}

// NodeConfig holds storage settings.
type NodeConfig struct {
	DataDir  string // database directory, unused by the memory engine
	DBEngine string // memory, leveldb or pebble
	Cache    int    // database cache in megabytes
	Handles  int    // open file handles
}

// HTTPConfig holds the JSON-RPC endpoint settings.
type HTTPConfig struct {
	Enabled     bool
	Host        string
	Port        int
	CORSDomains []string
	RPS         float64 // requests per second, zero is unlimited
	Burst       int
	Dev         bool // expose the unauthenticated dev transaction API
}

// LogConfig holds logging settings.
type LogConfig struct {
	Verbosity  int    // 0 (silent) to 5 (trace)
	JSON       bool   // JSON records instead of terminal format
	File       string // rotate records into this file instead of stderr
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool
	Addr    string // host:port of the expvar endpoint
}

// Allocation is a genesis balance.
type Allocation struct {
	Address common.Address
	Amount  string // decimal
}

// GenesisConfig describes the initial state of a new node.
type GenesisConfig struct {
	Deployer   common.Address // component addresses derive from it
	Admin      common.Address
	Manager    common.Address // optional treasury manager
	Validators []common.Address
	Recipients []common.Address // manager withdrawal allowlist
	Funds      []Allocation
}

// GovernanceConfig holds the initial governance parameters.
type GovernanceConfig struct {
	VotingPeriod    uint64 // seconds
	MinimumQuorum   uint64 // percent
	MinimumApproval uint64 // percent
}

// TreasuryConfig holds the initial vault parameters.
type TreasuryConfig struct {
	EmergencyDelay uint64 // seconds
}

// Default returns the default configuration.
func Default() *Config {
	params := governance.DefaultParams()
	return &Config{
		Node: NodeConfig{
			DataDir:  "data",
			DBEngine: "pebble",
			Cache:    64,
			Handles:  128,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8645,
		},
		Log: LogConfig{
			Verbosity:  3,
			MaxSizeMB:  100,
			MaxBackups: 10,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:6060",
		},
		Governance: GovernanceConfig{
			VotingPeriod:    params.VotingPeriod,
			MinimumQuorum:   params.MinimumQuorum,
			MinimumApproval: params.MinimumApproval,
		},
		Treasury: TreasuryConfig{
			EmergencyDelay: treasury.DefaultEmergencyDelay,
		},
	}
}

// Load reads the TOML file at path on top of the defaults and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		err = toml.NewDecoder(bufio.NewReader(f)).DisallowUnknownFields().Decode(cfg)
		if err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, fmt.Errorf("%s: %s", path, strict.String())
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dump writes cfg as TOML.
func Dump(w io.Writer, cfg *Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(cfg)
}

// GovernanceParams returns the governance parameters of cfg.
func (c *Config) GovernanceParams() *governance.Params {
	return &governance.Params{
		VotingPeriod:    c.Governance.VotingPeriod,
		MinimumQuorum:   c.Governance.MinimumQuorum,
		MinimumApproval: c.Governance.MinimumApproval,
	}
}

// VaultConfig returns the treasury configuration of cfg.
func (c *Config) VaultConfig() *treasury.Config {
	return &treasury.Config{EmergencyDelay: c.Treasury.EmergencyDelay}
}

// BootstrapConfig converts the genesis section and the initial parameters
// for genesis.Bootstrap.
func (c *Config) BootstrapConfig() (*genesis.BootstrapConfig, error) {
	out := &genesis.BootstrapConfig{
		Deployer:   c.Genesis.Deployer,
		Admin:      c.Genesis.Admin,
		Manager:    c.Genesis.Manager,
		Validators: c.Genesis.Validators,
		Recipients: c.Genesis.Recipients,
		Governance: c.GovernanceParams(),
		Treasury:   c.VaultConfig(),
	}
	for _, alloc := range c.Genesis.Funds {
		v, err := alloc.Value()
		if err != nil {
			return nil, err
		}
		out.Funds = append(out.Funds, genesis.Allocation{Address: alloc.Address, Amount: v})
	}
	return out, nil
}
