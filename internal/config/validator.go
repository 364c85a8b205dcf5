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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/treasury"
)

// Validate checks the configuration with the same rules the components apply
// to their setters, so a bad file fails at startup rather than at genesis.
func (c *Config) Validate() error {
	switch c.Node.DBEngine {
	case "memory", "leveldb", "pebble":
	default:
		return fmt.Errorf("unknown database engine %q", c.Node.DBEngine)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Log.Verbosity < 0 || c.Log.Verbosity > 5 {
		return fmt.Errorf("invalid log verbosity %d", c.Log.Verbosity)
	}
	if err := c.GovernanceParams().Validate(); err != nil {
		return fmt.Errorf("governance: %w", err)
	}
	if c.Treasury.EmergencyDelay < treasury.MinEmergencyDelay {
		return fmt.Errorf("treasury: %w", treasury.ErrInvalidDelay)
	}
	return c.Genesis.validate()
}

func (g *GenesisConfig) validate() error {
	if g.Deployer == (common.Address{}) {
		return fmt.Errorf("genesis deployer not set")
	}
	if g.Admin == (common.Address{}) {
		return fmt.Errorf("genesis admin not set")
	}
	if len(g.Validators) == 0 {
		return fmt.Errorf("genesis needs at least one validator")
	}
	for i, v := range g.Validators {
		if v == (common.Address{}) {
			return fmt.Errorf("genesis validator %d is the zero address", i)
		}
	}
	for i, alloc := range g.Funds {
		if _, err := alloc.Value(); err != nil {
			return fmt.Errorf("genesis allocation %d: %w", i, err)
		}
	}
	return nil
}

// Value parses the allocation amount.
func (a Allocation) Value() (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(a.Amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q for %s: %w", a.Amount, a.Address.Hex(), err)
	}
	return v, nil
}

// applyEnv overrides cfg with DAO_* environment variables.
func applyEnv(cfg *Config) error {
	cfg.Node.DataDir = getEnvOrDefault("DAO_DATADIR", cfg.Node.DataDir)
	cfg.Node.DBEngine = getEnvOrDefault("DAO_DB_ENGINE", cfg.Node.DBEngine)
	cfg.HTTP.Host = getEnvOrDefault("DAO_HTTP_HOST", cfg.HTTP.Host)
	cfg.Log.File = getEnvOrDefault("DAO_LOG_FILE", cfg.Log.File)
	cfg.Metrics.Addr = getEnvOrDefault("DAO_METRICS_ADDR", cfg.Metrics.Addr)

	if v := os.Getenv("DAO_ADMIN"); v != "" {
		if !common.IsHexAddress(v) {
			return fmt.Errorf("DAO_ADMIN: invalid address %q", v)
		}
		cfg.Genesis.Admin = common.HexToAddress(v)
	}
	if v := os.Getenv("DAO_VALIDATORS"); v != "" {
		var validators []common.Address
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if !common.IsHexAddress(s) {
				return fmt.Errorf("DAO_VALIDATORS: invalid address %q", s)
			}
			validators = append(validators, common.HexToAddress(s))
		}
		cfg.Genesis.Validators = validators
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"DAO_HTTP_PORT", &cfg.HTTP.Port},
		{"DAO_LOG_VERBOSITY", &cfg.Log.Verbosity},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	uints := []struct {
		key string
		dst *uint64
	}{
		{"DAO_VOTING_PERIOD", &cfg.Governance.VotingPeriod},
		{"DAO_MINIMUM_QUORUM", &cfg.Governance.MinimumQuorum},
		{"DAO_MINIMUM_APPROVAL", &cfg.Governance.MinimumApproval},
		{"DAO_EMERGENCY_DELAY", &cfg.Treasury.EmergencyDelay},
	}
	for _, e := range uints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	return nil
}

// getEnvOrDefault retrieves an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
