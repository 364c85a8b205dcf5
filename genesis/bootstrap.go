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

package genesis

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
	"github.com/mccoysc/validatordao/store"
	"github.com/mccoysc/validatordao/treasury"
)

var (
	// ErrComponentAllocation is returned for genesis funds addressed to the
	// governance engine or the vault.
	ErrComponentAllocation = errors.New("genesis funds cannot be allocated to a component")

	// ErrSnapshotMismatch is returned when the stored component snapshots
	// were not taken at the same journal position.
	ErrSnapshotMismatch = errors.New("component snapshots are inconsistent")
)

// Allocation is a genesis balance.
type Allocation struct {
	Address common.Address
	Amount  *uint256.Int
}

// BootstrapConfig holds the initial state of the DAO
type BootstrapConfig struct {
	// Deployer determines the component addresses
	Deployer common.Address

	// Admin administers both components
	Admin common.Address

	// Manager optionally receives the treasury manager role
	Manager common.Address

	// Validators is the initial validator set
	Validators []common.Address

	// Recipients is the initial manager withdrawal allowlist
	Recipients []common.Address

	// Funds are minted before the components are created
	Funds []Allocation

	Governance *governance.Params
	Treasury   *treasury.Config
}

// DefaultBootstrapConfig returns the default bootstrap configuration
func DefaultBootstrapConfig() *BootstrapConfig {
	return &BootstrapConfig{
		Governance: governance.DefaultParams(),
		Treasury:   treasury.DefaultConfig(),
	}
}

// System is a running DAO: the runtime and the two components in it.
type System struct {
	Runtime *ledger.Runtime
	Bank    *ledger.Bank
	Vault   *treasury.Vault
	Engine  *governance.Engine
}

// Bootstrap creates the components at their deterministic addresses. With a
// database whose snapshots exist, their state is restored; otherwise the
// genesis role setup runs as an admin call, journaled like any other
// operation. db may be nil for an ephemeral system.
func Bootstrap(cfg *BootstrapConfig, clock ledger.Clock, db *store.Store) (*System, error) {
	if cfg.Deployer == (common.Address{}) {
		return nil, errors.New("genesis deployer not set")
	}
	govAddr, vaultAddr := PredictGovernanceAddress(cfg.Deployer), PredictVaultAddress(cfg.Deployer)

	bank := ledger.NewBank()
	for _, alloc := range cfg.Funds {
		// The vault's books only follow funds that arrive through deposits.
		if alloc.Address == govAddr || alloc.Address == vaultAddr {
			return nil, fmt.Errorf("%w: genesis allocation to component %s", ErrComponentAllocation, alloc.Address.Hex())
		}
		bank.Mint(alloc.Address, alloc.Amount)
	}
	vault, err := treasury.New(vaultAddr, bank, cfg.Admin, govAddr, cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}
	engine, err := governance.New(govAddr, vault, cfg.Admin, cfg.Validators, cfg.Governance)
	if err != nil {
		return nil, fmt.Errorf("create governance: %w", err)
	}
	var sink ledger.Sink
	if db != nil {
		sink = db
	}
	sys := &System{
		Runtime: ledger.NewRuntime(bank, clock, sink),
		Bank:    bank,
		Vault:   vault,
		Engine:  engine,
	}
	sys.Runtime.Track(vault)
	sys.Runtime.Track(engine)
	if db != nil {
		restored, err := sys.load(db)
		if err != nil {
			return nil, err
		}
		sys.persistOnCommit(db)
		if restored {
			return sys, nil
		}
	}
	if err := sys.setup(cfg); err != nil {
		return nil, fmt.Errorf("genesis setup: %w", err)
	}
	if db != nil {
		if err := sys.save(db, sys.Runtime.Sequence()); err != nil {
			return nil, err
		}
	}
	log.Info("Bootstrapped DAO", "governance", govAddr, "vault", vaultAddr, "validators", engine.ValidatorCount(), "admin", cfg.Admin)
	return sys, nil
}

func (s *System) setup(cfg *BootstrapConfig) error {
	return s.Runtime.Call(cfg.Admin, func(env *ledger.Env) error {
		if cfg.Manager != (common.Address{}) {
			if err := s.Vault.GrantRole(env, roles.ManagerRole, cfg.Manager); err != nil {
				return err
			}
		}
		for _, r := range cfg.Recipients {
			if err := s.Vault.SetRecipient(env, r, true); err != nil {
				return err
			}
		}
		return nil
	})
}
