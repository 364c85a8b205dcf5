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

// Package treasury implements the fund custody vault: deposits, the single
// governance-gated disbursement path, manager withdrawals to allowlisted
// recipients and the time-delayed emergency sweep.
package treasury

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/roles"
)

const (
	// MinEmergencyDelay is the floor of the emergency withdrawal delay.
	MinEmergencyDelay uint64 = 24 * 60 * 60
	// DefaultEmergencyDelay is two days.
	DefaultEmergencyDelay uint64 = 2 * MinEmergencyDelay
)

// Config holds the vault's tunables.
type Config struct {
	EmergencyDelay uint64 // seconds between request and execution of an emergency sweep
}

// DefaultConfig returns the default vault configuration.
func DefaultConfig() *Config {
	return &Config{EmergencyDelay: DefaultEmergencyDelay}
}

// Disbursement is a ledger entry of a governance-authorized payment.
type Disbursement struct {
	ID        uint64
	Amount    *uint256.Int
	Provider  common.Address
	Details   string
	Timestamp uint64
	Executed  bool // always true, entries are only recorded for executed payments
}

func (d *Disbursement) copy() *Disbursement {
	cpy := *d
	cpy.Amount = d.Amount.Clone()
	return &cpy
}

// EmergencyRequest is the pending state of the two-phase emergency sweep.
type EmergencyRequest struct {
	Requested   bool
	RequestTime uint64
}

// Stats summarizes the vault's books.
type Stats struct {
	Held          *uint256.Int // current balance
	Deposited     *uint256.Int // cumulative deposits
	Spent         *uint256.Int // cumulative disbursements
	Withdrawn     *uint256.Int // cumulative manager and emergency withdrawals
	Disbursements uint64
	Contributors  uint64
	Paused        bool
}

// Contribution is a contributor's cumulative deposit total.
type Contribution struct {
	Contributor common.Address
	Amount      *uint256.Int
}

// State is the persisted form of the vault.
type State struct {
	Governance     common.Address
	Held           *uint256.Int
	Deposited      *uint256.Int
	Spent          *uint256.Int
	Withdrawn      *uint256.Int
	Contributions  []Contribution
	Disbursements  []*Disbursement
	Recipients     []common.Address
	Paused         bool
	Emergency      EmergencyRequest
	EmergencyDelay uint64
	Grants         []roles.Grant
}
