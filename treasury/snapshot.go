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

package treasury

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/roles"
)

// Snapshot captures the vault's full state.
func (v *Vault) Snapshot() *State {
	st := &State{
		Governance:     v.governance,
		Held:           v.held.Clone(),
		Deposited:      v.deposited.Clone(),
		Spent:          v.spent.Clone(),
		Withdrawn:      v.withdrawn.Clone(),
		Recipients:     v.Recipients(),
		Paused:         v.paused,
		Emergency:      v.emergency,
		EmergencyDelay: v.emergencyDelay,
		Grants:         v.roles.Grants(),
	}
	contributors := make([]common.Address, 0, len(v.contributions))
	for addr := range v.contributions {
		contributors = append(contributors, addr)
	}
	for _, addr := range roles.SortAddresses(contributors) {
		st.Contributions = append(st.Contributions, Contribution{Contributor: addr, Amount: v.contributions[addr].Clone()})
	}
	for _, d := range v.disbursements {
		st.Disbursements = append(st.Disbursements, d.copy())
	}
	return st
}

// Restore replaces the vault's state with st.
func (v *Vault) Restore(st *State) error {
	if st == nil {
		return errors.New("nil vault state")
	}
	if st.EmergencyDelay < MinEmergencyDelay {
		return ErrInvalidDelay
	}
	for i, d := range st.Disbursements {
		if d.ID != uint64(i)+1 {
			return errors.New("disbursement ids are not contiguous")
		}
	}
	reg := roles.NewRegistry()
	for _, g := range st.Grants {
		reg.Grant(g.Role, g.Principal)
	}
	if reg.Count(roles.AdminRole) == 0 {
		return ErrLastAdmin
	}
	v.roles = reg
	v.governance = st.Governance
	v.held = orZero(st.Held)
	v.deposited = orZero(st.Deposited)
	v.spent = orZero(st.Spent)
	v.withdrawn = orZero(st.Withdrawn)
	v.contributions = make(map[common.Address]*uint256.Int, len(st.Contributions))
	for _, c := range st.Contributions {
		v.contributions[c.Contributor] = orZero(c.Amount)
	}
	v.disbursements = v.disbursements[:0]
	for _, d := range st.Disbursements {
		v.disbursements = append(v.disbursements, d.copy())
	}
	v.recipients.Clear()
	for _, r := range st.Recipients {
		v.recipients.Add(r)
	}
	v.paused = st.Paused
	v.emergency = st.Emergency
	v.emergencyDelay = st.EmergencyDelay
	return nil
}

// Checkpoint captures the state for a rollback of the current call.
func (v *Vault) Checkpoint() func() {
	st := v.Snapshot()
	return func() {
		if err := v.Restore(st); err != nil {
			log.Error("Failed to roll back vault state", "err", err)
		}
	}
}

func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x.Clone()
}
