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

package governance

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mccoysc/validatordao/roles"
)

// Snapshot captures the engine's full state.
func (e *Engine) Snapshot() *State {
	st := &State{
		Params: e.params,
		Grants: e.roles.Grants(),
	}
	for _, p := range e.proposals {
		st.Proposals = append(st.Proposals, p.copy())
		// Ballots are emitted in sorted voter order for a stable encoding.
		for _, voter := range sortedVoters(e.votes[p.ID]) {
			st.Ballots = append(st.Ballots, Ballot{Proposal: p.ID, Voter: voter, Support: e.votes[p.ID][voter]})
		}
	}
	for _, opt := range e.options {
		st.Options = append(st.Options, opt.copy())
	}
	return st
}

// Restore replaces the engine's state with st.
func (e *Engine) Restore(st *State) error {
	if st == nil {
		return errors.New("nil governance state")
	}
	if err := st.Params.Validate(); err != nil {
		return err
	}
	reg := roles.NewRegistry()
	for _, g := range st.Grants {
		reg.Grant(g.Role, g.Principal)
	}
	if reg.Count(roles.ValidatorRole) == 0 {
		return ErrNoValidators
	}
	if reg.Count(roles.AdminRole) == 0 {
		return ErrLastAdmin
	}
	proposals := make([]*Proposal, 0, len(st.Proposals))
	votes := make(map[uint64]map[common.Address]bool, len(st.Proposals))
	for i, p := range st.Proposals {
		if p.ID != uint64(i)+1 {
			return fmt.Errorf("proposal %d stored at position %d", p.ID, i+1)
		}
		proposals = append(proposals, p.copy())
		votes[p.ID] = make(map[common.Address]bool)
	}
	for _, b := range st.Ballots {
		ballots, ok := votes[b.Proposal]
		if !ok {
			return fmt.Errorf("ballot for unknown proposal %d", b.Proposal)
		}
		ballots[b.Voter] = b.Support
	}
	options := make([]*Option, 0, len(st.Options))
	for i, opt := range st.Options {
		if opt.ID != uint64(i)+1 {
			return fmt.Errorf("option %d stored at position %d", opt.ID, i+1)
		}
		options = append(options, opt.copy())
	}
	e.params = st.Params
	e.roles = reg
	e.validatorCount = uint64(reg.Count(roles.ValidatorRole))
	e.proposals = proposals
	e.votes = votes
	e.options = options
	validatorGauge.Update(int64(e.validatorCount))
	return nil
}

// Checkpoint captures the state for a rollback of the current call.
func (e *Engine) Checkpoint() func() {
	st := e.Snapshot()
	return func() {
		if err := e.Restore(st); err != nil {
			log.Error("Failed to roll back governance state", "err", err)
		}
	}
}

func sortedVoters(ballots map[common.Address]bool) []common.Address {
	voters := make([]common.Address, 0, len(ballots))
	for v := range ballots {
		voters = append(voters, v)
	}
	return roles.SortAddresses(voters)
}
