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

// Package governance implements the validator DAO: a validator set voting one
// vote each on funding proposals, which on approval are paid by the vault.
package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/roles"
)

const (
	MinVotingPeriod uint64 = 60 * 60           // 1 hour
	MaxVotingPeriod uint64 = 30 * 24 * 60 * 60 // 30 days
)

// Params holds the governance parameters. They are read when a proposal is
// created or executed, never captured per proposal, so changing them affects
// proposals that are already open.
type Params struct {
	VotingPeriod    uint64 // voting window in seconds
	MinimumQuorum   uint64 // percentage of validators that must vote, 1-100
	MinimumApproval uint64 // percentage of cast votes in favour, 51-100
}

// DefaultParams returns the default governance parameters.
func DefaultParams() *Params {
	return &Params{
		VotingPeriod:    7 * 24 * 60 * 60, // 7 days
		MinimumQuorum:   51,
		MinimumApproval: 51,
	}
}

// Validate range checks the parameters.
func (p *Params) Validate() error {
	if p.VotingPeriod < MinVotingPeriod || p.VotingPeriod > MaxVotingPeriod {
		return ErrInvalidVotingPeriod
	}
	if p.MinimumQuorum < 1 || p.MinimumQuorum > 100 {
		return ErrInvalidQuorum
	}
	if p.MinimumApproval <= 50 || p.MinimumApproval > 100 {
		return ErrInvalidApproval
	}
	return nil
}

// ProposalState is the lifecycle state of a proposal at a point in time.
type ProposalState uint8

const (
	StateOpen           ProposalState = iota // accepting votes
	StateClosedPending                       // window elapsed, awaiting execution
	StateExecutedPassed                      // executed and paid
	StateExecutedFailed                      // executed and rejected
)

func (s ProposalState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosedPending:
		return "closed-pending"
	case StateExecutedPassed:
		return "executed-passed"
	case StateExecutedFailed:
		return "executed-failed"
	default:
		return "unknown"
	}
}

// Proposal is a funding request voted on by the validators.
type Proposal struct {
	ID           uint64         // sequential, starting at 1
	Proposer     common.Address // validator that created it
	Description  string         // what is being funded
	Amount       *uint256.Int   // requested funds
	Payee        common.Address // receiver of the funds
	Details      string         // payee details passed to the vault
	VotesFor     uint64         // affirmative votes
	VotesAgainst uint64         // negative votes
	StartTime    uint64         // creation time
	EndTime      uint64         // StartTime + voting period
	Executed     bool           // one-way execution latch
	Passed       bool           // meaningful only once executed
	Disbursement uint64         // vault ledger id of the payment, if passed
	FromCatalog  bool           // created through ProposeOption
	OptionID     uint64         // catalog option, if FromCatalog
	Units        uint64         // units of the option, if FromCatalog
}

// State returns the lifecycle state of the proposal at time now.
func (p *Proposal) State(now uint64) ProposalState {
	switch {
	case p.Executed && p.Passed:
		return StateExecutedPassed
	case p.Executed:
		return StateExecutedFailed
	case now <= p.EndTime:
		return StateOpen
	default:
		return StateClosedPending
	}
}

func (p *Proposal) copy() *Proposal {
	cpy := *p
	cpy.Amount = p.Amount.Clone()
	return &cpy
}

// Vote is a validator's recorded choice on a proposal.
type Vote struct {
	HasVoted bool
	Support  bool
}

// Ballot is a persisted vote.
type Ballot struct {
	Proposal uint64
	Voter    common.Address
	Support  bool
}

// VotingStats is the tally of a proposal evaluated against the current
// parameters and validator count.
type VotingStats struct {
	TotalVotes         uint64
	RequiredQuorum     uint64
	ApprovalPercentage uint64
	QuorumReached      bool
}

// Option is a catalog entry proposals can reference.
type Option struct {
	ID       uint64         // sequential, starting at 1
	Provider common.Address // paid when a proposal for it passes
	Name     string
	Details  string
	Price    *uint256.Int // price per unit
	Active   bool         // cleared once, never set again
}

func (o *Option) copy() *Option {
	cpy := *o
	cpy.Price = o.Price.Clone()
	return &cpy
}

// State is the persisted form of the engine.
type State struct {
	Params    Params
	Grants    []roles.Grant
	Proposals []*Proposal
	Ballots   []Ballot
	Options   []*Option
}
