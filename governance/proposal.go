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
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/ledger"
)

// CreateProposal opens a funding proposal. The vault balance check is a point
// in time check; the funds are not reserved.
func (e *Engine) CreateProposal(env *ledger.Env, description string, amount *uint256.Int, payee common.Address, details string) (uint64, error) {
	p := &Proposal{
		Description: description,
		Amount:      amount,
		Payee:       payee,
		Details:     details,
	}
	return e.propose(env, p)
}

// ProposeOption opens a proposal buying units of an active catalog option.
// The amount is price times units and the option's provider is the payee.
func (e *Engine) ProposeOption(env *ledger.Env, optionID, units uint64, description string) (uint64, error) {
	if !e.IsValidator(env.Sender) {
		return 0, ErrNotValidator
	}
	opt, ok := e.option(optionID)
	if !ok {
		return 0, ErrInvalidOption
	}
	if !opt.Active {
		return 0, ErrOptionInactive
	}
	if units == 0 {
		return 0, ErrInvalidAmount
	}
	amount, overflow := new(uint256.Int).MulOverflow(opt.Price, uint256.NewInt(units))
	if overflow {
		return 0, ErrInvalidAmount
	}
	p := &Proposal{
		Description: description,
		Amount:      amount,
		Payee:       opt.Provider,
		Details:     opt.Details,
		FromCatalog: true,
		OptionID:    optionID,
		Units:       units,
	}
	return e.propose(env, p)
}

func (e *Engine) propose(env *ledger.Env, p *Proposal) (uint64, error) {
	if !e.IsValidator(env.Sender) {
		return 0, ErrNotValidator
	}
	if p.Payee == (common.Address{}) || p.Payee == e.address || p.Payee == e.vault.Address() {
		return 0, ErrInvalidAddress
	}
	if strings.TrimSpace(p.Description) == "" || strings.TrimSpace(p.Details) == "" {
		return 0, ErrMissingField
	}
	if p.Amount == nil || p.Amount.IsZero() {
		return 0, ErrInvalidAmount
	}
	if available := e.vault.AvailableBalance(); p.Amount.Gt(available) {
		return 0, fmt.Errorf("%w: requested %s, vault holds %s", ErrInsufficientFunds, p.Amount.Dec(), available.Dec())
	}
	p.ID = uint64(len(e.proposals)) + 1
	p.Proposer = env.Sender
	p.Amount = p.Amount.Clone()
	p.StartTime = env.Time
	p.EndTime = env.Time + e.params.VotingPeriod
	e.proposals = append(e.proposals, p)
	e.votes[p.ID] = make(map[common.Address]bool)
	proposalCounter.Inc(1)

	env.Emit(ledger.Notification{Source: source, Op: "ProposalCreated", ID: p.ID, Subject: p.Payee, Amount: p.Amount, Detail: p.Description})
	log.Info("Proposal created", "id", p.ID, "proposer", p.Proposer, "amount", p.Amount.Dec(), "payee", p.Payee, "ends", p.EndTime)
	return p.ID, nil
}

// Vote records the caller's vote on proposal id. Votes are final.
func (e *Engine) Vote(env *ledger.Env, id uint64, support bool) error {
	p, ok := e.proposal(id)
	if !ok {
		return ErrProposalNotFound
	}
	if !e.IsValidator(env.Sender) {
		return ErrNotValidator
	}
	if env.Time > p.EndTime {
		return ErrVotingClosed
	}
	ballots := e.votes[id]
	if _, voted := ballots[env.Sender]; voted {
		return ErrAlreadyVoted
	}
	ballots[env.Sender] = support
	if support {
		p.VotesFor++
	} else {
		p.VotesAgainst++
	}
	voteMeter.Mark(1)

	env.Emit(ledger.Notification{Source: source, Op: "VoteCast", ID: id, Subject: env.Sender, Flag: support})
	log.Debug("Vote cast", "proposal", id, "voter", env.Sender, "support", support, "for", p.VotesFor, "against", p.VotesAgainst)
	return nil
}

// ExecuteProposal closes proposal id after its voting window. If quorum is
// not reached the call fails and the proposal stays unexecuted. Otherwise the
// proposal is latched as executed and, if approved, paid through the vault; a
// vault failure undoes the whole execution.
func (e *Engine) ExecuteProposal(env *ledger.Env, id uint64) (bool, error) {
	p, ok := e.proposal(id)
	if !ok {
		return false, ErrProposalNotFound
	}
	if env.Time <= p.EndTime {
		return false, ErrVotingStillOpen
	}
	if p.Executed {
		return false, ErrAlreadyExecuted
	}
	stats := e.tally(p)
	if !stats.QuorumReached {
		return false, fmt.Errorf("%w: %d of %d votes", ErrQuorumNotReached, stats.TotalVotes, stats.RequiredQuorum)
	}
	p.Executed = true
	if stats.ApprovalPercentage >= e.params.MinimumApproval {
		p.Passed = true
		entry, err := e.vault.Disburse(env.As(e.address), p.Amount, p.Payee, p.Details)
		if err != nil {
			p.Executed, p.Passed = false, false
			log.Warn("Proposal execution reverted", "id", id, "err", err)
			return false, fmt.Errorf("execute proposal %d: %w", id, err)
		}
		p.Disbursement = entry
		passedCounter.Inc(1)
	} else {
		rejectedCounter.Inc(1)
	}
	env.Emit(ledger.Notification{Source: source, Op: "ProposalExecuted", ID: id, Subject: p.Payee, Amount: p.Amount, Flag: p.Passed})
	log.Info("Proposal executed", "id", id, "passed", p.Passed, "for", p.VotesFor, "against", p.VotesAgainst, "approval", stats.ApprovalPercentage)
	return p.Passed, nil
}

// tally evaluates p against the live parameters and validator count. The
// quorum rounds up and the approval percentage rounds down.
func (e *Engine) tally(p *Proposal) VotingStats {
	stats := VotingStats{
		TotalVotes:     p.VotesFor + p.VotesAgainst,
		RequiredQuorum: (e.validatorCount*e.params.MinimumQuorum + 99) / 100,
	}
	if stats.TotalVotes > 0 {
		stats.ApprovalPercentage = p.VotesFor * 100 / stats.TotalVotes
	}
	stats.QuorumReached = stats.TotalVotes >= stats.RequiredQuorum
	return stats
}

func (e *Engine) proposal(id uint64) (*Proposal, bool) {
	if id == 0 || id > uint64(len(e.proposals)) {
		return nil, false
	}
	return e.proposals[id-1], true
}

// Proposal returns a copy of proposal id.
func (e *Engine) Proposal(id uint64) (*Proposal, bool) {
	p, ok := e.proposal(id)
	if !ok {
		return nil, false
	}
	return p.copy(), true
}

// ProposalCount returns the number of proposals ever created.
func (e *Engine) ProposalCount() uint64 {
	return uint64(len(e.proposals))
}

// OpenProposals returns the ids of proposals still accepting votes at now.
func (e *Engine) OpenProposals(now uint64) []uint64 {
	var ids []uint64
	for _, p := range e.proposals {
		if p.State(now) == StateOpen {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// VoteOf returns voter's vote on proposal id. The boolean is false if the
// proposal does not exist.
func (e *Engine) VoteOf(id uint64, voter common.Address) (Vote, bool) {
	if _, ok := e.proposal(id); !ok {
		return Vote{}, false
	}
	support, voted := e.votes[id][voter]
	return Vote{HasVoted: voted, Support: support}, true
}

// VotingStats returns the tally of proposal id under the current parameters.
func (e *Engine) VotingStats(id uint64) (VotingStats, bool) {
	p, ok := e.proposal(id)
	if !ok {
		return VotingStats{}, false
	}
	return e.tally(p), true
}
