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

package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/treasury"
)

// RPCProposal is the JSON form of a proposal.
type RPCProposal struct {
	ID           hexutil.Uint64  `json:"id"`
	Proposer     common.Address  `json:"proposer"`
	Description  string          `json:"description"`
	Amount       *hexutil.Big    `json:"amount"`
	Payee        common.Address  `json:"payee"`
	Details      string          `json:"details"`
	VotesFor     hexutil.Uint64  `json:"votesFor"`
	VotesAgainst hexutil.Uint64  `json:"votesAgainst"`
	StartTime    hexutil.Uint64  `json:"startTime"`
	EndTime      hexutil.Uint64  `json:"endTime"`
	Executed     bool            `json:"executed"`
	Passed       bool            `json:"passed"`
	State        string          `json:"state"`
	Disbursement *hexutil.Uint64 `json:"disbursement,omitempty"`
	OptionID     *hexutil.Uint64 `json:"optionId,omitempty"`
	Units        *hexutil.Uint64 `json:"units,omitempty"`
}

func newRPCProposal(p *governance.Proposal, now uint64) *RPCProposal {
	out := &RPCProposal{
		ID:           hexutil.Uint64(p.ID),
		Proposer:     p.Proposer,
		Description:  p.Description,
		Amount:       toBig(p.Amount),
		Payee:        p.Payee,
		Details:      p.Details,
		VotesFor:     hexutil.Uint64(p.VotesFor),
		VotesAgainst: hexutil.Uint64(p.VotesAgainst),
		StartTime:    hexutil.Uint64(p.StartTime),
		EndTime:      hexutil.Uint64(p.EndTime),
		Executed:     p.Executed,
		Passed:       p.Passed,
		State:        p.State(now).String(),
	}
	if p.Passed {
		id := hexutil.Uint64(p.Disbursement)
		out.Disbursement = &id
	}
	if p.FromCatalog {
		opt, units := hexutil.Uint64(p.OptionID), hexutil.Uint64(p.Units)
		out.OptionID, out.Units = &opt, &units
	}
	return out
}

// RPCVote is the JSON form of a vote record.
type RPCVote struct {
	HasVoted bool `json:"hasVoted"`
	Support  bool `json:"support"`
}

// RPCVotingStats is the JSON form of a proposal tally.
type RPCVotingStats struct {
	TotalVotes         hexutil.Uint64 `json:"totalVotes"`
	RequiredQuorum     hexutil.Uint64 `json:"requiredQuorum"`
	ApprovalPercentage hexutil.Uint64 `json:"approvalPercentage"`
	QuorumReached      bool           `json:"quorumReached"`
}

// RPCParams is the JSON form of the governance parameters.
type RPCParams struct {
	VotingPeriod    hexutil.Uint64 `json:"votingPeriod"`
	MinimumQuorum   hexutil.Uint64 `json:"minimumQuorum"`
	MinimumApproval hexutil.Uint64 `json:"minimumApproval"`
}

// RPCOption is the JSON form of a catalog option.
type RPCOption struct {
	ID       hexutil.Uint64 `json:"id"`
	Provider common.Address `json:"provider"`
	Name     string         `json:"name"`
	Details  string         `json:"details"`
	Price    *hexutil.Big   `json:"price"`
	Active   bool           `json:"active"`
}

// RPCTreasuryStats is the JSON form of the vault's books.
type RPCTreasuryStats struct {
	Held           *hexutil.Big   `json:"held"`
	Deposited      *hexutil.Big   `json:"deposited"`
	Spent          *hexutil.Big   `json:"spent"`
	Withdrawn      *hexutil.Big   `json:"withdrawn"`
	Disbursements  hexutil.Uint64 `json:"disbursements"`
	Contributors   hexutil.Uint64 `json:"contributors"`
	Paused         bool           `json:"paused"`
	Governance     common.Address `json:"governance"`
	EmergencyDelay hexutil.Uint64 `json:"emergencyDelay"`
}

// RPCDisbursement is the JSON form of a vault ledger entry.
type RPCDisbursement struct {
	ID        hexutil.Uint64 `json:"id"`
	Amount    *hexutil.Big   `json:"amount"`
	Provider  common.Address `json:"provider"`
	Details   string         `json:"details"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
	Executed  bool           `json:"executed"`
}

func newRPCDisbursement(d *treasury.Disbursement) *RPCDisbursement {
	return &RPCDisbursement{
		ID:        hexutil.Uint64(d.ID),
		Amount:    toBig(d.Amount),
		Provider:  d.Provider,
		Details:   d.Details,
		Timestamp: hexutil.Uint64(d.Timestamp),
		Executed:  d.Executed,
	}
}

// RPCEmergencyStatus is the JSON form of the pending emergency request.
type RPCEmergencyStatus struct {
	Requested   bool            `json:"requested"`
	RequestTime *hexutil.Uint64 `json:"requestTime,omitempty"`
	UnlockTime  *hexutil.Uint64 `json:"unlockTime,omitempty"`
}

// RPCNotification is the JSON form of a committed notification.
type RPCNotification struct {
	Seq     hexutil.Uint64 `json:"seq"`
	Source  string         `json:"source"`
	Op      string         `json:"op"`
	ID      hexutil.Uint64 `json:"id"`
	Actor   common.Address `json:"actor"`
	Subject common.Address `json:"subject"`
	Amount  *hexutil.Big   `json:"amount,omitempty"`
	Flag    bool           `json:"flag"`
	Detail  string         `json:"detail,omitempty"`
	Time    hexutil.Uint64 `json:"time"`
}

func newRPCNotification(n ledger.Notification) *RPCNotification {
	out := &RPCNotification{
		Seq:     hexutil.Uint64(n.Seq),
		Source:  n.Source,
		Op:      n.Op,
		ID:      hexutil.Uint64(n.ID),
		Actor:   n.Actor,
		Subject: n.Subject,
		Flag:    n.Flag,
		Detail:  n.Detail,
		Time:    hexutil.Uint64(n.Time),
	}
	if n.Amount != nil && !n.Amount.IsZero() {
		out.Amount = toBig(n.Amount)
	}
	return out
}

func toBig(x *uint256.Int) *hexutil.Big {
	if x == nil {
		return (*hexutil.Big)(new(big.Int))
	}
	return (*hexutil.Big)(x.ToBig())
}

// fromBig converts an RPC quantity to uint256, rejecting negative and
// oversized values.
func fromBig(x *hexutil.Big) (*uint256.Int, error) {
	if x == nil {
		return new(uint256.Int), nil
	}
	b := (*big.Int)(x)
	if b.Sign() < 0 {
		return nil, errNegativeAmount
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errAmountOverflow
	}
	return v, nil
}
