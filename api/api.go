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
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mccoysc/validatordao/genesis"
	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/store"
)

// maxJournalPage bounds the notifications returned by one journal query.
const maxJournalPage = 1000

var errNoJournal = errors.New("node has no journal")

// DAOAPI provides read access to the governance engine, the vault and the
// notification journal.
type DAOAPI struct {
	sys *genesis.System
	db  *store.Store
}

// NewDAOAPI creates the read API. db may be nil, in which case the journal
// methods fail.
func NewDAOAPI(sys *genesis.System, db *store.Store) *DAOAPI {
	return &DAOAPI{sys: sys, db: db}
}

// Contracts returns the addresses of the governance engine and the vault.
func (api *DAOAPI) Contracts() map[string]common.Address {
	return map[string]common.Address{
		"governance": api.sys.Engine.Address(),
		"treasury":   api.sys.Vault.Address(),
	}
}

// Proposal returns a proposal with its state at the current time.
func (api *DAOAPI) Proposal(id hexutil.Uint64) (*RPCProposal, error) {
	var out *RPCProposal
	api.sys.Runtime.View(func(now uint64) {
		if p, ok := api.sys.Engine.Proposal(uint64(id)); ok {
			out = newRPCProposal(p, now)
		}
	})
	if out == nil {
		return nil, wrapError(governance.ErrProposalNotFound)
	}
	return out, nil
}

// ProposalCount returns the number of proposals ever created.
func (api *DAOAPI) ProposalCount() hexutil.Uint64 {
	var n uint64
	api.sys.Runtime.View(func(uint64) { n = api.sys.Engine.ProposalCount() })
	return hexutil.Uint64(n)
}

// OpenProposals returns the ids of proposals still accepting votes.
func (api *DAOAPI) OpenProposals() []hexutil.Uint64 {
	var ids []uint64
	api.sys.Runtime.View(func(now uint64) { ids = api.sys.Engine.OpenProposals(now) })
	return toUint64s(ids)
}

// VoteOf returns the vote of voter on a proposal.
func (api *DAOAPI) VoteOf(id hexutil.Uint64, voter common.Address) (*RPCVote, error) {
	var (
		vote governance.Vote
		ok   bool
	)
	api.sys.Runtime.View(func(uint64) { vote, ok = api.sys.Engine.VoteOf(uint64(id), voter) })
	if !ok {
		return nil, wrapError(governance.ErrProposalNotFound)
	}
	return &RPCVote{HasVoted: vote.HasVoted, Support: vote.Support}, nil
}

// VotingStats returns the current tally of a proposal.
func (api *DAOAPI) VotingStats(id hexutil.Uint64) (*RPCVotingStats, error) {
	var (
		stats governance.VotingStats
		ok    bool
	)
	api.sys.Runtime.View(func(uint64) { stats, ok = api.sys.Engine.VotingStats(uint64(id)) })
	if !ok {
		return nil, wrapError(governance.ErrProposalNotFound)
	}
	return &RPCVotingStats{
		TotalVotes:         hexutil.Uint64(stats.TotalVotes),
		RequiredQuorum:     hexutil.Uint64(stats.RequiredQuorum),
		ApprovalPercentage: hexutil.Uint64(stats.ApprovalPercentage),
		QuorumReached:      stats.QuorumReached,
	}, nil
}

// Params returns the governance parameters.
func (api *DAOAPI) Params() *RPCParams {
	var p governance.Params
	api.sys.Runtime.View(func(uint64) { p = api.sys.Engine.Params() })
	return &RPCParams{
		VotingPeriod:    hexutil.Uint64(p.VotingPeriod),
		MinimumQuorum:   hexutil.Uint64(p.MinimumQuorum),
		MinimumApproval: hexutil.Uint64(p.MinimumApproval),
	}
}

// Validators returns the validator set.
func (api *DAOAPI) Validators() []common.Address {
	var out []common.Address
	api.sys.Runtime.View(func(uint64) { out = api.sys.Engine.Validators() })
	return out
}

// Admins returns the governance administrators.
func (api *DAOAPI) Admins() []common.Address {
	var out []common.Address
	api.sys.Runtime.View(func(uint64) { out = api.sys.Engine.Admins() })
	return out
}

// Option returns a catalog option, or null if it does not exist.
func (api *DAOAPI) Option(id hexutil.Uint64) *RPCOption {
	var out *RPCOption
	api.sys.Runtime.View(func(uint64) {
		if o, ok := api.sys.Engine.Option(uint64(id)); ok {
			out = &RPCOption{
				ID:       hexutil.Uint64(o.ID),
				Provider: o.Provider,
				Name:     o.Name,
				Details:  o.Details,
				Price:    toBig(o.Price),
				Active:   o.Active,
			}
		}
	})
	return out
}

// ActiveOptions returns the ids of the options proposals may reference.
func (api *DAOAPI) ActiveOptions() []hexutil.Uint64 {
	var ids []uint64
	api.sys.Runtime.View(func(uint64) { ids = api.sys.Engine.ActiveOptions() })
	return toUint64s(ids)
}

// TreasuryStats returns the vault's books.
func (api *DAOAPI) TreasuryStats() *RPCTreasuryStats {
	var out *RPCTreasuryStats
	api.sys.Runtime.View(func(uint64) {
		v := api.sys.Vault
		st := v.Stats()
		out = &RPCTreasuryStats{
			Held:           toBig(st.Held),
			Deposited:      toBig(st.Deposited),
			Spent:          toBig(st.Spent),
			Withdrawn:      toBig(st.Withdrawn),
			Disbursements:  hexutil.Uint64(st.Disbursements),
			Contributors:   hexutil.Uint64(st.Contributors),
			Paused:         st.Paused,
			Governance:     v.Governance(),
			EmergencyDelay: hexutil.Uint64(v.EmergencyDelay()),
		}
	})
	return out
}

// Contribution returns the cumulative deposits of a contributor.
func (api *DAOAPI) Contribution(from common.Address) *hexutil.Big {
	var out *hexutil.Big
	api.sys.Runtime.View(func(uint64) { out = toBig(api.sys.Vault.Contribution(from)) })
	return out
}

// Disbursement returns a vault ledger entry, or null if it does not exist.
func (api *DAOAPI) Disbursement(id hexutil.Uint64) *RPCDisbursement {
	var out *RPCDisbursement
	api.sys.Runtime.View(func(uint64) {
		if d, ok := api.sys.Vault.Disbursement(uint64(id)); ok {
			out = newRPCDisbursement(d)
		}
	})
	return out
}

// Recipients returns the manager withdrawal allowlist.
func (api *DAOAPI) Recipients() []common.Address {
	var out []common.Address
	api.sys.Runtime.View(func(uint64) { out = api.sys.Vault.Recipients() })
	return out
}

// EmergencyStatus returns the pending emergency request and when it unlocks.
func (api *DAOAPI) EmergencyStatus() *RPCEmergencyStatus {
	out := new(RPCEmergencyStatus)
	api.sys.Runtime.View(func(uint64) {
		req, unlock := api.sys.Vault.EmergencyStatus()
		if req.Requested {
			at, until := hexutil.Uint64(req.RequestTime), hexutil.Uint64(unlock)
			out.Requested, out.RequestTime, out.UnlockTime = true, &at, &until
		}
	})
	return out
}

// BalanceOf returns the bank balance of a principal.
func (api *DAOAPI) BalanceOf(addr common.Address) *hexutil.Big {
	var out *hexutil.Big
	api.sys.Runtime.View(func(uint64) { out = toBig(api.sys.Bank.BalanceOf(addr)) })
	return out
}

// Head returns the sequence number of the last committed notification.
func (api *DAOAPI) Head() hexutil.Uint64 {
	return hexutil.Uint64(api.sys.Runtime.Sequence())
}

// Journal returns up to limit committed notifications starting at sequence
// number from.
func (api *DAOAPI) Journal(from hexutil.Uint64, limit hexutil.Uint64) ([]*RPCNotification, error) {
	if api.db == nil {
		return nil, errNoJournal
	}
	if limit == 0 || limit > maxJournalPage {
		limit = maxJournalPage
	}
	batch, err := api.db.Notifications(uint64(from), int(limit))
	if err != nil {
		return nil, err
	}
	out := make([]*RPCNotification, len(batch))
	for i, n := range batch {
		out[i] = newRPCNotification(n)
	}
	return out, nil
}

// Notifications streams notifications as they are committed.
func (api *DAOAPI) Notifications(ctx context.Context) (*rpc.Subscription, error) {
	if api.db == nil {
		return nil, errNoJournal
	}
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	rpcSub := notifier.CreateSubscription()

	committed := make(chan ledger.Notification, 128)
	sub := api.db.SubscribeNotifications(committed)
	go func() {
		defer sub.Unsubscribe()

		for {
			select {
			case n := <-committed:
				notifier.Notify(rpcSub.ID, newRPCNotification(n))
			case <-rpcSub.Err():
				return
			}
		}
	}()
	return rpcSub, nil
}

func toUint64s(ids []uint64) []hexutil.Uint64 {
	out := make([]hexutil.Uint64, len(ids))
	for i, id := range ids {
		out[i] = hexutil.Uint64(id)
	}
	return out
}
