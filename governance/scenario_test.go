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

package governance_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/treasury"
)

var (
	engineAddr = common.HexToAddress("0x00000000000000000000000000000000000d0001")
	vaultAddr  = common.HexToAddress("0x00000000000000000000000000000000000d0002")
	admin      = common.HexToAddress("0x00000000000000000000000000000000000a0001")
	donor      = common.HexToAddress("0x00000000000000000000000000000000000b0001")
	provider   = common.HexToAddress("0x00000000000000000000000000000000000c0001")
	validators = []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000010001"),
		common.HexToAddress("0x0000000000000000000000000000000000010002"),
		common.HexToAddress("0x0000000000000000000000000000000000010003"),
	}
)

type memSink struct{ notes []ledger.Notification }

func (s *memSink) Append(batch []ledger.Notification) error {
	s.notes = append(s.notes, batch...)
	return nil
}

type system struct {
	now    uint64
	rt     *ledger.Runtime
	bank   *ledger.Bank
	vault  *treasury.Vault
	engine *governance.Engine
	sink   *memSink
}

func newSystem(t *testing.T) *system {
	s := &system{now: 1_700_000_000, bank: ledger.NewBank(), sink: new(memSink)}
	s.rt = ledger.NewRuntime(s.bank, func() uint64 { return s.now }, s.sink)

	var err error
	s.vault, err = treasury.New(vaultAddr, s.bank, admin, engineAddr, nil)
	require.NoError(t, err)
	s.engine, err = governance.New(engineAddr, s.vault, admin, validators, nil)
	require.NoError(t, err)
	s.rt.Track(s.vault)
	s.rt.Track(s.engine)
	s.bank.Mint(donor, uint256.NewInt(5))
	return s
}

func (s *system) fundAndPropose(t *testing.T) uint64 {
	require.NoError(t, s.rt.Call(donor, func(env *ledger.Env) error {
		return s.vault.Deposit(env, uint256.NewInt(5))
	}))
	var id uint64
	require.NoError(t, s.rt.Call(validators[0], func(env *ledger.Env) (err error) {
		id, err = s.engine.CreateProposal(env, "rack space", uint256.NewInt(2), provider, "datacenter invoice")
		return err
	}))
	return id
}

func (s *system) vote(t *testing.T, id uint64, support ...bool) {
	for i, choice := range support {
		require.NoError(t, s.rt.Call(validators[i], func(env *ledger.Env) error {
			return s.engine.Vote(env, id, choice)
		}))
	}
}

func (s *system) execute(id uint64) (passed bool, err error) {
	err = s.rt.Call(donor, func(env *ledger.Env) (err error) {
		passed, err = s.engine.ExecuteProposal(env, id)
		return err
	})
	return passed, err
}

func TestScenario_ProposalPasses(t *testing.T) {
	s := newSystem(t)
	id := s.fundAndPropose(t)
	s.vote(t, id, true, true, false)

	_, err := s.execute(id)
	require.ErrorIs(t, err, governance.ErrVotingStillOpen)

	s.now += s.engine.Params().VotingPeriod + 1
	passed, err := s.execute(id)
	require.NoError(t, err)
	require.True(t, passed)

	require.Equal(t, uint64(3), s.vault.AvailableBalance().Uint64())
	require.Equal(t, uint64(3), s.bank.BalanceOf(vaultAddr).Uint64())
	require.Equal(t, uint64(2), s.bank.BalanceOf(provider).Uint64())
	require.Equal(t, uint64(1), s.vault.DisbursementCount())
	entry, ok := s.vault.Disbursement(1)
	require.True(t, ok)
	require.True(t, entry.Executed)
	require.Equal(t, provider, entry.Provider)

	p, _ := s.engine.Proposal(id)
	require.True(t, p.Executed)
	require.Equal(t, uint64(1), p.Disbursement)

	// Disbursed and ProposalExecuted come from the same call.
	last := s.sink.notes[len(s.sink.notes)-2:]
	require.Equal(t, "Disbursed", last[0].Op)
	require.Equal(t, engineAddr, last[0].Actor)
	require.Equal(t, "ProposalExecuted", last[1].Op)
	require.Equal(t, last[0].Seq+1, last[1].Seq)
}

func TestScenario_ProposalRejected(t *testing.T) {
	s := newSystem(t)
	id := s.fundAndPropose(t)
	s.vote(t, id, false, false, true)

	s.now += s.engine.Params().VotingPeriod + 1
	passed, err := s.execute(id)
	require.NoError(t, err)
	require.False(t, passed)

	require.Equal(t, uint64(5), s.vault.AvailableBalance().Uint64())
	require.Zero(t, s.bank.BalanceOf(provider).Uint64())
	require.Zero(t, s.vault.DisbursementCount())

	_, err = s.execute(id)
	require.ErrorIs(t, err, governance.ErrAlreadyExecuted)
}

func TestScenario_PausedVaultRollsBackExecution(t *testing.T) {
	s := newSystem(t)
	id := s.fundAndPropose(t)
	s.vote(t, id, true, true, true)
	require.NoError(t, s.rt.Call(admin, func(env *ledger.Env) error { return s.vault.Pause(env) }))

	s.now += s.engine.Params().VotingPeriod + 1
	before := len(s.sink.notes)
	_, err := s.execute(id)
	require.ErrorIs(t, err, treasury.ErrPaused)
	require.Len(t, s.sink.notes, before)

	p, _ := s.engine.Proposal(id)
	require.False(t, p.Executed)

	require.NoError(t, s.rt.Call(admin, func(env *ledger.Env) error { return s.vault.Unpause(env) }))
	passed, err := s.execute(id)
	require.NoError(t, err)
	require.True(t, passed)
}

func TestScenario_PayeeReentersEngine(t *testing.T) {
	s := newSystem(t)
	id := s.fundAndPropose(t)
	s.vote(t, id, true, true, true)

	// The payee retries execution from inside the payment. The latch is
	// already set by then.
	var nested error
	s.bank.SetHook(provider, func(env *ledger.Env, from common.Address, amount *uint256.Int) error {
		_, nested = s.engine.ExecuteProposal(env, id)
		return nil
	})
	s.now += s.engine.Params().VotingPeriod + 1
	passed, err := s.execute(id)
	require.NoError(t, err)
	require.True(t, passed)
	require.True(t, errors.Is(nested, governance.ErrAlreadyExecuted))
	require.Equal(t, uint64(2), s.bank.BalanceOf(provider).Uint64())
}

func TestScenario_InsufficientFundsAtCreation(t *testing.T) {
	s := newSystem(t)
	s.fundAndPropose(t)
	before := s.engine.ProposalCount()

	err := s.rt.Call(validators[1], func(env *ledger.Env) error {
		_, err := s.engine.CreateProposal(env, "too much", uint256.NewInt(6), provider, "x")
		return err
	})
	require.ErrorIs(t, err, governance.ErrInsufficientFunds)
	require.Equal(t, before, s.engine.ProposalCount())
}

func TestScenario_FailedPaymentUndoesNestedVote(t *testing.T) {
	s := newSystem(t)
	id := s.fundAndPropose(t)
	s.vote(t, id, true, true)
	s.now += s.engine.Params().VotingPeriod + 1

	var other uint64
	require.NoError(t, s.rt.Call(validators[0], func(env *ledger.Env) (err error) {
		other, err = s.engine.CreateProposal(env, "cooling", uint256.NewInt(1), provider, "chiller")
		return err
	}))

	// The payee is also a validator's agent: it votes on the second
	// proposal, then refuses the payment.
	s.bank.SetHook(provider, func(env *ledger.Env, from common.Address, amount *uint256.Int) error {
		if err := s.engine.Vote(env.As(validators[2]), other, true); err != nil {
			return err
		}
		return errors.New("payee refuses")
	})
	before := len(s.sink.notes)
	_, err := s.execute(id)
	require.Error(t, err)
	require.Len(t, s.sink.notes, before)

	vote, ok := s.engine.VoteOf(other, validators[2])
	require.True(t, ok)
	require.False(t, vote.HasVoted)
	p, _ := s.engine.Proposal(other)
	require.Zero(t, p.VotesFor)

	p, _ = s.engine.Proposal(id)
	require.False(t, p.Executed)
	require.Equal(t, uint64(5), s.vault.AvailableBalance().Uint64())
	require.Equal(t, uint64(5), s.bank.BalanceOf(vaultAddr).Uint64())
	require.Zero(t, s.bank.BalanceOf(provider).Uint64())
	require.Zero(t, s.vault.DisbursementCount())
}

func TestScenario_VaultCannotBePayee(t *testing.T) {
	s := newSystem(t)
	require.NoError(t, s.rt.Call(donor, func(env *ledger.Env) error {
		return s.vault.Deposit(env, uint256.NewInt(5))
	}))
	for _, payee := range []common.Address{vaultAddr, engineAddr} {
		err := s.rt.Call(validators[0], func(env *ledger.Env) error {
			_, err := s.engine.CreateProposal(env, "self", uint256.NewInt(2), payee, "loop")
			return err
		})
		require.ErrorIs(t, err, governance.ErrInvalidAddress)
	}
	require.Zero(t, s.engine.ProposalCount())
	require.Equal(t, uint64(5), s.vault.Stats().Deposited.Uint64())
}
