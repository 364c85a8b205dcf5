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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/faults"
	"github.com/mccoysc/validatordao/ledger"
)

const start = 1_700_000_000

func createTestProposal(t *testing.T, e *Engine, amount uint64) uint64 {
	t.Helper()
	id, err := e.CreateProposal(ledger.NewEnv(val1, start), "fund three nodes", uint256.NewInt(amount), payee, "invoice 42")
	if err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	return id
}

func castVotes(t *testing.T, e *Engine, id uint64, votes map[common.Address]bool) {
	t.Helper()
	for voter, support := range votes {
		if err := e.Vote(ledger.NewEnv(voter, start+1), id, support); err != nil {
			t.Fatalf("vote by %s failed: %v", voter.Hex(), err)
		}
	}
}

func afterWindow(e *Engine) uint64 {
	return start + e.Params().VotingPeriod + 1
}

func TestCreateProposal(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))

	env := ledger.NewEnv(val1, start)
	id, err := e.CreateProposal(env, "fund three nodes", uint256.NewInt(40), payee, "invoice 42")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
	p, ok := e.Proposal(id)
	if !ok {
		t.Fatal("proposal not found")
	}
	if p.Proposer != val1 || p.StartTime != start || p.EndTime != start+DefaultParams().VotingPeriod {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if p.Executed || p.Passed || p.VotesFor != 0 || p.VotesAgainst != 0 {
		t.Errorf("unexpected initial tally: %+v", p)
	}
	if p.State(start) != StateOpen {
		t.Errorf("expected open state, got %v", p.State(start))
	}
	if _, ok := e.Proposal(0); ok {
		t.Error("id 0 must not resolve to a proposal")
	}
	notes := env.Notifications()
	if len(notes) != 1 || notes[0].Op != "ProposalCreated" || notes[0].ID != 1 {
		t.Errorf("unexpected notifications: %v", notes)
	}
}

func TestCreateProposal_Rejections(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))

	tests := []struct {
		name        string
		sender      common.Address
		description string
		amount      *uint256.Int
		payee       common.Address
		details     string
		want        error
	}{
		{"not validator", outsider, "d", uint256.NewInt(1), payee, "x", ErrNotValidator},
		{"zero payee", val1, "d", uint256.NewInt(1), common.Address{}, "x", ErrInvalidAddress},
		{"vault payee", val1, "d", uint256.NewInt(1), vaultAddr, "x", ErrInvalidAddress},
		{"engine payee", val1, "d", uint256.NewInt(1), engineAddr, "x", ErrInvalidAddress},
		{"empty description", val1, "", uint256.NewInt(1), payee, "x", ErrMissingField},
		{"empty details", val1, "d", uint256.NewInt(1), payee, "", ErrMissingField},
		{"zero amount", val1, "d", new(uint256.Int), payee, "x", ErrInvalidAmount},
		{"nil amount", val1, "d", nil, payee, "x", ErrInvalidAmount},
		{"over balance", val1, "d", uint256.NewInt(101), payee, "x", ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateProposal(ledger.NewEnv(tt.sender, start), tt.description, tt.amount, tt.payee, tt.details)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if e.ProposalCount() != 0 {
		t.Errorf("expected no proposals, got %d", e.ProposalCount())
	}
}

func TestVote(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	id := createTestProposal(t, e, 10)

	if err := e.Vote(ledger.NewEnv(val1, start), 99, true); !errors.Is(err, ErrProposalNotFound) {
		t.Errorf("expected ErrProposalNotFound, got %v", err)
	}
	if err := e.Vote(ledger.NewEnv(outsider, start), id, true); !errors.Is(err, ErrNotValidator) {
		t.Errorf("expected ErrNotValidator, got %v", err)
	}
	if err := e.Vote(ledger.NewEnv(val1, start), id, true); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	// A second vote fails whatever the choice.
	for _, support := range []bool{true, false} {
		if err := e.Vote(ledger.NewEnv(val1, start), id, support); !errors.Is(err, ErrAlreadyVoted) {
			t.Errorf("expected ErrAlreadyVoted, got %v", err)
		}
	}
	end := start + e.Params().VotingPeriod
	if err := e.Vote(ledger.NewEnv(val2, end), id, false); err != nil {
		t.Errorf("vote at end time should be accepted, got %v", err)
	}
	if err := e.Vote(ledger.NewEnv(val3, end+1), id, true); !errors.Is(err, ErrVotingClosed) {
		t.Errorf("expected ErrVotingClosed, got %v", err)
	}

	p, _ := e.Proposal(id)
	if p.VotesFor != 1 || p.VotesAgainst != 1 {
		t.Errorf("expected 1 for and 1 against, got %d/%d", p.VotesFor, p.VotesAgainst)
	}
	vote, ok := e.VoteOf(id, val2)
	if !ok || !vote.HasVoted || vote.Support {
		t.Errorf("unexpected vote record: %+v", vote)
	}
	if vote, _ := e.VoteOf(id, val3); vote.HasVoted {
		t.Error("val3 should have no vote")
	}
	if _, ok := e.VoteOf(99, val1); ok {
		t.Error("expected missing proposal")
	}
}

func TestVote_SurvivesValidatorRemoval(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	id := createTestProposal(t, e, 10)
	castVotes(t, e, id, map[common.Address]bool{val1: true})

	if err := e.RemoveValidator(ledger.NewEnv(adminAddr, start+2), val1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	p, _ := e.Proposal(id)
	if p.VotesFor != 1 {
		t.Errorf("expected the cast vote to remain, got %d", p.VotesFor)
	}
	if err := e.Vote(ledger.NewEnv(val1, start+3), id, false); !errors.Is(err, ErrNotValidator) {
		t.Errorf("expected ErrNotValidator, got %v", err)
	}
}

func TestVotingStats_CeilQuorumFloorApproval(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	id := createTestProposal(t, e, 10)

	stats, ok := e.VotingStats(id)
	if !ok {
		t.Fatal("stats not found")
	}
	// 3 validators at 51% need 2 votes, not 1.
	if stats.RequiredQuorum != 2 {
		t.Errorf("expected required quorum 2, got %d", stats.RequiredQuorum)
	}
	if stats.QuorumReached || stats.ApprovalPercentage != 0 {
		t.Errorf("unexpected stats without votes: %+v", stats)
	}

	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: true, val3: false})
	stats, _ = e.VotingStats(id)
	if stats.TotalVotes != 3 || !stats.QuorumReached {
		t.Errorf("unexpected stats: %+v", stats)
	}
	// 2 of 3 truncates to 66, not 67.
	if stats.ApprovalPercentage != 66 {
		t.Errorf("expected approval 66, got %d", stats.ApprovalPercentage)
	}
}

func TestExecuteProposal_StillOpen(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	id := createTestProposal(t, e, 10)
	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: true, val3: true})

	for _, now := range []uint64{start, start + e.Params().VotingPeriod} {
		if _, err := e.ExecuteProposal(ledger.NewEnv(outsider, now), id); !errors.Is(err, ErrVotingStillOpen) {
			t.Errorf("expected ErrVotingStillOpen at %d, got %v", now, err)
		}
	}
	if p, _ := e.Proposal(id); p.Executed {
		t.Error("proposal must not be executed")
	}
}

func TestExecuteProposal_Passed(t *testing.T) {
	vault := NewMockVault(100)
	e := newTestEngine(t, vault)
	id := createTestProposal(t, e, 30)
	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: true, val3: false})

	env := ledger.NewEnv(outsider, afterWindow(e))
	if state := mustProposal(t, e, id).State(env.Time); state != StateClosedPending {
		t.Errorf("expected closed-pending, got %v", state)
	}
	passed, err := e.ExecuteProposal(env, id)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !passed {
		t.Error("expected proposal to pass")
	}
	if vault.balance.Uint64() != 70 || len(vault.paid) != 1 || vault.paid[0] != payee {
		t.Errorf("unexpected vault state: balance %d, paid %v", vault.balance.Uint64(), vault.paid)
	}
	if vault.senders[0] != engineAddr {
		t.Errorf("expected the engine to call the vault, got %s", vault.senders[0].Hex())
	}
	p := mustProposal(t, e, id)
	if !p.Executed || !p.Passed || p.Disbursement != 1 {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if p.State(env.Time) != StateExecutedPassed {
		t.Errorf("expected executed-passed, got %v", p.State(env.Time))
	}
	notes := env.Notifications()
	if len(notes) != 1 || notes[0].Op != "ProposalExecuted" || !notes[0].Flag {
		t.Errorf("unexpected notifications: %v", notes)
	}

	// The latch never releases.
	if _, err := e.ExecuteProposal(env, id); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("expected ErrAlreadyExecuted, got %v", err)
	}
	if len(vault.paid) != 1 {
		t.Error("second execution must not pay again")
	}
}

func TestExecuteProposal_Rejected(t *testing.T) {
	vault := NewMockVault(100)
	e := newTestEngine(t, vault)
	id := createTestProposal(t, e, 30)
	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: false, val3: false})

	env := ledger.NewEnv(outsider, afterWindow(e))
	passed, err := e.ExecuteProposal(env, id)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if passed {
		t.Error("expected proposal to fail")
	}
	p := mustProposal(t, e, id)
	if !p.Executed || p.Passed || p.State(env.Time) != StateExecutedFailed {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if vault.balance.Uint64() != 100 || len(vault.paid) != 0 {
		t.Error("rejected proposal moved funds")
	}
	notes := env.Notifications()
	if len(notes) != 1 || notes[0].Flag {
		t.Errorf("unexpected notifications: %v", notes)
	}
}

func TestExecuteProposal_TieRejected(t *testing.T) {
	vault := NewMockVault(100)
	e := newTestEngine(t, vault, val1, val2)
	id := createTestProposal(t, e, 30)
	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: false})

	passed, err := e.ExecuteProposal(ledger.NewEnv(outsider, afterWindow(e)), id)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if passed {
		t.Error("a 50% approval must not pass")
	}
}

func TestExecuteProposal_QuorumNotReached(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	id := createTestProposal(t, e, 30)
	castVotes(t, e, id, map[common.Address]bool{val1: true})

	_, err := e.ExecuteProposal(ledger.NewEnv(outsider, afterWindow(e)), id)
	if !errors.Is(err, ErrQuorumNotReached) {
		t.Fatalf("expected ErrQuorumNotReached, got %v", err)
	}
	if faults.ClassOf(err) != faults.ResourceConflict {
		t.Errorf("expected resource conflict, got %v", faults.ClassOf(err))
	}
	if p := mustProposal(t, e, id); p.Executed {
		t.Error("quorum failure must not latch the proposal")
	}

	// Quorum is read live: lowering it makes the same tally decidable.
	if err := e.SetMinimumQuorum(ledger.NewEnv(adminAddr, afterWindow(e)), 1); err != nil {
		t.Fatal(err)
	}
	passed, err := e.ExecuteProposal(ledger.NewEnv(outsider, afterWindow(e)), id)
	if err != nil || !passed {
		t.Errorf("expected execution under the new quorum, got passed=%v err=%v", passed, err)
	}
}

func TestExecuteProposal_VaultRejectionRollsBack(t *testing.T) {
	vault := NewMockVault(100)
	e := newTestEngine(t, vault)
	id := createTestProposal(t, e, 30)
	castVotes(t, e, id, map[common.Address]bool{val1: true, val2: true})

	vault.fail = errors.New("vault is paused")
	env := ledger.NewEnv(outsider, afterWindow(e))
	if _, err := e.ExecuteProposal(env, id); err == nil {
		t.Fatal("expected execution to fail")
	}
	p := mustProposal(t, e, id)
	if p.Executed || p.Passed {
		t.Errorf("execution not rolled back: %+v", p)
	}
	if len(env.Notifications()) != 0 {
		t.Errorf("expected no notifications, got %v", env.Notifications())
	}

	// Funds spent elsewhere in the meantime.
	vault.fail = nil
	vault.balance = uint256.NewInt(10)
	if _, err := e.ExecuteProposal(env, id); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}

	vault.balance = uint256.NewInt(100)
	if passed, err := e.ExecuteProposal(env, id); err != nil || !passed {
		t.Errorf("expected retry to succeed, got passed=%v err=%v", passed, err)
	}
}

func TestOpenProposals(t *testing.T) {
	e := newTestEngine(t, NewMockVault(100))
	first := createTestProposal(t, e, 10)
	second, err := e.CreateProposal(ledger.NewEnv(val2, start+100), "second", uint256.NewInt(5), payee, "x")
	if err != nil {
		t.Fatal(err)
	}
	end := start + e.Params().VotingPeriod
	if got := e.OpenProposals(end); len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("expected both open, got %v", got)
	}
	if got := e.OpenProposals(end + 1); len(got) != 1 || got[0] != second {
		t.Errorf("expected only the second open, got %v", got)
	}
}

func mustProposal(t *testing.T, e *Engine, id uint64) *Proposal {
	t.Helper()
	p, ok := e.Proposal(id)
	if !ok {
		t.Fatalf("proposal %d not found", id)
	}
	return p
}
