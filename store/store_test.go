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

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
	"github.com/mccoysc/validatordao/treasury"
)

func testBatch(from uint64, n int) []ledger.Notification {
	batch := make([]ledger.Notification, n)
	for i := range batch {
		batch[i] = ledger.Notification{
			Seq:     from + uint64(i),
			Source:  "treasury",
			Op:      "Deposit",
			Actor:   common.BytesToAddress([]byte{byte(i + 1)}),
			Subject: common.BytesToAddress([]byte{byte(i + 1)}),
			Amount:  uint256.NewInt(uint64(100 * (i + 1))),
			Time:    1000,
		}
	}
	return batch
}

func TestJournalAppendAndRead(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(testBatch(1, 3)))
	require.NoError(t, s.Append(testBatch(4, 2)))
	require.Equal(t, uint64(5), s.Head())

	all, err := s.Notifications(1, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, n := range all {
		require.Equal(t, uint64(i+1), n.Seq)
	}
	require.Equal(t, uint64(200), all[1].Amount.Uint64())

	page, err := s.Notifications(3, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, uint64(3), page[0].Seq)
	require.Equal(t, uint64(4), page[1].Seq)
}

func TestJournalRejectsGap(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)

	require.NoError(t, s.Append(testBatch(1, 1)))
	require.Error(t, s.Append(testBatch(3, 1)))
	require.Equal(t, uint64(1), s.Head())

	n, err := s.Notifications(0, 0)
	require.NoError(t, err)
	require.Len(t, n, 1)
}

func TestJournalHeadSurvivesReopen(t *testing.T) {
	db := memorydb.New()
	s, err := New(db)
	require.NoError(t, err)
	require.NoError(t, s.Append(testBatch(1, 4)))

	reopened, err := New(db)
	require.NoError(t, err)
	require.Equal(t, uint64(4), reopened.Head())
}

func TestSubscribeNotifications(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)

	ch := make(chan ledger.Notification, 4)
	sub := s.SubscribeNotifications(ch)
	defer sub.Unsubscribe()

	require.NoError(t, s.Append(testBatch(1, 2)))
	for want := uint64(1); want <= 2; want++ {
		select {
		case n := <-ch:
			require.Equal(t, want, n.Seq)
		case <-time.After(time.Second):
			t.Fatalf("notification %d not delivered", want)
		}
	}
}

func TestRuntimeCommitsToStore(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)

	bank := ledger.NewBank()
	rt := ledger.NewRuntime(bank, func() uint64 { return 77 }, s)
	admin := common.HexToAddress("0xa1")
	vault, err := treasury.New(common.HexToAddress("0xb1"), bank, admin, common.HexToAddress("0xc1"), nil)
	require.NoError(t, err)

	require.NoError(t, rt.Call(admin, vault.Pause))
	require.Error(t, rt.Call(admin, vault.Pause))
	require.NoError(t, rt.Call(admin, vault.Unpause))

	notes, err := s.Notifications(1, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "Paused", notes[0].Op)
	require.Equal(t, "Unpaused", notes[1].Op)
	require.Equal(t, uint64(77), notes[1].Time)
	require.Equal(t, rt.Sequence(), s.Head())
}

func TestComponentSnapshots(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)

	var missing treasury.State
	_, found, err := s.LoadSnapshot("vault", &missing)
	require.NoError(t, err)
	require.False(t, found)

	vst := &treasury.State{
		Governance:     common.HexToAddress("0xc1"),
		Held:           uint256.NewInt(9),
		Deposited:      uint256.NewInt(10),
		Spent:          uint256.NewInt(1),
		Withdrawn:      new(uint256.Int),
		Contributions:  []treasury.Contribution{{Contributor: common.HexToAddress("0xd1"), Amount: uint256.NewInt(10)}},
		Disbursements:  []*treasury.Disbursement{{ID: 1, Amount: uint256.NewInt(1), Provider: common.HexToAddress("0xe1"), Details: "x", Timestamp: 5, Executed: true}},
		Emergency:      treasury.EmergencyRequest{Requested: true, RequestTime: 3},
		EmergencyDelay: treasury.DefaultEmergencyDelay,
		Grants:         []roles.Grant{{Role: roles.AdminRole, Principal: common.HexToAddress("0xa1")}},
	}
	require.NoError(t, s.SaveSnapshot("vault", 12, vst))

	gst := &governance.State{
		Params:    *governance.DefaultParams(),
		Grants:    []roles.Grant{{Role: roles.ValidatorRole, Principal: common.HexToAddress("0xf1")}},
		Proposals: []*governance.Proposal{{ID: 1, Amount: uint256.NewInt(1), Description: "d", Details: "x", EndTime: 10}},
		Ballots:   []governance.Ballot{{Proposal: 1, Voter: common.HexToAddress("0xf1"), Support: true}},
	}
	require.NoError(t, s.SaveSnapshot("governance", 12, gst))

	var vgot treasury.State
	seq, found, err := s.LoadSnapshot("vault", &vgot)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(12), seq)
	require.Equal(t, uint64(9), vgot.Held.Uint64())
	require.Equal(t, vst.Emergency, vgot.Emergency)
	require.Equal(t, vst.Grants, vgot.Grants)
	require.Equal(t, "x", vgot.Disbursements[0].Details)

	var ggot governance.State
	_, found, err = s.LoadSnapshot("governance", &ggot)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, gst.Params, ggot.Params)
	require.Equal(t, gst.Ballots, ggot.Ballots)
	require.Equal(t, uint64(10), ggot.Proposals[0].EndTime)
}

func TestSaveSnapshotsAllOrNothing(t *testing.T) {
	s, err := New(memorydb.New())
	require.NoError(t, err)

	vst := &treasury.State{
		Held:           uint256.NewInt(3),
		Deposited:      uint256.NewInt(3),
		Spent:          new(uint256.Int),
		Withdrawn:      new(uint256.Int),
		EmergencyDelay: treasury.DefaultEmergencyDelay,
	}
	// A signed integer has no RLP encoding, so the set fails before any write.
	err = s.SaveSnapshots(4, Snapshot{Name: "vault", Value: vst}, Snapshot{Name: "broken", Value: -1})
	require.Error(t, err)
	_, found, err := s.LoadSnapshot("vault", new(treasury.State))
	require.NoError(t, err)
	require.False(t, found)

	gst := &governance.State{Params: *governance.DefaultParams()}
	require.NoError(t, s.SaveSnapshots(7, Snapshot{Name: "vault", Value: vst}, Snapshot{Name: "governance", Value: gst}))
	vseq, found, err := s.LoadSnapshot("vault", new(treasury.State))
	require.NoError(t, err)
	require.True(t, found)
	gseq, found, err := s.LoadSnapshot("governance", new(governance.State))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(7), vseq)
	require.Equal(t, vseq, gseq)
}

func TestOpenEngines(t *testing.T) {
	for _, engine := range []string{EngineMemory, EngineLevelDB, EnginePebble} {
		t.Run(engine, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), engine)
			s, err := Open(engine, dir, 16, 16)
			require.NoError(t, err)
			require.NoError(t, s.Append(testBatch(1, 2)))
			require.NoError(t, s.Close())

			if engine == EngineMemory {
				return
			}
			reopened, err := Open(engine, dir, 16, 16)
			require.NoError(t, err)
			defer reopened.Close()
			require.Equal(t, uint64(2), reopened.Head())
		})
	}
	_, err := Open("rocksdb", "", 16, 16)
	require.ErrorIs(t, err, ErrUnknownEngine)
}
