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

package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/store"
	"github.com/mccoysc/validatordao/treasury"
)

// Snapshot names.
const (
	bankSnapshot       = "bank"
	vaultSnapshot      = "vault"
	governanceSnapshot = "governance"
)

type bankState struct {
	Balances []ledger.Balance
}

// persistOnCommit registers a commit hook that snapshots all components
// after every successful call.
func (s *System) persistOnCommit(db *store.Store) {
	s.Runtime.OnCommit(func(batch []ledger.Notification) error {
		if len(batch) == 0 {
			return nil
		}
		return s.save(db, batch[len(batch)-1].Seq)
	})
}

func (s *System) load(db *store.Store) (bool, error) {
	var (
		bank bankState
		vst  treasury.State
		gst  governance.State
	)
	seq, found, err := db.LoadSnapshot(governanceSnapshot, &gst)
	if err != nil || !found {
		return false, err
	}
	for name, val := range map[string]interface{}{vaultSnapshot: &vst, bankSnapshot: &bank} {
		at, ok, err := db.LoadSnapshot(name, val)
		if err != nil {
			return false, err
		}
		if !ok || at != seq {
			return false, fmt.Errorf("%w: %s snapshot at %d, governance at %d", ErrSnapshotMismatch, name, at, seq)
		}
	}
	if err := s.Vault.Restore(&vst); err != nil {
		return false, fmt.Errorf("restore vault: %w", err)
	}
	if err := s.Engine.Restore(&gst); err != nil {
		return false, fmt.Errorf("restore governance: %w", err)
	}
	s.Bank.Restore(bank.Balances)

	head := db.Head()
	if head != seq {
		log.Warn("Snapshot behind journal", "snapshot", seq, "journal", head)
	}
	s.Runtime.SetSequence(head)
	log.Info("Restored DAO state", "seq", seq, "proposals", s.Engine.ProposalCount(), "held", s.Vault.AvailableBalance().Dec())
	return true, nil
}

func (s *System) save(db *store.Store, seq uint64) error {
	return db.SaveSnapshots(seq,
		store.Snapshot{Name: bankSnapshot, Value: &bankState{Balances: s.Bank.Balances()}},
		store.Snapshot{Name: vaultSnapshot, Value: s.Vault.Snapshot()},
		store.Snapshot{Name: governanceSnapshot, Value: s.Engine.Snapshot()},
	)
}
