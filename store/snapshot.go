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
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// Snapshot is a named component state.
type Snapshot struct {
	Name  string
	Value interface{}
}

// SaveSnapshot stores the RLP encoding of val under name together with the
// journal head it reflects.
func (s *Store) SaveSnapshot(name string, seq uint64, val interface{}) error {
	return s.SaveSnapshots(seq, Snapshot{Name: name, Value: val})
}

// SaveSnapshots stores a set of snapshots taken at the same journal head in
// one database batch. A crash leaves either the previous set or the new one.
func (s *Store) SaveSnapshots(seq uint64, snaps ...Snapshot) error {
	b := s.db.NewBatch()
	for _, snap := range snaps {
		data, err := rlp.EncodeToBytes(snap.Value)
		if err != nil {
			return fmt.Errorf("encode %s snapshot: %w", snap.Name, err)
		}
		enc, err := rlp.EncodeToBytes(&snapshotRecord{Seq: seq, Data: data})
		if err != nil {
			return err
		}
		if err := b.Put(snapshotKey(snap.Name), enc); err != nil {
			return err
		}
	}
	if err := b.Write(); err != nil {
		return err
	}
	log.Debug("Saved snapshots", "count", len(snaps), "seq", seq, "size", b.ValueSize())
	return nil
}

// LoadSnapshot decodes the snapshot stored under name into val. It reports
// false if there is none.
func (s *Store) LoadSnapshot(name string, val interface{}) (uint64, bool, error) {
	if ok, err := s.db.Has(snapshotKey(name)); err != nil || !ok {
		return 0, false, err
	}
	enc, err := s.db.Get(snapshotKey(name))
	if err != nil {
		return 0, false, err
	}
	var rec snapshotRecord
	if err := rlp.DecodeBytes(enc, &rec); err != nil {
		return 0, false, fmt.Errorf("decode %s snapshot record: %w", name, err)
	}
	if err := rlp.DecodeBytes(rec.Data, val); err != nil {
		return 0, false, fmt.Errorf("decode %s snapshot: %w", name, err)
	}
	return rec.Seq, true, nil
}
