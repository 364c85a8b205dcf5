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
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/mccoysc/validatordao/ledger"
)

// Append writes a committed batch to the journal in one database batch and
// publishes it to subscribers. Sequence numbers must continue the journal.
func (s *Store) Append(batch []ledger.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	head := s.head
	for _, n := range batch {
		if n.Seq != head+1 {
			return fmt.Errorf("journal gap: head %d, got notification %d", head, n.Seq)
		}
		enc, err := rlp.EncodeToBytes(&n)
		if err != nil {
			return err
		}
		if err := b.Put(journalKey(n.Seq), enc); err != nil {
			return err
		}
		head = n.Seq
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], head)
	if err := b.Put(headKey, enc[:]); err != nil {
		return err
	}
	if err := b.Write(); err != nil {
		return err
	}
	s.head = head
	for _, n := range batch {
		s.feed.Send(n)
	}
	return nil
}

// Head returns the sequence number of the last journaled notification.
func (s *Store) Head() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head
}

// Notifications returns up to limit journaled notifications starting at
// sequence number from. A zero limit means no limit.
func (s *Store) Notifications(from uint64, limit int) ([]ledger.Notification, error) {
	it := s.db.NewIterator(journalPrefix, journalKey(from)[len(journalPrefix):])
	defer it.Release()

	var out []ledger.Notification
	for it.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var n ledger.Notification
		if err := rlp.DecodeBytes(it.Value(), &n); err != nil {
			return nil, fmt.Errorf("decode notification %x: %w", it.Key(), err)
		}
		out = append(out, n)
	}
	return out, it.Error()
}

// SubscribeNotifications delivers every notification appended after the
// call to ch.
func (s *Store) SubscribeNotifications(ch chan<- ledger.Notification) event.Subscription {
	return s.scope.Track(s.feed.Subscribe(ch))
}
