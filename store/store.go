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

// Package store persists the committed notification journal and component
// snapshots in a go-ethereum key-value database.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// Database engines.
const (
	EngineMemory  = "memory"
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
)

var (
	// Storage key prefixes
	journalPrefix  = []byte("j") // journalPrefix + seq (uint64 big endian) -> rlp(Notification)
	snapshotPrefix = []byte("s") // snapshotPrefix + name -> rlp(snapshotRecord)
	headKey        = []byte("JournalHead")
)

// ErrUnknownEngine is returned by Open for an unsupported database engine.
var ErrUnknownEngine = errors.New("unknown database engine")

type snapshotRecord struct {
	Seq  uint64 // journal head the snapshot was taken at
	Data []byte
}

// Store is the node's persistent storage. It implements ledger.Sink and
// forwards appended notifications to subscribers.
type Store struct {
	db ethdb.KeyValueStore

	mu    sync.Mutex
	head  uint64
	feed  event.Feed
	scope event.SubscriptionScope
}

// Open opens a store with the given engine. dir is ignored for the memory
// engine. cache is in megabytes.
func Open(engine, dir string, cache, handles int) (*Store, error) {
	var (
		db  ethdb.KeyValueStore
		err error
	)
	switch engine {
	case EngineMemory, "":
		db = memorydb.New()
	case EngineLevelDB:
		db, err = leveldb.New(dir, cache, handles, "dao/db/", false)
	case EnginePebble:
		db, err = pebble.New(dir, cache, handles, "dao/db/", false, false)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database at %s: %w", engine, dir, err)
	}
	log.Info("Opened database", "engine", engine, "dir", dir, "cache", cache, "handles", handles)
	return New(db)
}

// New wraps an already open database.
func New(db ethdb.KeyValueStore) (*Store, error) {
	s := &Store{db: db}
	ok, err := db.Has(headKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}
	enc, err := db.Get(headKey)
	if err != nil {
		return nil, err
	}
	if len(enc) != 8 {
		return nil, fmt.Errorf("corrupt journal head of %d bytes", len(enc))
	}
	s.head = binary.BigEndian.Uint64(enc)
	return s, nil
}

// Close unsubscribes every subscriber and closes the database.
func (s *Store) Close() error {
	s.scope.Close()
	return s.db.Close()
}

func journalKey(seq uint64) []byte {
	key := make([]byte, len(journalPrefix)+8)
	copy(key, journalPrefix)
	binary.BigEndian.PutUint64(key[len(journalPrefix):], seq)
	return key
}

func snapshotKey(name string) []byte {
	return append(append([]byte{}, snapshotPrefix...), name...)
}
