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

package ledger

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Clock returns the current block time in unix seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 { return uint64(time.Now().Unix()) }

// Checkpointer is component state that a failed call must leave untouched.
// Checkpoint captures the current state and returns a function that puts it
// back.
type Checkpointer interface {
	Checkpoint() func()
}

// CommitHook runs after a successful call, while the runtime lock is still
// held, with the notifications the call produced.
type CommitHook func(batch []Notification) error

// Runtime executes externally visible calls one at a time. Each call runs to
// completion before the next starts, so component state never observes an
// interleaving. Notifications of a call are committed only if it succeeds.
type Runtime struct {
	mu    sync.Mutex
	bank  *Bank
	clock Clock
	sink  Sink
	hooks []CommitHook
	state []Checkpointer
	seq   uint64
}

// NewRuntime creates a runtime. A nil clock defaults to the system clock and
// a nil sink discards notifications.
func NewRuntime(bank *Bank, clock Clock, sink Sink) *Runtime {
	if clock == nil {
		clock = SystemClock
	}
	return &Runtime{bank: bank, clock: clock, sink: sink}
}

// Bank returns the runtime's bank.
func (rt *Runtime) Bank() *Bank { return rt.bank }

// SetSequence resumes notification numbering after a restart.
func (rt *Runtime) SetSequence(seq uint64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.seq = seq
}

// Sequence returns the sequence number of the last committed notification.
func (rt *Runtime) Sequence() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.seq
}

// Track registers component state that is rolled back when a call fails,
// including changes made by nested calls from receive hooks.
func (rt *Runtime) Track(c Checkpointer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.state = append(rt.state, c)
}

// OnCommit registers a hook run after every successful call.
func (rt *Runtime) OnCommit(hook CommitHook) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.hooks = append(rt.hooks, hook)
}

// Call runs fn as sender at the current block time.
func (rt *Runtime) Call(sender common.Address, fn func(env *Env) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	env := NewEnv(sender, rt.clock())
	restore := rt.checkpoint()
	if err := fn(env); err != nil {
		restore()
		log.Debug("Call rejected", "sender", sender, "err", err)
		return err
	}
	batch := env.Notifications()
	for i := range batch {
		rt.seq++
		batch[i].Seq = rt.seq
	}
	if rt.sink != nil && len(batch) > 0 {
		if err := rt.sink.Append(batch); err != nil {
			log.Error("Failed to commit notifications", "count", len(batch), "err", err)
		}
	}
	for _, hook := range rt.hooks {
		if err := hook(batch); err != nil {
			log.Error("Commit hook failed", "err", err)
		}
	}
	return nil
}

// checkpoint captures the bank and every tracked component.
func (rt *Runtime) checkpoint() func() {
	undo := make([]func(), 0, len(rt.state)+1)
	if rt.bank != nil {
		undo = append(undo, rt.bank.Checkpoint())
	}
	for _, c := range rt.state {
		undo = append(undo, c.Checkpoint())
	}
	return func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
}

// View runs a read-only query under the runtime lock.
func (rt *Runtime) View(fn func(now uint64)) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fn(rt.clock())
}
