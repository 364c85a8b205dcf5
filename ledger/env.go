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
	"github.com/ethereum/go-ethereum/common"
)

// Env is the execution context of one externally visible call: the
// authenticated caller, the block time and the notifications emitted so far.
type Env struct {
	Sender common.Address
	Time   uint64

	log *[]Notification
}

// NewEnv creates a root call context.
func NewEnv(sender common.Address, time uint64) *Env {
	return &Env{Sender: sender, Time: time, log: new([]Notification)}
}

// As derives the context of a nested call made by sender. Time and the
// notification buffer are shared with the parent.
func (e *Env) As(sender common.Address) *Env {
	return &Env{Sender: sender, Time: e.Time, log: e.log}
}

// Emit appends a notification to the call's buffer.
func (e *Env) Emit(n Notification) {
	n.Actor = e.Sender
	n.Time = e.Time
	if n.Amount != nil {
		n.Amount = n.Amount.Clone()
	}
	*e.log = append(*e.log, n)
}

// Mark returns a position that Revert can roll the buffer back to.
func (e *Env) Mark() int {
	return len(*e.log)
}

// Revert drops the notifications emitted after mark.
func (e *Env) Revert(mark int) {
	if mark < len(*e.log) {
		*e.log = (*e.log)[:mark]
	}
}

// Notifications returns the buffered notifications.
func (e *Env) Notifications() []Notification {
	out := make([]Notification, len(*e.log))
	copy(out, *e.log)
	return out
}
