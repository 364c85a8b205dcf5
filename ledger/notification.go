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

// Package ledger provides the host runtime the DAO components execute in:
// caller identity, block time, the monetary transfer primitive and the
// notification log.
package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Notification is the structured record a mutating operation leaves for
// external observers. It has no behavioral effect.
type Notification struct {
	Seq     uint64         // assigned on commit, 1-based
	Source  string         // emitting component
	Op      string         // operation name
	ID      uint64         // proposal, option or disbursement id, when relevant
	Actor   common.Address // caller of the operation
	Subject common.Address // payee, validator, recipient or new role holder
	Amount  *uint256.Int   // value moved or requested
	Flag    bool           // vote support, passed, paused
	Detail  string         // free text, previous value of an update
	Time    uint64         // block time of the call
}

func (n Notification) String() string {
	amount := "-"
	if n.Amount != nil {
		amount = n.Amount.Dec()
	}
	return fmt.Sprintf("#%d %s.%s id=%d actor=%s subject=%s amount=%s flag=%t",
		n.Seq, n.Source, n.Op, n.ID, n.Actor.Hex(), n.Subject.Hex(), amount, n.Flag)
}

// Sink receives committed notifications in completion order.
type Sink interface {
	Append(batch []Notification) error
}
