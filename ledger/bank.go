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
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/faults"
)

// ReceiveHook is code attached to a principal that runs when value is pushed
// to it. The hook executes inside the transfer and may call back into the
// components; returning an error fails the transfer.
type ReceiveHook func(env *Env, from common.Address, amount *uint256.Int) error

// Bank holds the balances of every principal and moves value between them.
type Bank struct {
	balances map[common.Address]*uint256.Int
	hooks    map[common.Address]ReceiveHook
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[common.Address]*uint256.Int),
		hooks:    make(map[common.Address]ReceiveHook),
	}
}

// SetHook installs (or with nil, removes) the receive hook of addr.
func (b *Bank) SetHook(addr common.Address, hook ReceiveHook) {
	if hook == nil {
		delete(b.hooks, addr)
		return
	}
	b.hooks[addr] = hook
}

// Mint credits addr out of thin air. It is used by genesis funding and tests.
func (b *Bank) Mint(addr common.Address, amount *uint256.Int) {
	b.credit(addr, amount)
}

// BalanceOf returns a copy of addr's balance.
func (b *Bank) BalanceOf(addr common.Address) *uint256.Int {
	if bal, ok := b.balances[addr]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

// Draw moves amount from -> to on behalf of the recipient component. The
// recipient's hook is not invoked since the recipient initiated the move.
func (b *Bank) Draw(env *Env, from, to common.Address, amount *uint256.Int) error {
	return b.move(from, to, amount)
}

// Transfer pushes amount from -> to and runs the recipient's hook. If the
// hook fails, balances and notifications emitted by the hook are restored.
func (b *Bank) Transfer(env *Env, from, to common.Address, amount *uint256.Int) error {
	if err := b.move(from, to, amount); err != nil {
		return err
	}
	hook, ok := b.hooks[to]
	if !ok {
		return nil
	}
	mark := env.Mark()
	if err := hook(env.As(to), from, amount); err != nil {
		env.Revert(mark)
		if rerr := b.move(to, from, amount); rerr != nil {
			// The hook spent the value it just received.
			return fmt.Errorf("%w: hook of %s failed and value could not be returned: %v", faults.ErrTransferFailed, to.Hex(), rerr)
		}
		return fmt.Errorf("%w: %v", faults.ErrTransferFailed, err)
	}
	return nil
}

func (b *Bank) move(from, to common.Address, amount *uint256.Int) error {
	if from == to || amount.IsZero() {
		return nil
	}
	bal := b.balances[from]
	if bal == nil || bal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", faults.ErrInsufficientFunds, from.Hex(), b.BalanceOf(from).Dec(), amount.Dec())
	}
	bal.Sub(bal, amount)
	if bal.IsZero() {
		delete(b.balances, from)
	}
	b.credit(to, amount)
	return nil
}

func (b *Bank) credit(addr common.Address, amount *uint256.Int) {
	bal, ok := b.balances[addr]
	if !ok {
		bal = new(uint256.Int)
		b.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

// Balance is a persisted bank entry.
type Balance struct {
	Holder common.Address
	Amount *uint256.Int
}

// Balances lists every non-zero balance in address order.
func (b *Bank) Balances() []Balance {
	out := make([]Balance, 0, len(b.balances))
	for addr, bal := range b.balances {
		if !bal.IsZero() {
			out = append(out, Balance{Holder: addr, Amount: bal.Clone()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Holder[:], out[j].Holder[:]) < 0
	})
	return out
}

// Restore replaces all balances. Hooks are kept.
func (b *Bank) Restore(balances []Balance) {
	b.balances = make(map[common.Address]*uint256.Int, len(balances))
	for _, bal := range balances {
		if bal.Amount != nil && !bal.Amount.IsZero() {
			b.balances[bal.Holder] = bal.Amount.Clone()
		}
	}
}

// Checkpoint captures all balances. Hooks are not part of the checkpoint.
func (b *Bank) Checkpoint() func() {
	balances := b.Balances()
	return func() { b.Restore(balances) }
}
