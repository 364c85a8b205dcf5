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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/ledger"
)

// Vault is the custody component the engine spends from.
type Vault interface {
	// Address is the vault's own principal. Proposals cannot pay it.
	Address() common.Address

	// AvailableBalance returns the funds the vault can currently disburse.
	// The value may change between proposal creation and execution.
	AvailableBalance() *uint256.Int

	// Disburse pays amount to payee. env.Sender is the engine's own
	// address, which must hold the vault's governance role.
	Disburse(env *ledger.Env, amount *uint256.Int, payee common.Address, details string) (uint64, error)
}
