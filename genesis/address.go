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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Deployment nonces of the components.
const (
	governanceNonce uint64 = 0
	vaultNonce      uint64 = 1
)

// CalculateContractAddress deterministically calculates a component address
// based on the deployer address and nonce using CREATE opcode rules
func CalculateContractAddress(deployer common.Address, nonce uint64) common.Address {
	// CREATE address calculation: keccak256(rlp([deployer, nonce]))
	data, _ := rlp.EncodeToBytes([]interface{}{deployer, nonce})
	hash := crypto.Keccak256Hash(data)

	var addr common.Address
	copy(addr[:], hash[12:])
	return addr
}

// PredictGovernanceAddress predicts the governance engine address.
func PredictGovernanceAddress(deployer common.Address) common.Address {
	return CalculateContractAddress(deployer, governanceNonce)
}

// PredictVaultAddress predicts the treasury vault address.
func PredictVaultAddress(deployer common.Address) common.Address {
	return CalculateContractAddress(deployer, vaultNonce)
}
