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

package api

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mccoysc/validatordao/faults"
	"github.com/mccoysc/validatordao/genesis"
	"github.com/mccoysc/validatordao/ledger"
)

// DevAPI executes operations on behalf of any sender. It performs no
// authentication of its own and must only be exposed on development nodes.
type DevAPI struct {
	sys *genesis.System
}

// NewDevAPI creates the dev transaction API.
func NewDevAPI(sys *genesis.System) *DevAPI {
	return &DevAPI{sys: sys}
}

// ProposalArgs are the arguments of a direct funding proposal.
type ProposalArgs struct {
	Description string         `json:"description"`
	Amount      *hexutil.Big   `json:"amount"`
	Payee       common.Address `json:"payee"`
	Details     string         `json:"details"`
}

// OptionArgs are the arguments of a new catalog option.
type OptionArgs struct {
	Provider common.Address `json:"provider"`
	Name     string         `json:"name"`
	Details  string         `json:"details"`
	Price    *hexutil.Big   `json:"price"`
}

// call runs fn as from. Component addresses are refused: their balances are
// only moved by their own operations, which keep their books in step.
func (api *DevAPI) call(from common.Address, fn func(env *ledger.Env) error) error {
	if from == api.sys.Vault.Address() || from == api.sys.Engine.Address() {
		return wrapError(fmt.Errorf("%w: %s is a component", faults.ErrInvalidAddress, from.Hex()))
	}
	if err := api.sys.Runtime.Call(from, fn); err != nil {
		return wrapError(err)
	}
	return nil
}

// Mint credits a principal's bank balance.
func (api *DevAPI) Mint(to common.Address, amount *hexutil.Big) error {
	value, err := fromBig(amount)
	if err != nil {
		return wrapError(err)
	}
	log.Warn("Minting dev funds", "to", to, "amount", value)
	return api.call(to, func(env *ledger.Env) error {
		api.sys.Bank.Mint(to, value)
		env.Emit(ledger.Notification{Source: "bank", Op: "Minted", Subject: to, Amount: value})
		return nil
	})
}

// Deposit moves funds from the sender into the vault.
func (api *DevAPI) Deposit(from common.Address, amount *hexutil.Big) error {
	value, err := fromBig(amount)
	if err != nil {
		return wrapError(err)
	}
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.Deposit(env, value)
	})
}

// Send transfers funds between principals. A transfer to the vault is
// credited as a deposit.
func (api *DevAPI) Send(from, to common.Address, amount *hexutil.Big) error {
	value, err := fromBig(amount)
	if err != nil {
		return wrapError(err)
	}
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Bank.Transfer(env, from, to, value)
	})
}

// CreateProposal opens a direct funding proposal and returns its id.
func (api *DevAPI) CreateProposal(from common.Address, args ProposalArgs) (hexutil.Uint64, error) {
	value, err := fromBig(args.Amount)
	if err != nil {
		return 0, wrapError(err)
	}
	var id uint64
	err = api.call(from, func(env *ledger.Env) (err error) {
		id, err = api.sys.Engine.CreateProposal(env, args.Description, value, args.Payee, args.Details)
		return err
	})
	return hexutil.Uint64(id), err
}

// ProposeOption opens a proposal buying units of a catalog option.
func (api *DevAPI) ProposeOption(from common.Address, option, units hexutil.Uint64, description string) (hexutil.Uint64, error) {
	var id uint64
	err := api.call(from, func(env *ledger.Env) (err error) {
		id, err = api.sys.Engine.ProposeOption(env, uint64(option), uint64(units), description)
		return err
	})
	return hexutil.Uint64(id), err
}

// Vote records the sender's vote on a proposal.
func (api *DevAPI) Vote(from common.Address, id hexutil.Uint64, support bool) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.Vote(env, uint64(id), support)
	})
}

// ExecuteProposal finalizes a closed proposal and reports whether it passed.
func (api *DevAPI) ExecuteProposal(from common.Address, id hexutil.Uint64) (bool, error) {
	var passed bool
	err := api.call(from, func(env *ledger.Env) (err error) {
		passed, err = api.sys.Engine.ExecuteProposal(env, uint64(id))
		return err
	})
	return passed, err
}

// AddValidator adds a principal to the validator set.
func (api *DevAPI) AddValidator(from, validator common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.AddValidator(env, validator)
	})
}

// RemoveValidator removes a principal from the validator set.
func (api *DevAPI) RemoveValidator(from, validator common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.RemoveValidator(env, validator)
	})
}

// SetVotingPeriod sets the voting window of new proposals, in seconds.
func (api *DevAPI) SetVotingPeriod(from common.Address, period hexutil.Uint64) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.SetVotingPeriod(env, uint64(period))
	})
}

// SetMinimumQuorum sets the quorum percentage.
func (api *DevAPI) SetMinimumQuorum(from common.Address, quorum hexutil.Uint64) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.SetMinimumQuorum(env, uint64(quorum))
	})
}

// SetMinimumApproval sets the approval percentage.
func (api *DevAPI) SetMinimumApproval(from common.Address, approval hexutil.Uint64) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.SetMinimumApproval(env, uint64(approval))
	})
}

// AddOption adds a catalog option and returns its id.
func (api *DevAPI) AddOption(from common.Address, args OptionArgs) (hexutil.Uint64, error) {
	price, err := fromBig(args.Price)
	if err != nil {
		return 0, wrapError(err)
	}
	var id uint64
	err = api.call(from, func(env *ledger.Env) (err error) {
		id, err = api.sys.Engine.AddOption(env, args.Provider, args.Name, args.Details, price)
		return err
	})
	return hexutil.Uint64(id), err
}

// DeactivateOption withdraws a catalog option.
func (api *DevAPI) DeactivateOption(from common.Address, id hexutil.Uint64) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Engine.DeactivateOption(env, uint64(id))
	})
}

// ManagerWithdraw pays an allowlisted recipient out of the vault.
func (api *DevAPI) ManagerWithdraw(from common.Address, amount *hexutil.Big, recipient common.Address) error {
	value, err := fromBig(amount)
	if err != nil {
		return wrapError(err)
	}
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.ManagerWithdraw(env, value, recipient)
	})
}

// SetRecipient adds or removes a manager withdrawal recipient.
func (api *DevAPI) SetRecipient(from, recipient common.Address, allowed bool) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.SetRecipient(env, recipient, allowed)
	})
}

// RequestEmergencyWithdraw starts the emergency delay.
func (api *DevAPI) RequestEmergencyWithdraw(from common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.RequestEmergencyWithdraw(env)
	})
}

// CancelEmergencyWithdraw clears a pending emergency request.
func (api *DevAPI) CancelEmergencyWithdraw(from common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.CancelEmergencyWithdraw(env)
	})
}

// ExecuteEmergencyWithdraw sweeps the vault to the sender once unlocked.
func (api *DevAPI) ExecuteEmergencyWithdraw(from common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.ExecuteEmergencyWithdraw(env)
	})
}

// SetEmergencyDelay sets the emergency delay, in seconds.
func (api *DevAPI) SetEmergencyDelay(from common.Address, delay hexutil.Uint64) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.SetEmergencyDelay(env, uint64(delay))
	})
}

// Pause stops deposits and payouts.
func (api *DevAPI) Pause(from common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.Pause(env)
	})
}

// Unpause resumes deposits and payouts.
func (api *DevAPI) Unpause(from common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.Unpause(env)
	})
}

// UpdateGovernanceRole moves the vault's governance role to another principal.
func (api *DevAPI) UpdateGovernanceRole(from, next common.Address) error {
	return api.call(from, func(env *ledger.Env) error {
		return api.sys.Vault.UpdateGovernanceRole(env, next)
	})
}
