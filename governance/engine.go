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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
)

const source = "governance"

var (
	proposalCounter = metrics.NewRegisteredCounter("dao/governance/proposals", nil)
	voteMeter       = metrics.NewRegisteredMeter("dao/governance/votes", nil)
	passedCounter   = metrics.NewRegisteredCounter("dao/governance/passed", nil)
	rejectedCounter = metrics.NewRegisteredCounter("dao/governance/rejected", nil)
	validatorGauge  = metrics.NewRegisteredGauge("dao/governance/validators", nil)
)

// Engine is the validator DAO. Validators create funding proposals and vote
// on them; once the voting window has elapsed anyone may execute a proposal,
// which pays the payee through the vault if quorum and approval are met.
//
// Engine is not safe for concurrent use; the host runtime serializes calls.
type Engine struct {
	address common.Address
	vault   Vault
	roles   *roles.Registry
	params  Params

	validatorCount uint64

	// Proposal and option id i live at index i-1.
	proposals []*Proposal
	votes     map[uint64]map[common.Address]bool // proposal id -> voter -> support
	options   []*Option
}

// New creates an engine living at address, paying out through vault.
func New(address common.Address, vault Vault, admin common.Address, validators []common.Address, params *Params) (*Engine, error) {
	if params == nil {
		params = DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if address == (common.Address{}) || admin == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if vault == nil {
		return nil, fmt.Errorf("%w: no vault", ErrInvalidAddress)
	}
	e := &Engine{
		address: address,
		vault:   vault,
		roles:   roles.NewRegistry(),
		params:  *params,
		votes:   make(map[uint64]map[common.Address]bool),
	}
	e.roles.Grant(roles.AdminRole, admin)
	for _, v := range validators {
		switch {
		case v == (common.Address{}):
			return nil, ErrInvalidAddress
		case v == address:
			return nil, ErrSelfReferential
		}
		if e.roles.Grant(roles.ValidatorRole, v) {
			e.validatorCount++
		}
	}
	if e.validatorCount == 0 {
		return nil, ErrNoValidators
	}
	validatorGauge.Update(int64(e.validatorCount))
	return e, nil
}

// Address returns the engine's principal.
func (e *Engine) Address() common.Address { return e.address }

func (e *Engine) isAdmin(addr common.Address) bool {
	return e.roles.Has(roles.AdminRole, addr)
}

// AddValidator admits principal to the validator set.
func (e *Engine) AddValidator(env *ledger.Env, principal common.Address) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if principal == (common.Address{}) {
		return ErrInvalidAddress
	}
	if e.roles.Has(roles.ValidatorRole, principal) {
		return ErrAlreadyValidator
	}
	if principal == e.address {
		return ErrSelfReferential
	}
	e.roles.Grant(roles.ValidatorRole, principal)
	e.validatorCount++
	validatorGauge.Update(int64(e.validatorCount))

	env.Emit(ledger.Notification{Source: source, Op: "ValidatorAdded", Subject: principal, ID: e.validatorCount})
	log.Info("Validator added", "validator", principal, "count", e.validatorCount)
	return nil
}

// RemoveValidator removes principal from the validator set. The set never
// becomes empty. Votes already cast by principal remain counted.
func (e *Engine) RemoveValidator(env *ledger.Env, principal common.Address) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if !e.roles.Has(roles.ValidatorRole, principal) {
		return ErrNotValidator
	}
	if e.validatorCount == 1 {
		return ErrLastValidator
	}
	e.roles.Revoke(roles.ValidatorRole, principal)
	e.validatorCount--
	validatorGauge.Update(int64(e.validatorCount))

	env.Emit(ledger.Notification{Source: source, Op: "ValidatorRemoved", Subject: principal, ID: e.validatorCount})
	log.Info("Validator removed", "validator", principal, "count", e.validatorCount)
	return nil
}

// IsValidator reports whether addr is in the validator set.
func (e *Engine) IsValidator(addr common.Address) bool {
	return e.roles.Has(roles.ValidatorRole, addr)
}

// ValidatorCount returns the size of the validator set.
func (e *Engine) ValidatorCount() uint64 { return e.validatorCount }

// Validators returns the validator set in address order.
func (e *Engine) Validators() []common.Address {
	return e.roles.Members(roles.ValidatorRole)
}

// Params returns the current governance parameters.
func (e *Engine) Params() Params { return e.params }

// SetVotingPeriod changes the voting window of proposals created afterwards.
func (e *Engine) SetVotingPeriod(env *ledger.Env, period uint64) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if period < MinVotingPeriod || period > MaxVotingPeriod {
		return ErrInvalidVotingPeriod
	}
	return e.updateParam(env, "VotingPeriodUpdated", &e.params.VotingPeriod, period)
}

// SetMinimumQuorum changes the quorum percentage. The new value applies to
// every proposal executed afterwards, including ones already open.
func (e *Engine) SetMinimumQuorum(env *ledger.Env, quorum uint64) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if quorum < 1 || quorum > 100 {
		return ErrInvalidQuorum
	}
	return e.updateParam(env, "QuorumUpdated", &e.params.MinimumQuorum, quorum)
}

// SetMinimumApproval changes the approval percentage. Like the quorum, it is
// read at execution time.
func (e *Engine) SetMinimumApproval(env *ledger.Env, approval uint64) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if approval <= 50 || approval > 100 {
		return ErrInvalidApproval
	}
	return e.updateParam(env, "ApprovalUpdated", &e.params.MinimumApproval, approval)
}

func (e *Engine) updateParam(env *ledger.Env, op string, field *uint64, value uint64) error {
	old := *field
	*field = value
	env.Emit(ledger.Notification{Source: source, Op: op, ID: value, Detail: fmt.Sprint(old)})
	log.Info("Governance parameter updated", "op", op, "old", old, "new", value)
	return nil
}

// GrantAdmin grants the admin role to principal.
func (e *Engine) GrantAdmin(env *ledger.Env, principal common.Address) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if principal == (common.Address{}) {
		return ErrInvalidAddress
	}
	if e.roles.Grant(roles.AdminRole, principal) {
		env.Emit(ledger.Notification{Source: source, Op: "AdminGranted", Subject: principal, Flag: true})
		log.Info("Governance admin granted", "admin", principal)
	}
	return nil
}

// RevokeAdmin revokes the admin role from principal. The last admin stays.
func (e *Engine) RevokeAdmin(env *ledger.Env, principal common.Address) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	if e.isAdmin(principal) && e.roles.Count(roles.AdminRole) == 1 {
		return ErrLastAdmin
	}
	if e.roles.Revoke(roles.AdminRole, principal) {
		env.Emit(ledger.Notification{Source: source, Op: "AdminRevoked", Subject: principal})
		log.Info("Governance admin revoked", "admin", principal)
	}
	return nil
}

// Admins returns the holders of the admin role.
func (e *Engine) Admins() []common.Address {
	return e.roles.Members(roles.AdminRole)
}
