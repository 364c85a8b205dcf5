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

import "github.com/mccoysc/validatordao/faults"

// Authorization errors
var (
	ErrNotValidator  = faults.New(faults.Authorization, "principal is not a validator")
	ErrNotAuthorized = faults.ErrNotAuthorized
)

// Validation errors
var (
	ErrInvalidAddress      = faults.ErrInvalidAddress
	ErrSelfReferential     = faults.New(faults.Validation, "principal refers to the governance engine itself")
	ErrNoValidators        = faults.New(faults.Validation, "at least one initial validator required")
	ErrMissingField        = faults.New(faults.Validation, "required text field is empty")
	ErrInvalidAmount       = faults.New(faults.Validation, "amount must be positive")
	ErrInvalidOption       = faults.New(faults.Validation, "catalog option does not exist")
	ErrProposalNotFound    = faults.New(faults.Validation, "proposal not found")
	ErrInvalidVotingPeriod = faults.New(faults.Validation, "voting period out of range")
	ErrInvalidQuorum       = faults.New(faults.Validation, "quorum percentage out of range")
	ErrInvalidApproval     = faults.New(faults.Validation, "approval percentage out of range")
)

// State errors
var (
	ErrAlreadyValidator = faults.New(faults.StateConflict, "principal is already a validator")
	ErrAlreadyVoted     = faults.New(faults.StateConflict, "validator has already voted on this proposal")
	ErrAlreadyExecuted  = faults.New(faults.StateConflict, "proposal already executed")
	ErrAlreadyInactive  = faults.New(faults.StateConflict, "catalog option already inactive")
	ErrOptionInactive   = faults.New(faults.StateConflict, "catalog option is inactive")
)

// Resource errors
var (
	ErrInsufficientFunds = faults.ErrInsufficientFunds
	ErrLastValidator     = faults.New(faults.ResourceConflict, "cannot remove the last validator")
	ErrQuorumNotReached  = faults.New(faults.ResourceConflict, "quorum not reached")
	ErrLastAdmin         = faults.New(faults.ResourceConflict, "cannot revoke the last admin")
)

// Timing errors
var (
	ErrVotingClosed    = faults.New(faults.Temporal, "voting period has ended")
	ErrVotingStillOpen = faults.New(faults.Temporal, "voting period has not ended")
)
