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

package treasury

import "github.com/mccoysc/validatordao/faults"

// Authorization errors
var (
	ErrNotAuthorized       = faults.ErrNotAuthorized
	ErrNotTreasuryRole     = faults.New(faults.Authorization, "caller does not hold the treasury manager role")
	ErrRecipientNotAllowed = faults.New(faults.Authorization, "recipient is not on the allowlist")
)

// Validation errors
var (
	ErrZeroAmount     = faults.ErrZeroAmount
	ErrInvalidAddress = faults.ErrInvalidAddress
	ErrMissingDetails = faults.New(faults.Validation, "disbursement details missing")
	ErrInvalidDelay   = faults.New(faults.Validation, "emergency delay below minimum")
	ErrInvalidRole    = faults.New(faults.Validation, "role cannot be administered directly")
)

// State errors
var (
	ErrPaused       = faults.New(faults.StateConflict, "vault is paused")
	ErrNotPaused    = faults.New(faults.StateConflict, "vault is not paused")
	ErrNotRequested = faults.New(faults.StateConflict, "no emergency withdrawal requested")
)

// Resource errors
var (
	ErrInsufficientFunds = faults.ErrInsufficientFunds
	ErrLastAdmin         = faults.New(faults.ResourceConflict, "cannot revoke the last admin")
)

// Timing errors
var (
	ErrDelayNotElapsed = faults.New(faults.Temporal, "emergency delay has not elapsed")
)

// Runtime errors
var (
	ErrReentrantCall  = faults.ErrReentrantCall
	ErrTransferFailed = faults.ErrTransferFailed
)
