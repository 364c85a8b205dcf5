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

// Package faults classifies the errors returned by the DAO components.
package faults

import "errors"

// Class groups failures by why the call was rejected.
type Class uint8

const (
	Unknown          Class = iota
	Authorization          // caller lacks the required role
	Validation             // malformed input
	StateConflict          // operation not applicable to the entity's current state
	ResourceConflict       // shared resource preconditions unmet
	Temporal               // outside the operation's time window
	Runtime                // host failure (transfer, reentrancy)
)

func (c Class) String() string {
	switch c {
	case Authorization:
		return "authorization"
	case Validation:
		return "validation"
	case StateConflict:
		return "state-conflict"
	case ResourceConflict:
		return "resource-conflict"
	case Temporal:
		return "temporal"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is a named, classified failure. Values are used as sentinels and
// compared with errors.Is.
type Error struct {
	class Class
	msg   string
}

// New creates a classified sentinel error.
func New(class Class, msg string) *Error {
	return &Error{class: class, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Class returns the failure class of the error.
func (e *Error) Class() Class { return e.class }

// ClassOf returns the class of the first classified error in err's chain.
func ClassOf(err error) Class {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.class
	}
	return Unknown
}

// Shared failures raised by more than one component.
var (
	ErrInvalidAddress    = New(Validation, "invalid address")
	ErrZeroAmount        = New(Validation, "amount must be greater than zero")
	ErrInsufficientFunds = New(ResourceConflict, "insufficient funds")
	ErrNotAuthorized     = New(Authorization, "caller is not authorized")
	ErrReentrantCall     = New(Runtime, "reentrant call")
	ErrTransferFailed    = New(Runtime, "transfer failed")
)
