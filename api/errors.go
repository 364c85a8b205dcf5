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

import "github.com/mccoysc/validatordao/faults"

var (
	errNegativeAmount = faults.New(faults.Validation, "negative amount")
	errAmountOverflow = faults.New(faults.Validation, "amount exceeds 256 bits")
)

// Error codes of failed DAO calls, one per error class.
const (
	codeUnknown          = -32000
	codeAuthorization    = -32001
	codeValidation       = -32002
	codeStateConflict    = -32003
	codeResourceConflict = -32004
	codeTemporal         = -32005
	codeRuntime          = -32006
)

// callError carries the error class of a failed call to the client.
type callError struct {
	err   error
	class faults.Class
}

func (e *callError) Error() string          { return e.err.Error() }
func (e *callError) Unwrap() error          { return e.err }
func (e *callError) ErrorData() interface{} { return e.class.String() }

func (e *callError) ErrorCode() int {
	switch e.class {
	case faults.Authorization:
		return codeAuthorization
	case faults.Validation:
		return codeValidation
	case faults.StateConflict:
		return codeStateConflict
	case faults.ResourceConflict:
		return codeResourceConflict
	case faults.Temporal:
		return codeTemporal
	case faults.Runtime:
		return codeRuntime
	default:
		return codeUnknown
	}
}

// wrapError attaches the error class of err for the RPC layer.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	return &callError{err: err, class: faults.ClassOf(err)}
}
