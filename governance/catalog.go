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
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/ledger"
)

// AddOption registers a funding option in the catalog.
func (e *Engine) AddOption(env *ledger.Env, provider common.Address, name, details string, price *uint256.Int) (uint64, error) {
	if !e.isAdmin(env.Sender) {
		return 0, ErrNotAuthorized
	}
	if provider == (common.Address{}) {
		return 0, ErrInvalidAddress
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(details) == "" {
		return 0, ErrMissingField
	}
	if price == nil || price.IsZero() {
		return 0, ErrInvalidAmount
	}
	opt := &Option{
		ID:       uint64(len(e.options)) + 1,
		Provider: provider,
		Name:     name,
		Details:  details,
		Price:    price.Clone(),
		Active:   true,
	}
	e.options = append(e.options, opt)

	env.Emit(ledger.Notification{Source: source, Op: "OptionAdded", ID: opt.ID, Subject: provider, Amount: price, Detail: name})
	log.Info("Catalog option added", "id", opt.ID, "provider", provider, "name", name, "price", price.Dec())
	return opt.ID, nil
}

// DeactivateOption hides an option from the active listing. Proposals that
// already reference it are unaffected.
func (e *Engine) DeactivateOption(env *ledger.Env, id uint64) error {
	if !e.isAdmin(env.Sender) {
		return ErrNotAuthorized
	}
	opt, ok := e.option(id)
	if !ok {
		return ErrInvalidOption
	}
	if !opt.Active {
		return ErrAlreadyInactive
	}
	opt.Active = false

	env.Emit(ledger.Notification{Source: source, Op: "OptionDeactivated", ID: id, Subject: opt.Provider})
	log.Info("Catalog option deactivated", "id", id)
	return nil
}

func (e *Engine) option(id uint64) (*Option, bool) {
	if id == 0 || id > uint64(len(e.options)) {
		return nil, false
	}
	return e.options[id-1], true
}

// Option returns a copy of catalog option id.
func (e *Engine) Option(id uint64) (*Option, bool) {
	opt, ok := e.option(id)
	if !ok {
		return nil, false
	}
	return opt.copy(), true
}

// OptionCount returns the number of options ever registered.
func (e *Engine) OptionCount() uint64 {
	return uint64(len(e.options))
}

// ActiveOptions returns the ids of active options in ascending order.
func (e *Engine) ActiveOptions() []uint64 {
	ids := make([]uint64, 0, len(e.options))
	for _, opt := range e.options {
		if opt.Active {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}
