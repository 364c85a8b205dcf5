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

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
)

// RequestEmergencyWithdraw starts the emergency delay. A repeated request
// restarts the clock.
func (v *Vault) RequestEmergencyWithdraw(env *ledger.Env) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	v.emergency = EmergencyRequest{Requested: true, RequestTime: env.Time}
	env.Emit(ledger.Notification{Source: source, Op: "EmergencyWithdrawRequested", Subject: env.Sender})
	log.Warn("Emergency withdrawal requested", "admin", env.Sender, "unlock", env.Time+v.emergencyDelay)
	return nil
}

// CancelEmergencyWithdraw clears a pending emergency request. Cancelling
// with nothing pending is a no-op.
func (v *Vault) CancelEmergencyWithdraw(env *ledger.Env) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if !v.emergency.Requested {
		return nil
	}
	v.emergency = EmergencyRequest{}
	env.Emit(ledger.Notification{Source: source, Op: "EmergencyWithdrawCancelled", Subject: env.Sender})
	log.Info("Emergency withdrawal cancelled", "admin", env.Sender)
	return nil
}

// ExecuteEmergencyWithdraw sweeps the whole held balance to the calling admin
// once the delay has elapsed. It stays available while the vault is paused.
func (v *Vault) ExecuteEmergencyWithdraw(env *ledger.Env) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	release, err := v.enter()
	if err != nil {
		return err
	}
	defer release()

	if !v.emergency.Requested {
		return ErrNotRequested
	}
	if env.Time < v.emergency.RequestTime+v.emergencyDelay {
		return ErrDelayNotElapsed
	}
	request, amount := v.emergency, v.held.Clone()

	v.emergency = EmergencyRequest{}
	v.held.Clear()
	v.withdrawn.Add(v.withdrawn, amount)
	if !amount.IsZero() {
		if err := v.bank.Transfer(env, v.address, env.Sender, amount); err != nil {
			v.emergency = request
			v.held.Set(amount)
			v.withdrawn.Sub(v.withdrawn, amount)
			return fmt.Errorf("emergency withdraw to %s: %w", env.Sender.Hex(), err)
		}
	}
	emergencyCounter.Inc(1)
	env.Emit(ledger.Notification{Source: source, Op: "EmergencyWithdrawExecuted", Subject: env.Sender, Amount: amount})
	log.Warn("Emergency withdrawal executed", "admin", env.Sender, "amount", amount.Dec())
	return nil
}

// SetEmergencyDelay changes the delay applied to future and pending requests.
func (v *Vault) SetEmergencyDelay(env *ledger.Env, delay uint64) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if delay < MinEmergencyDelay {
		return ErrInvalidDelay
	}
	old := v.emergencyDelay
	v.emergencyDelay = delay
	env.Emit(ledger.Notification{Source: source, Op: "EmergencyDelayUpdated", ID: delay, Detail: fmt.Sprint(old)})
	log.Info("Emergency delay updated", "old", old, "new", delay)
	return nil
}

// EmergencyStatus returns the pending request and the time it unlocks at.
func (v *Vault) EmergencyStatus() (EmergencyRequest, uint64) {
	if !v.emergency.Requested {
		return v.emergency, 0
	}
	return v.emergency, v.emergency.RequestTime + v.emergencyDelay
}

// EmergencyDelay returns the current delay in seconds.
func (v *Vault) EmergencyDelay() uint64 { return v.emergencyDelay }
