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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
)

// Pause suspends deposits, disbursements and manager withdrawals.
func (v *Vault) Pause(env *ledger.Env) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if v.paused {
		return ErrPaused
	}
	v.paused = true
	env.Emit(ledger.Notification{Source: source, Op: "Paused", Flag: true})
	log.Warn("Vault paused", "admin", env.Sender)
	return nil
}

// Unpause resumes normal operation.
func (v *Vault) Unpause(env *ledger.Env) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if !v.paused {
		return ErrNotPaused
	}
	v.paused = false
	env.Emit(ledger.Notification{Source: source, Op: "Unpaused"})
	log.Info("Vault unpaused", "admin", env.Sender)
	return nil
}

// SetRecipient adds recipient to or removes it from the manager withdrawal
// allowlist.
func (v *Vault) SetRecipient(env *ledger.Env, recipient common.Address, allowed bool) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if recipient == (common.Address{}) || recipient == v.address {
		return ErrInvalidAddress
	}
	if allowed {
		v.recipients.Add(recipient)
	} else {
		v.recipients.Remove(recipient)
	}
	env.Emit(ledger.Notification{Source: source, Op: "RecipientUpdated", Subject: recipient, Flag: allowed})
	return nil
}

// Recipients returns the allowlist in address order.
func (v *Vault) Recipients() []common.Address {
	return roles.SortAddresses(v.recipients.ToSlice())
}

// UpdateGovernanceRole moves the governance role from the current holder to
// next. Only one principal holds the role at a time.
func (v *Vault) UpdateGovernanceRole(env *ledger.Env, next common.Address) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if next == (common.Address{}) {
		return ErrInvalidAddress
	}
	old := v.governance
	v.roles.Revoke(roles.GovernanceRole, old)
	v.roles.Grant(roles.GovernanceRole, next)
	v.governance = next
	env.Emit(ledger.Notification{Source: source, Op: "GovernanceRoleUpdated", Subject: next, Detail: old.Hex()})
	log.Info("Governance role updated", "old", old, "new", next)
	return nil
}

// GrantRole grants role to principal. The governance role is only moved
// through UpdateGovernanceRole.
func (v *Vault) GrantRole(env *ledger.Env, role roles.Role, principal common.Address) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if role == roles.GovernanceRole {
		return ErrInvalidRole
	}
	if principal == (common.Address{}) {
		return ErrInvalidAddress
	}
	if v.roles.Grant(role, principal) {
		env.Emit(ledger.Notification{Source: source, Op: "RoleGranted", Subject: principal, Detail: role.String(), Flag: true})
		log.Info("Vault role granted", "role", role, "principal", principal)
	}
	return nil
}

// RevokeRole revokes role from principal. The last admin cannot be revoked.
func (v *Vault) RevokeRole(env *ledger.Env, role roles.Role, principal common.Address) error {
	if !v.roles.Has(roles.AdminRole, env.Sender) {
		return ErrNotAuthorized
	}
	if role == roles.GovernanceRole {
		return ErrInvalidRole
	}
	if role == roles.AdminRole && v.roles.Has(role, principal) && v.roles.Count(role) == 1 {
		return ErrLastAdmin
	}
	if v.roles.Revoke(role, principal) {
		env.Emit(ledger.Notification{Source: source, Op: "RoleRevoked", Subject: principal, Detail: role.String()})
		log.Info("Vault role revoked", "role", role, "principal", principal)
	}
	return nil
}

// Members returns the holders of role.
func (v *Vault) Members(role roles.Role) []common.Address {
	return v.roles.Members(role)
}
