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
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"

	"github.com/mccoysc/validatordao/ledger"
	"github.com/mccoysc/validatordao/roles"
)

const source = "treasury"

var (
	depositMeter      = metrics.NewRegisteredMeter("dao/treasury/deposit", nil)
	disburseMeter     = metrics.NewRegisteredMeter("dao/treasury/disburse", nil)
	withdrawMeter     = metrics.NewRegisteredMeter("dao/treasury/withdraw", nil)
	emergencyCounter  = metrics.NewRegisteredCounter("dao/treasury/emergency", nil)
	reentrancyCounter = metrics.NewRegisteredCounter("dao/treasury/reentrancy", nil)
)

// Vault holds contributed funds and releases them through three paths:
// Disburse (governance role), ManagerWithdraw (manager role, allowlisted
// recipients) and the delayed emergency sweep (admin role).
//
// Vault is not safe for concurrent use; the host runtime serializes calls.
type Vault struct {
	address common.Address
	bank    *ledger.Bank
	roles   *roles.Registry

	governance    common.Address
	held          *uint256.Int
	deposited     *uint256.Int
	spent         *uint256.Int
	withdrawn     *uint256.Int
	contributions map[common.Address]*uint256.Int
	disbursements []*Disbursement // disbursement id i lives at index i-1
	recipients    mapset.Set[common.Address]
	paused        bool

	emergency      EmergencyRequest
	emergencyDelay uint64

	entered bool // reentrancy guard of the fund moving entry points
}

// New creates a vault living at address, administered by admin, which accepts
// disbursement calls from governance. The vault registers itself as the
// bank's receive hook for its address, so plain transfers become deposits.
func New(address common.Address, bank *ledger.Bank, admin, governance common.Address, config *Config) (*Vault, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if address == (common.Address{}) || admin == (common.Address{}) || governance == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if config.EmergencyDelay < MinEmergencyDelay {
		return nil, ErrInvalidDelay
	}
	v := &Vault{
		address:        address,
		bank:           bank,
		roles:          roles.NewRegistry(),
		governance:     governance,
		held:           new(uint256.Int),
		deposited:      new(uint256.Int),
		spent:          new(uint256.Int),
		withdrawn:      new(uint256.Int),
		contributions:  make(map[common.Address]*uint256.Int),
		recipients:     mapset.NewThreadUnsafeSet[common.Address](),
		emergencyDelay: config.EmergencyDelay,
	}
	v.roles.Grant(roles.AdminRole, admin)
	v.roles.Grant(roles.GovernanceRole, governance)
	bank.SetHook(address, v.Receive)
	return v, nil
}

// Address returns the vault's principal.
func (v *Vault) Address() common.Address { return v.address }

// enter acquires the reentrancy guard. The returned function releases it.
func (v *Vault) enter() (func(), error) {
	if v.entered {
		reentrancyCounter.Inc(1)
		return nil, ErrReentrantCall
	}
	v.entered = true
	return func() { v.entered = false }, nil
}

// Deposit pulls amount from the caller into the vault.
func (v *Vault) Deposit(env *ledger.Env, amount *uint256.Int) error {
	if v.paused {
		return ErrPaused
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if env.Sender == v.address {
		return ErrInvalidAddress
	}
	if err := v.bank.Draw(env, env.Sender, v.address, amount); err != nil {
		return err
	}
	v.credit(env, env.Sender, amount, "Deposit")
	return nil
}

// Receive handles value pushed to the vault without an instruction. It is
// routed to the deposit path; the bank has already moved the funds and
// reverts them if Receive fails.
func (v *Vault) Receive(env *ledger.Env, from common.Address, amount *uint256.Int) error {
	if v.paused {
		return ErrPaused
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	v.credit(env.As(from), from, amount, "Received")
	return nil
}

func (v *Vault) credit(env *ledger.Env, from common.Address, amount *uint256.Int, op string) {
	contrib, ok := v.contributions[from]
	if !ok {
		contrib = new(uint256.Int)
		v.contributions[from] = contrib
	}
	contrib.Add(contrib, amount)
	v.held.Add(v.held, amount)
	v.deposited.Add(v.deposited, amount)

	depositMeter.Mark(1)
	env.Emit(ledger.Notification{Source: source, Op: op, Subject: from, Amount: amount})
	log.Debug("Vault deposit", "from", from, "amount", amount.Dec(), "held", v.held.Dec())
}

// Disburse pays amount to provider on behalf of governance. The ledger entry
// and balance changes are recorded before the transfer and undone if it fails.
func (v *Vault) Disburse(env *ledger.Env, amount *uint256.Int, provider common.Address, details string) (uint64, error) {
	if !v.roles.Has(roles.GovernanceRole, env.Sender) {
		return 0, ErrNotAuthorized
	}
	release, err := v.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if v.paused {
		return 0, ErrPaused
	}
	if amount == nil || amount.IsZero() {
		return 0, ErrZeroAmount
	}
	if v.held.Lt(amount) {
		return 0, ErrInsufficientFunds
	}
	if strings.TrimSpace(details) == "" {
		return 0, ErrMissingDetails
	}
	if provider == (common.Address{}) || provider == v.address {
		return 0, ErrInvalidAddress
	}
	entry := &Disbursement{
		ID:        uint64(len(v.disbursements)) + 1,
		Amount:    amount.Clone(),
		Provider:  provider,
		Details:   details,
		Timestamp: env.Time,
		Executed:  true,
	}
	v.disbursements = append(v.disbursements, entry)
	v.held.Sub(v.held, amount)
	v.spent.Add(v.spent, amount)

	if err := v.bank.Transfer(env, v.address, provider, amount); err != nil {
		v.disbursements = v.disbursements[:len(v.disbursements)-1]
		v.held.Add(v.held, amount)
		v.spent.Sub(v.spent, amount)
		log.Warn("Disbursement reverted", "provider", provider, "amount", amount.Dec(), "err", err)
		return 0, fmt.Errorf("disburse to %s: %w", provider.Hex(), err)
	}
	disburseMeter.Mark(1)
	env.Emit(ledger.Notification{Source: source, Op: "Disbursed", ID: entry.ID, Subject: provider, Amount: amount, Detail: details})
	log.Info("Funds disbursed", "id", entry.ID, "provider", provider, "amount", amount.Dec())
	return entry.ID, nil
}

// ManagerWithdraw sends amount to an allowlisted recipient. It is independent
// of governance and leaves the disbursement ledger untouched.
func (v *Vault) ManagerWithdraw(env *ledger.Env, amount *uint256.Int, recipient common.Address) error {
	if !v.roles.Has(roles.ManagerRole, env.Sender) {
		return ErrNotTreasuryRole
	}
	release, err := v.enter()
	if err != nil {
		return err
	}
	defer release()

	if v.paused {
		return ErrPaused
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if recipient == v.address {
		return ErrInvalidAddress
	}
	if !v.recipients.Contains(recipient) {
		return ErrRecipientNotAllowed
	}
	if v.held.Lt(amount) {
		return ErrInsufficientFunds
	}
	v.held.Sub(v.held, amount)
	v.withdrawn.Add(v.withdrawn, amount)
	if err := v.bank.Transfer(env, v.address, recipient, amount); err != nil {
		v.held.Add(v.held, amount)
		v.withdrawn.Sub(v.withdrawn, amount)
		return fmt.Errorf("withdraw to %s: %w", recipient.Hex(), err)
	}
	withdrawMeter.Mark(1)
	env.Emit(ledger.Notification{Source: source, Op: "ManagerWithdrawal", Subject: recipient, Amount: amount})
	log.Info("Manager withdrawal", "recipient", recipient, "amount", amount.Dec())
	return nil
}

// AvailableBalance returns the funds currently held.
func (v *Vault) AvailableBalance() *uint256.Int {
	return v.held.Clone()
}

// Contribution returns from's cumulative deposits.
func (v *Vault) Contribution(from common.Address) *uint256.Int {
	if c, ok := v.contributions[from]; ok {
		return c.Clone()
	}
	return new(uint256.Int)
}

// Disbursement returns the ledger entry with the given id.
func (v *Vault) Disbursement(id uint64) (*Disbursement, bool) {
	if id == 0 || id > uint64(len(v.disbursements)) {
		return nil, false
	}
	return v.disbursements[id-1].copy(), true
}

// DisbursementCount returns the number of ledger entries.
func (v *Vault) DisbursementCount() uint64 {
	return uint64(len(v.disbursements))
}

// Stats returns a summary of the vault's books.
func (v *Vault) Stats() Stats {
	return Stats{
		Held:          v.held.Clone(),
		Deposited:     v.deposited.Clone(),
		Spent:         v.spent.Clone(),
		Withdrawn:     v.withdrawn.Clone(),
		Disbursements: uint64(len(v.disbursements)),
		Contributors:  uint64(len(v.contributions)),
		Paused:        v.paused,
	}
}

// Paused reports whether deposits and payouts are suspended.
func (v *Vault) Paused() bool { return v.paused }

// Governance returns the principal holding the governance role.
func (v *Vault) Governance() common.Address { return v.governance }

// IsRecipient reports whether addr is on the manager withdrawal allowlist.
func (v *Vault) IsRecipient(addr common.Address) bool {
	return v.recipients.Contains(addr)
}

// HasRole reports whether principal holds role in the vault's registry.
func (v *Vault) HasRole(role roles.Role, principal common.Address) bool {
	return v.roles.Has(role, principal)
}
