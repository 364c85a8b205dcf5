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

// Package roles implements the role registry used to gate component calls.
package roles

import (
	"bytes"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role is a 32 byte role tag.
type Role common.Hash

// NewRole derives a role tag from its name.
func NewRole(name string) Role {
	return Role(crypto.Keccak256Hash([]byte(name)))
}

func (r Role) Hex() string { return common.Hash(r).Hex() }

var (
	AdminRole      = NewRole("ADMIN_ROLE")
	ValidatorRole  = NewRole("VALIDATOR_ROLE")
	GovernanceRole = NewRole("GOVERNANCE_ROLE")
	ManagerRole    = NewRole("MANAGER_ROLE")
)

var names = map[Role]string{
	AdminRole:      "admin",
	ValidatorRole:  "validator",
	GovernanceRole: "governance",
	ManagerRole:    "manager",
}

// String returns the well known role name or the hex tag.
func (r Role) String() string {
	if name, ok := names[r]; ok {
		return name
	}
	return r.Hex()
}

// Authorizer answers role possession queries.
type Authorizer interface {
	Has(role Role, principal common.Address) bool
}

// Registry maps role tags to sets of principals. It keeps no history and
// performs no caller checks; the component owning the registry is responsible
// for authorizing grants and revocations.
//
// Registry is not safe for concurrent use, calls are serialized by the host.
type Registry struct {
	members map[Role]mapset.Set[common.Address]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[Role]mapset.Set[common.Address])}
}

// Grant adds principal to role. It reports whether membership changed.
func (r *Registry) Grant(role Role, principal common.Address) bool {
	set, ok := r.members[role]
	if !ok {
		set = mapset.NewThreadUnsafeSet[common.Address]()
		r.members[role] = set
	}
	return set.Add(principal)
}

// Revoke removes principal from role. It reports whether membership changed.
func (r *Registry) Revoke(role Role, principal common.Address) bool {
	set, ok := r.members[role]
	if !ok || !set.Contains(principal) {
		return false
	}
	set.Remove(principal)
	if set.Cardinality() == 0 {
		delete(r.members, role)
	}
	return true
}

// Has reports whether principal holds role.
func (r *Registry) Has(role Role, principal common.Address) bool {
	set, ok := r.members[role]
	return ok && set.Contains(principal)
}

// Count returns the number of principals holding role.
func (r *Registry) Count(role Role) int {
	if set, ok := r.members[role]; ok {
		return set.Cardinality()
	}
	return 0
}

// Members returns the holders of role in ascending address order.
func (r *Registry) Members(role Role) []common.Address {
	set, ok := r.members[role]
	if !ok {
		return nil
	}
	return SortAddresses(set.ToSlice())
}

// SortAddresses sorts addrs in place in ascending byte order and returns it.
func SortAddresses(addrs []common.Address) []common.Address {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

// Grants lists every (role, principal) pair, ordered by role then principal.
func (r *Registry) Grants() []Grant {
	tags := make([]Role, 0, len(r.members))
	for role := range r.members {
		tags = append(tags, role)
	}
	sort.Slice(tags, func(i, j int) bool {
		return bytes.Compare(tags[i][:], tags[j][:]) < 0
	})
	var out []Grant
	for _, role := range tags {
		for _, addr := range r.Members(role) {
			out = append(out, Grant{Role: role, Principal: addr})
		}
	}
	return out
}

// Grant is a single registry membership entry.
type Grant struct {
	Role      Role
	Principal common.Address
}
