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

package roles

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestRegistryGrantIdempotent(t *testing.T) {
	r := NewRegistry()
	addr := common.HexToAddress("0x1")

	if !r.Grant(ValidatorRole, addr) {
		t.Fatal("first grant should change membership")
	}
	if r.Grant(ValidatorRole, addr) {
		t.Fatal("second grant should be a no-op")
	}
	if got := r.Count(ValidatorRole); got != 1 {
		t.Fatalf("count mismatch: have %d, want 1", got)
	}
	if !r.Has(ValidatorRole, addr) {
		t.Fatal("principal should hold the role")
	}
	if r.Has(AdminRole, addr) {
		t.Fatal("roles must be independent")
	}
}

func TestRegistryRevoke(t *testing.T) {
	r := NewRegistry()
	addr := common.HexToAddress("0x1")

	if r.Revoke(ManagerRole, addr) {
		t.Fatal("revoking an absent member should report no change")
	}
	r.Grant(ManagerRole, addr)
	if !r.Revoke(ManagerRole, addr) {
		t.Fatal("revoke should report a change")
	}
	if r.Has(ManagerRole, addr) {
		t.Fatal("membership should be gone after revoke")
	}
	if r.Count(ManagerRole) != 0 {
		t.Fatal("count should drop to zero")
	}
}

func TestRegistryMembersSorted(t *testing.T) {
	r := NewRegistry()
	for _, hex := range []string{"0x3", "0x1", "0x2"} {
		r.Grant(ValidatorRole, common.HexToAddress(hex))
	}
	members := r.Members(ValidatorRole)
	want := []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2"), common.HexToAddress("0x3")}
	if len(members) != len(want) {
		t.Fatalf("member count mismatch: have %d, want %d", len(members), len(want))
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("member %d: have %x, want %x", i, members[i], want[i])
		}
	}
	if grants := r.Grants(); len(grants) != 3 {
		t.Errorf("grant count mismatch: have %d, want 3", len(grants))
	}
}

func TestRoleString(t *testing.T) {
	if AdminRole.String() != "admin" {
		t.Errorf("unexpected name %q", AdminRole.String())
	}
	custom := NewRole("AUDITOR_ROLE")
	if custom.String() != custom.Hex() {
		t.Errorf("unknown roles should render as hex")
	}
}
