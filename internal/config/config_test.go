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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/mccoysc/validatordao/governance"
	"github.com/mccoysc/validatordao/treasury"
)

const sample = `
[Node]
DBEngine = "leveldb"
DataDir = "/var/lib/dao"

[HTTP]
Port = 9000
CORSDomains = ["https://dao.example"]

[Genesis]
Deployer = "0x00000000000000000000000000000000000000d0"
Admin = "0x00000000000000000000000000000000000000a0"
Validators = [
  "0x0000000000000000000000000000000000000101",
  "0x0000000000000000000000000000000000000102",
]

[[Genesis.Funds]]
Address = "0x00000000000000000000000000000000000000b0"
Amount = "1000000000000000000000"

[Governance]
MinimumQuorum = 60
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "leveldb", cfg.Node.DBEngine)
	require.Equal(t, 9000, cfg.HTTP.Port)
	require.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	require.Equal(t, []string{"https://dao.example"}, cfg.HTTP.CORSDomains)
	require.Equal(t, common.HexToAddress("0xa0"), cfg.Genesis.Admin)
	require.Len(t, cfg.Genesis.Validators, 2)

	// Unset keys keep their defaults.
	require.Equal(t, uint64(60), cfg.Governance.MinimumQuorum)
	require.Equal(t, governance.DefaultParams().MinimumApproval, cfg.Governance.MinimumApproval)
	require.Equal(t, treasury.DefaultEmergencyDelay, cfg.Treasury.EmergencyDelay)

	amount, err := cfg.Genesis.Funds[0].Value()
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000000", amount.Dec())
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeConfig(t, "[Node]\nDataDirectory = \"x\"\n"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DAO_HTTP_PORT", "7000")
	t.Setenv("DAO_MINIMUM_APPROVAL", "75")
	t.Setenv("DAO_VALIDATORS", "0x0000000000000000000000000000000000000201, 0x0000000000000000000000000000000000000202")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.HTTP.Port)
	require.Equal(t, uint64(75), cfg.Governance.MinimumApproval)
	require.Equal(t, []common.Address{common.HexToAddress("0x201"), common.HexToAddress("0x202")}, cfg.Genesis.Validators)

	t.Setenv("DAO_VOTING_PERIOD", "soon")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, sample))
		require.NoError(t, err)
		return cfg
	}
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"engine", func(c *Config) { c.Node.DBEngine = "rocksdb" }, nil},
		{"voting period", func(c *Config) { c.Governance.VotingPeriod = 10 }, governance.ErrInvalidVotingPeriod},
		{"quorum", func(c *Config) { c.Governance.MinimumQuorum = 0 }, governance.ErrInvalidQuorum},
		{"approval", func(c *Config) { c.Governance.MinimumApproval = 50 }, governance.ErrInvalidApproval},
		{"emergency delay", func(c *Config) { c.Treasury.EmergencyDelay = 60 }, treasury.ErrInvalidDelay},
		{"no validators", func(c *Config) { c.Genesis.Validators = nil }, nil},
		{"no admin", func(c *Config) { c.Genesis.Admin = common.Address{} }, nil},
		{"bad funds", func(c *Config) { c.Genesis.Funds[0].Amount = "-1" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))

	again, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	require.Equal(t, cfg.Node, again.Node)
	require.Equal(t, cfg.Governance, again.Governance)
	require.Equal(t, cfg.Genesis.Validators, again.Genesis.Validators)
	require.Equal(t, cfg.Genesis.Funds, again.Genesis.Funds)
	require.Equal(t, cfg.HTTP.CORSDomains, again.HTTP.CORSDomains)
}

func TestBootstrapConfig(t *testing.T) {
	cfg := Default()
	cfg.Genesis = GenesisConfig{
		Deployer:   common.HexToAddress("0x01"),
		Admin:      common.HexToAddress("0x02"),
		Validators: []common.Address{common.HexToAddress("0x03")},
		Funds:      []Allocation{{Address: common.HexToAddress("0x04"), Amount: "1000000000000000000000"}},
	}
	cfg.Governance.MinimumQuorum = 60

	bc, err := cfg.BootstrapConfig()
	require.NoError(t, err)
	require.Equal(t, cfg.Genesis.Deployer, bc.Deployer)
	require.Len(t, bc.Funds, 1)
	require.Equal(t, "1000000000000000000000", bc.Funds[0].Amount.Dec())
	require.Equal(t, uint64(60), bc.Governance.MinimumQuorum)
	require.Equal(t, treasury.DefaultEmergencyDelay, bc.Treasury.EmergencyDelay)

	cfg.Genesis.Funds[0].Amount = "ten"
	_, err = cfg.BootstrapConfig()
	require.Error(t, err)
}
