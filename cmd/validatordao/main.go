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

// validatordao runs a validator-governed treasury node.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mccoysc/validatordao/internal/config"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"DAO_CONFIG"},
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the database",
	}
	dbEngineFlag = &cli.StringFlag{
		Name:  "db.engine",
		Usage: "Database engine (memory, leveldb, pebble)",
	}
	httpAddrFlag = &cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP-RPC server listening interface",
	}
	httpPortFlag = &cli.IntFlag{
		Name:  "http.port",
		Usage: "HTTP-RPC server listening port",
	}
	httpCORSFlag = &cli.StringSliceFlag{
		Name:  "http.corsdomain",
		Usage: "Domains from which to accept cross origin requests (browser enforced)",
	}
	httpDevFlag = &cli.BoolFlag{
		Name:  "http.dev",
		Usage: "Expose the unauthenticated dev transaction API",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a rotated file instead of stderr",
	}
	logJSONFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs as JSON",
	}
	// The go-ethereum metrics package enables collection when it sees this
	// flag in os.Args.
	metricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Listening address of the metrics server",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "validatordao",
		Usage: "validator-governed treasury node",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			dbEngineFlag,
			httpAddrFlag,
			httpPortFlag,
			httpCORSFlag,
			httpDevFlag,
			verbosityFlag,
			logFileFlag,
			logJSONFlag,
			metricsFlag,
			metricsAddrFlag,
		},
		Action: runNode,
		Commands: []*cli.Command{
			dumpConfigCommand,
			journalCommand,
			queryCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the command line flags
// on top of it.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.Node.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(dbEngineFlag.Name) {
		cfg.Node.DBEngine = ctx.String(dbEngineFlag.Name)
	}
	if ctx.IsSet(httpAddrFlag.Name) {
		cfg.HTTP.Host = ctx.String(httpAddrFlag.Name)
	}
	if ctx.IsSet(httpPortFlag.Name) {
		cfg.HTTP.Port = ctx.Int(httpPortFlag.Name)
	}
	if ctx.IsSet(httpCORSFlag.Name) {
		cfg.HTTP.CORSDomains = ctx.StringSlice(httpCORSFlag.Name)
	}
	if ctx.IsSet(httpDevFlag.Name) {
		cfg.HTTP.Dev = ctx.Bool(httpDevFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFileFlag.Name) {
		cfg.Log.File = ctx.String(logFileFlag.Name)
	}
	if ctx.IsSet(logJSONFlag.Name) {
		cfg.Log.JSON = ctx.Bool(logJSONFlag.Name)
	}
	if ctx.IsSet(metricsFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(metricsFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.Metrics.Addr = ctx.String(metricsAddrFlag.Name)
	}
	return cfg, nil
}
