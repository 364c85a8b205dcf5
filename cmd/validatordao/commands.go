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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"

	"github.com/mccoysc/validatordao/internal/config"
	"github.com/mccoysc/validatordao/store"
)

var dumpConfigCommand = &cli.Command{
	Name:   "dumpconfig",
	Usage:  "Show configuration values",
	Action: dumpConfig,
}

var journalCommand = &cli.Command{
	Name:      "journal",
	Usage:     "Print committed notifications from the database",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "from",
			Usage: "First sequence number to print",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of notifications (0 = all)",
		},
	},
	Action: printJournal,
}

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "Call a JSON-RPC method on a running node",
	ArgsUsage: "<method> [params...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "RPC endpoint of the node",
			Value: "http://127.0.0.1:8645",
		},
	},
	Action: query,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return config.Dump(ctx.App.Writer, cfg)
}

func printJournal(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Node.DBEngine, cfg.Node.DataDir, cfg.Node.Cache, cfg.Node.Handles)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	batch, err := db.Notifications(ctx.Uint64("from"), ctx.Int("limit"))
	if err != nil {
		return err
	}
	for _, n := range batch {
		fmt.Fprintln(ctx.App.Writer, n.String())
	}
	return nil
}

func query(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("usage: %s %s", ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	client, err := rpc.DialContext(ctx.Context, ctx.String("endpoint"))
	if err != nil {
		return err
	}
	defer client.Close()

	args := ctx.Args().Slice()
	var result json.RawMessage
	if err := client.CallContext(ctx.Context, &result, args[0], parseParams(args[1:])...); err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, result, "", "  "); err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, out.String())
	return nil
}

// parseParams passes arguments that are valid JSON through unchanged and
// quotes everything else, so addresses and hex quantities need no quoting.
func parseParams(args []string) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		if json.Valid([]byte(arg)) {
			params[i] = json.RawMessage(arg)
		} else {
			params[i] = arg
		}
	}
	return params
}
