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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mccoysc/validatordao/api"
	"github.com/mccoysc/validatordao/genesis"
	"github.com/mccoysc/validatordao/store"
)

const shutdownTimeout = 5 * time.Second

// runNode opens the database, bootstraps or restores the DAO and serves the
// RPC endpoint until interrupted.
func runNode(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	closeLog := setupLogging(cfg.Log)
	defer closeLog()

	if cfg.Metrics.Enabled {
		metrics.Enabled = true
		log.Info("Starting metrics server", "addr", fmt.Sprintf("http://%s/debug/metrics", cfg.Metrics.Addr))
		exp.Setup(cfg.Metrics.Addr)
	}

	db, err := store.Open(cfg.Node.DBEngine, cfg.Node.DataDir, cfg.Node.Cache, cfg.Node.Handles)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	bootstrap, err := cfg.BootstrapConfig()
	if err != nil {
		return err
	}
	sys, err := genesis.Bootstrap(bootstrap, nil, db)
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigctx)

	if cfg.HTTP.Enabled {
		srv, err := api.NewServer(sys, db, cfg.HTTP.Dev)
		if err != nil {
			return err
		}
		defer srv.Stop()
		if cfg.HTTP.Dev {
			log.Warn("Dev API enabled, calls are executed for any sender without authentication")
		}
		httpSrv := &http.Server{
			Addr: net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
			Handler: api.NewHandler(srv, sys, api.HTTPOptions{
				CORSDomains: cfg.HTTP.CORSDomains,
				RPS:         cfg.HTTP.RPS,
				Burst:       cfg.HTTP.Burst,
			}),
			ReadHeaderTimeout: shutdownTimeout,
		}
		g.Go(func() error {
			log.Info("HTTP server started", "endpoint", httpSrv.Addr, "cors", cfg.HTTP.CORSDomains, "dev", cfg.HTTP.Dev)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down", "seq", sys.Runtime.Sequence())
		return nil
	})
	return g.Wait()
}
