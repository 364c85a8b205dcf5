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

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/mccoysc/validatordao/genesis"
	"github.com/mccoysc/validatordao/store"
)

// APIs returns the services of a node. The dev namespace is only included
// when dev is set.
func APIs(sys *genesis.System, db *store.Store, dev bool) []rpc.API {
	apis := []rpc.API{{
		Namespace: "dao",
		Service:   NewDAOAPI(sys, db),
	}}
	if dev {
		apis = append(apis, rpc.API{
			Namespace: "dev",
			Service:   NewDevAPI(sys),
		})
	}
	return apis
}

// NewServer creates an RPC server with the node's services registered.
func NewServer(sys *genesis.System, db *store.Store, dev bool) (*rpc.Server, error) {
	srv := rpc.NewServer()
	for _, api := range APIs(sys, db, dev) {
		if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
			srv.Stop()
			return nil, fmt.Errorf("register %s API: %w", api.Namespace, err)
		}
	}
	return srv, nil
}

// HTTPOptions configures the HTTP handler of a node.
type HTTPOptions struct {
	CORSDomains []string // allowed origins, none disables CORS
	RPS         float64  // request rate limit, zero disables it
	Burst       int
}

// NewHandler routes JSON-RPC over HTTP at "/", over websocket at "/ws" and a
// liveness probe at "/health".
func NewHandler(srv *rpc.Server, sys *genesis.System, opts HTTPOptions) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler(sys)).Methods(http.MethodGet)
	router.Handle("/ws", srv.WebsocketHandler(opts.CORSDomains))
	router.PathPrefix("/").Handler(newCorsHandler(srv, opts.CORSDomains))
	if opts.RPS > 0 {
		router.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RPS), max(opts.Burst, 1))))
	}
	return router
}

// rateLimit rejects requests beyond the limiter's rate with 429.
func rateLimit(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

type health struct {
	Status     string `json:"status"`
	Sequence   uint64 `json:"sequence"`
	Validators uint64 `json:"validators"`
	Paused     bool   `json:"paused"`
}

func healthHandler(sys *genesis.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := health{Status: "ok", Sequence: sys.Runtime.Sequence()}
		sys.Runtime.View(func(uint64) {
			h.Validators = sys.Engine.ValidatorCount()
			h.Paused = sys.Vault.Paused()
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h)
	}
}
