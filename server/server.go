/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server provides the Tasklane server which is the main entry point
// of the Tasklane system. The server is responsible for starting the HTTP API
// server and the profiling server.
package server

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database/firestore"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
	"github.com/tasklane/tasklane/server/rpc"
	"github.com/tasklane/tasklane/server/rpc/auth"
)

// Tasklane is a server of Tasklane. It serves workspaces, their members,
// invites and tasks over HTTP and keeps watchers up to date.
type Tasklane struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	rpcServer       *rpc.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Tasklane.
func New(conf *Config) (*Tasklane, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Firestore,
		conf.Housekeeping,
		conf.Kafka,
		conf.Notification,
		metrics,
	)
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier(conf)
	if err != nil {
		if shutdownErr := be.Shutdown(); shutdownErr != nil {
			logging.DefaultLogger().Warnf("shutdown backend: %v", shutdownErr)
		}
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Tasklane{
		conf:            conf,
		backend:         be,
		rpcServer:       rpc.NewServer(conf.RPC, be, verifier),
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// newVerifier returns the verifier of access tokens. Firebase ID tokens are
// accepted when enabled, otherwise tokens signed with the secret key.
func newVerifier(conf *Config) (auth.Verifier, error) {
	if !conf.RPC.FirebaseAuth {
		return auth.NewTokenManager(conf.Backend.SecretKey, conf.Backend.ParseTokenDuration()), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Firestore.ParseConnectionTimeout())
	defer cancel()

	app, err := firestore.NewApp(ctx, conf.Firestore)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewFirebaseVerifier(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("create firebase verifier: %w", err)
	}

	return verifier, nil
}

// Start starts the server by opening the rpc port.
func (r *Tasklane) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.backend.Start(context.Background()); err != nil {
		return err
	}

	if r.profilingServer != nil {
		if err := r.profilingServer.Start(); err != nil {
			return err
		}
	}

	return r.rpcServer.Start()
}

// Shutdown shuts down this Tasklane server.
func (r *Tasklane) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	r.rpcServer.Shutdown(graceful)
	if r.profilingServer != nil {
		r.profilingServer.Shutdown(graceful)
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *Tasklane) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RPCAddr returns the address of the RPC.
func (r *Tasklane) RPCAddr() string {
	return r.conf.RPCAddr()
}
