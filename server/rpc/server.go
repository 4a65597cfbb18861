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

// Package rpc provides the HTTP API of Tasklane.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/rpc/auth"
)

// Server is a normal server that processes the logic requested by the client.
type Server struct {
	conf       *Config
	router     *gin.Engine
	httpServer *http.Server

	// done is closed on shutdown to end the watch streams.
	done      chan struct{}
	closeOnce sync.Once
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend, verifier auth.Verifier) *Server {
	gin.SetMode(gin.ReleaseMode)

	done := make(chan struct{})
	router := gin.New()
	router.Use(
		gin.Recovery(),
		withRequestLogging(be.Metrics),
		withRequestLimit(conf.MaxRequestBytes),
	)
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, ErrRouteNotFound)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "SERVING"})
	})

	workspaceSrv := &workspaceServer{be: be, done: done}
	inviteSrv := &inviteServer{be: be}
	taskSrv := &taskServer{be: be}

	v1 := router.Group("/v1", withAuthentication(verifier))
	v1.POST("/workspaces", workspaceSrv.createWorkspace)
	v1.GET("/workspaces", workspaceSrv.listWorkspaces)
	v1.GET("/workspaces/watch", workspaceSrv.watchWorkspaces)
	v1.GET("/workspaces/:id", workspaceSrv.getWorkspace)

	v1.GET("/workspaces/:id/members", workspaceSrv.listMembers)
	v1.GET("/workspaces/:id/members/watch", workspaceSrv.watchMembers)
	v1.DELETE("/workspaces/:id/members/:userID", workspaceSrv.removeMember)
	v1.PATCH("/workspaces/:id/members/:userID", workspaceSrv.updateMember)

	v1.POST("/workspaces/:id/invites", inviteSrv.createInvite)
	v1.GET("/workspaces/:id/invites", inviteSrv.listInvites)
	v1.GET("/workspaces/:id/invites/:token", inviteSrv.getInvite)
	v1.DELETE("/workspaces/:id/invites/:token", inviteSrv.revokeInvite)
	v1.POST("/workspaces/:id/invites/:token/accept", inviteSrv.acceptInvite)

	v1.POST("/workspaces/:id/tasks", taskSrv.createTask)
	v1.GET("/workspaces/:id/tasks/:taskID", taskSrv.getTask)
	v1.PATCH("/workspaces/:id/tasks/:taskID", taskSrv.updateTask)

	return &Server{
		conf:   conf,
		router: router,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.Port),
			Handler: router,
		},
		done: done,
	}
}

// Handler returns the HTTP handler of this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts this server by opening the rpc port.
func (s *Server) Start() error {
	return s.listenAndServe()
}

// Shutdown shuts down this server. A graceful shutdown waits for in-flight
// requests up to the configured timeout.
func (s *Server) Shutdown(graceful bool) {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	if !graceful {
		if err := s.httpServer.Close(); err != nil {
			logging.DefaultLogger().Error(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.conf.ParseShutdownTimeout())
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.DefaultLogger().Error(err)
	}
}

func (s *Server) listenAndServe() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		logging.DefaultLogger().Error(err)
		return err
	}

	go func() {
		logging.DefaultLogger().Infof("serving RPC on %d", s.conf.Port)

		var serveErr error
		if s.conf.CertFile != "" && s.conf.KeyFile != "" {
			serveErr = s.httpServer.ServeTLS(lis, s.conf.CertFile, s.conf.KeyFile)
		} else {
			serveErr = s.httpServer.Serve(lis)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logging.DefaultLogger().Error(serveErr)
		}
	}()

	return nil
}
