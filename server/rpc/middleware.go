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

package rpc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
	"github.com/tasklane/tasklane/server/rpc/auth"
	"github.com/tasklane/tasklane/server/users"
)

const (
	// RequestIDHeader carries the id of a request. An incoming value is
	// reused, otherwise a new id is generated.
	RequestIDHeader = "X-Request-ID"

	// accessTokenParam carries the token of watch streams opened by clients
	// that cannot set headers.
	accessTokenParam = "access_token"
)

// withRequestLogging attaches a logger with the request id to the request
// context and logs and measures the request when it finishes.
func withRequestLogging(metrics *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = xid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		logger := logging.New("RPC", logging.NewField("rid", requestID))
		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), logger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}

		status := c.Writer.Status()
		logging.LogRequest(logger, c.Request.Method+" "+route, status, time.Since(start), err)
		metrics.AddServerHandledCounter(c.Request.Method, route, strconv.Itoa(status))
		metrics.ObserveServerHandledSeconds(route, time.Since(start).Seconds())
	}
}

// withAuthentication resolves the bearer token of the request to an identity
// and stores it in the request context.
func withAuthentication(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query(accessTokenParam)
		}
		if token == "" {
			abortWithError(c, auth.ErrUnauthenticated)
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(users.With(c.Request.Context(), identity))
		c.Next()
	}
}

// withRequestLimit limits the size of request bodies.
func withRequestLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// identityOf returns the identity stored by withAuthentication.
func identityOf(c *gin.Context) *types.Identity {
	return users.From(c.Request.Context())
}
