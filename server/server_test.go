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

package server_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/server"
)

func TestServer(t *testing.T) {
	t.Run("start and shutdown test", func(t *testing.T) {
		conf := server.NewConfig()
		conf.RPC.Port = 21101
		conf.Profiling.Port = 21102

		srv, err := server.New(conf)
		require.NoError(t, err)
		require.NoError(t, srv.Start())

		resp, err := http.Get(fmt.Sprintf("http://%s/healthz", srv.RPCAddr()))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NoError(t, resp.Body.Close())

		resp, err = http.Get(fmt.Sprintf("http://localhost:%d/metrics", conf.Profiling.Port))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NoError(t, resp.Body.Close())

		assert.NoError(t, srv.Shutdown(true))
		assert.NoError(t, srv.Shutdown(true))

		select {
		case <-srv.ShutdownCh():
		case <-time.After(time.Second):
			t.Fatal("shutdown channel is not closed")
		}
	})

	t.Run("invalid config test", func(t *testing.T) {
		conf := server.NewConfig()
		conf.RPC.FirebaseAuth = true
		_, err := server.New(conf)
		assert.Error(t, err)
	})
}
