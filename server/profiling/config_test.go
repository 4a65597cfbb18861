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

package profiling_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/server/profiling"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		assert.ErrorIs(t, (&profiling.Config{Port: -1}).Validate(), profiling.ErrInvalidProfilingPort)
		assert.ErrorIs(t, (&profiling.Config{Port: 0}).Validate(), profiling.ErrInvalidProfilingPort)
		assert.ErrorIs(t, (&profiling.Config{Port: 70000}).Validate(), profiling.ErrInvalidProfilingPort)
		assert.NoError(t, (&profiling.Config{Port: 8081}).Validate())
	})
}

func TestServer(t *testing.T) {
	t.Run("metrics endpoint test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		server := profiling.NewServer(&profiling.Config{Port: 8081}, metrics)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "tasklane_server_version")
	})

	t.Run("pprof is disabled by default test", func(t *testing.T) {
		server := profiling.NewServer(&profiling.Config{Port: 8081}, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
