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

package prometheus_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

func TestMetrics(t *testing.T) {
	t.Run("server version test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		count, err := testutil.GatherAndCount(metrics.Registry(), "tasklane_server_version")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("counters test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		metrics.AddServerHandledCounter("POST", "/v1/workspaces", "201")
		metrics.AddServerHandledCounter("POST", "/v1/workspaces", "201")
		metrics.AddWorkspaceEvent("invite.accepted")
		metrics.AddNotifications("failed", 2)
		metrics.AddPurgedInvites(3)

		metrics.AddWatchConnections("workspaces")
		metrics.AddWatchConnections("workspaces")
		metrics.RemoveWatchConnections("workspaces")

		count, err := testutil.GatherAndCount(metrics.Registry(), "tasklane_http_server_handled_total")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = testutil.GatherAndCount(
			metrics.Registry(),
			"tasklane_workspace_events_total",
			"tasklane_notification_deliveries_total",
			"tasklane_housekeeping_purged_invites_total",
			"tasklane_watch_connections_total",
		)
		assert.NoError(t, err)
		assert.Equal(t, 4, count)
	})
}
