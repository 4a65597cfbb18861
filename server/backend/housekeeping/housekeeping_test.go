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

package housekeeping_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/database/memory"
	"github.com/tasklane/tasklane/server/backend/housekeeping"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

func TestHousekeeping(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	t.Run("scheduled task runs test", func(t *testing.T) {
		h, err := housekeeping.New(&housekeeping.Config{Schedule: "@every 1s"}, metrics)
		require.NoError(t, err)

		var runs atomic.Int32
		require.NoError(t, h.RegisterTask("count", func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))

		require.NoError(t, h.Start())
		assert.Eventually(t, func() bool {
			return runs.Load() > 0
		}, 3*time.Second, 50*time.Millisecond)
		assert.NoError(t, h.Stop())
	})

	t.Run("invalid schedule test", func(t *testing.T) {
		_, err := housekeeping.New(&housekeeping.Config{Schedule: "sometimes"}, metrics)
		assert.Error(t, err)
	})
}

func TestPurgeStaleInvites(t *testing.T) {
	ctx := context.Background()
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	t.Run("purge consumed invites only test", func(t *testing.T) {
		db, err := memory.New()
		require.NoError(t, err)

		accepted := database.NewInviteInfo("W1", "tok-accepted", "a@x.com", types.RoleMember, "u1")
		pending := database.NewInviteInfo("W1", "tok-pending", "b@x.com", types.RoleMember, "u1")
		require.NoError(t, db.CreateInviteInfo(ctx, accepted))
		require.NoError(t, db.CreateInviteInfo(ctx, pending))
		require.NoError(t, db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			return txn.UpdateInviteInfo(ctx, "W1", accepted.ID, &database.InviteUpdate{
				Status:     types.InviteAccepted,
				AcceptedBy: "u2",
			})
		}))

		// a negative retention makes every invite old enough
		task := housekeeping.PurgeStaleInvites(db, metrics, -time.Minute, 0)
		require.NoError(t, task(ctx))

		_, err = db.FindInviteInfo(ctx, "W1", accepted.ID)
		assert.ErrorIs(t, err, database.ErrInviteNotFound)
		_, err = db.FindInviteInfo(ctx, "W1", pending.ID)
		assert.NoError(t, err)
	})
}
