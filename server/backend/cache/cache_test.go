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

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/cache"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/database/memory"
)

func TestLRUWithExpires(t *testing.T) {
	t.Run("invalid size test", func(t *testing.T) {
		_, err := cache.NewLRUWithExpires[string, int](0, time.Minute, "test")
		assert.ErrorIs(t, err, cache.ErrInvalidCacheSize)
	})

	t.Run("stats test", func(t *testing.T) {
		lru, err := cache.NewLRUWithExpires[string, int](2, time.Minute, "test")
		require.NoError(t, err)

		lru.Add("a", 1)
		v, ok := lru.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		_, ok = lru.Get("b")
		assert.False(t, ok)

		assert.Equal(t, int64(1), lru.Stats().Hits())
		assert.Equal(t, int64(1), lru.Stats().Misses())
		assert.Equal(t, 50.0, lru.Stats().HitRate())
		assert.Equal(t, "test", lru.Name())
	})

	t.Run("eviction test", func(t *testing.T) {
		lru, err := cache.NewLRUWithExpires[string, int](1, time.Minute, "test")
		require.NoError(t, err)

		lru.Add("a", 1)
		assert.True(t, lru.Add("b", 2))
		assert.Equal(t, 1, lru.Len())

		_, ok := lru.Get("a")
		assert.False(t, ok)
	})

	t.Run("expiry test", func(t *testing.T) {
		lru, err := cache.NewLRUWithExpires[string, int](1, 10*time.Millisecond, "test")
		require.NoError(t, err)

		lru.Add("a", 1)
		assert.Eventually(t, func() bool {
			_, ok := lru.Get("a")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("find user info test", func(t *testing.T) {
		db, err := memory.New()
		require.NoError(t, err)

		manager, err := cache.New(cache.Options{ProfileCacheSize: 10, ProfileCacheTTL: time.Minute})
		require.NoError(t, err)

		_, err = manager.FindUserInfo(ctx, db, "u1")
		assert.ErrorIs(t, err, database.ErrUserNotFound)

		require.NoError(t, db.UpsertUserInfo(ctx, database.NewUserInfo(&types.Identity{
			ID:          "u1",
			Email:       "a@x.com",
			DisplayName: "Ann",
		})))

		info, err := manager.FindUserInfo(ctx, db, "u1")
		assert.NoError(t, err)
		assert.Equal(t, "Ann", info.DisplayName)

		// served from the cache until invalidated
		require.NoError(t, db.UpsertUserInfo(ctx, &database.UserInfo{ID: "u1", DisplayName: "Anna"}))
		info, err = manager.FindUserInfo(ctx, db, "u1")
		assert.NoError(t, err)
		assert.Equal(t, "Ann", info.DisplayName)

		manager.InvalidateUserInfo("u1")
		info, err = manager.FindUserInfo(ctx, db, "u1")
		assert.NoError(t, err)
		assert.Equal(t, "Anna", info.DisplayName)
	})
}
