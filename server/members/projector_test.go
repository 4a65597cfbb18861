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

package members_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/members"
	"github.com/tasklane/tasklane/server/users"
	"github.com/tasklane/tasklane/test/helper"
)

func countID(list []*types.User, id types.ID) int {
	count := 0
	for _, user := range list {
		if user.ID == id {
			count++
		}
	}
	return count
}

func TestProject(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	workspace := &types.Workspace{ID: "W1", OwnerID: "u1"}
	valid := &database.MemberInfo{ID: "u2", WorkspaceID: "W1", UserID: "u2", Email: "b@x.com", Role: types.RoleMember, Status: types.MemberActive}
	invalid := &database.MemberInfo{ID: "legacy", WorkspaceID: "W1", UserID: "  ", Email: "broken@x.com", Role: types.RoleViewer}

	t.Run("invalid member is skipped test", func(t *testing.T) {
		list := members.Project(ctx, be, workspace, []*database.MemberInfo{valid, invalid}, &types.Identity{ID: "u2", Email: "b@x.com"})
		assert.Len(t, list, 1)
		assert.Equal(t, types.ID("u2"), list[0].ID)
		assert.Equal(t, "b@x.com", list[0].DisplayName)
	})

	t.Run("current user present once test", func(t *testing.T) {
		list := members.Project(ctx, be, workspace, []*database.MemberInfo{valid, valid}, &types.Identity{ID: "u2", Email: "b@x.com"})
		assert.Equal(t, 1, countID(list, "u2"))
	})

	t.Run("owner without member record test", func(t *testing.T) {
		current := &types.Identity{ID: "u1", Email: "a@x.com", DisplayName: "Ann"}
		list := members.Project(ctx, be, workspace, []*database.MemberInfo{valid, invalid}, current)
		assert.Len(t, list, 2)
		assert.Equal(t, 1, countID(list, "u1"))
		assert.Equal(t, types.ID("u1"), list[0].ID)
		assert.Equal(t, string(types.RoleOwner), list[0].Role)
		assert.Equal(t, "Ann", list[0].DisplayName)
	})

	t.Run("id mismatch matched by email test", func(t *testing.T) {
		current := &types.Identity{ID: "new-u2", Email: "B@X.com"}
		list := members.Project(ctx, be, workspace, []*database.MemberInfo{valid}, current)
		assert.Len(t, list, 1)
		assert.Equal(t, types.ID("u2"), list[0].ID)
		assert.Equal(t, 0, countID(list, "new-u2"))
	})

	t.Run("current user without any record test", func(t *testing.T) {
		current := &types.Identity{ID: "u9", Email: "z@x.com"}
		list := members.Project(ctx, be, workspace, nil, current)
		assert.Len(t, list, 1)
		assert.Equal(t, types.ID("u9"), list[0].ID)
		assert.Equal(t, "z@x.com", list[0].DisplayName)
	})

	t.Run("profile enrichment test", func(t *testing.T) {
		_, err := users.EnsureProfile(ctx, be, &types.Identity{ID: "u3", Email: "c@x.com", DisplayName: "Cleo"})
		require.NoError(t, err)
		withProfile := &database.MemberInfo{ID: "u3", WorkspaceID: "W1", UserID: "u3", Email: "c@x.com", Role: types.RoleAdmin, Status: types.MemberActive}

		list := members.Project(ctx, be, workspace, []*database.MemberInfo{valid, withProfile}, nil)
		assert.Len(t, list, 2)
		assert.Equal(t, "b@x.com", list[0].DisplayName)
		assert.Equal(t, "Cleo", list[1].DisplayName)
		assert.Equal(t, string(types.RoleAdmin), list[1].Role)
	})
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	t.Run("enriched snapshot follows plain snapshot test", func(t *testing.T) {
		f := newFixture(t, be)
		owner := f.identity[types.RoleOwner]
		_, err := users.EnsureProfile(ctx, be, &types.Identity{
			ID:          f.identity[types.RoleAdmin].ID,
			Email:       f.identity[types.RoleAdmin].Email,
			DisplayName: "Admin Person",
		})
		require.NoError(t, err)

		var mu sync.Mutex
		var deliveries [][]*types.User
		unsubscribe, err := members.Watch(ctx, be, f.workspace.ID, owner, func(list []*types.User) {
			mu.Lock()
			defer mu.Unlock()
			deliveries = append(deliveries, list)
		})
		assert.NoError(t, err)
		defer unsubscribe()

		displayNameOf := func(list []*types.User, id types.ID) string {
			for _, user := range list {
				if user.ID == id {
					return user.DisplayName
				}
			}
			return ""
		}

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			if len(deliveries) == 0 {
				return false
			}
			last := deliveries[len(deliveries)-1]
			return displayNameOf(last, f.identity[types.RoleAdmin].ID) == "Admin Person"
		}, time.Second, 10*time.Millisecond)

		mu.Lock()
		first := deliveries[0]
		mu.Unlock()
		assert.Len(t, first, 5)
		assert.Equal(t, f.identity[types.RoleAdmin].Email, displayNameOf(first, f.identity[types.RoleAdmin].ID))

		// A new member is delivered by a later snapshot.
		late := helper.TestIdentity("late")
		storeMember(t, be, f.workspace.ID, late, types.RoleGuest)
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return countID(deliveries[len(deliveries)-1], late.ID) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("missing workspace test", func(t *testing.T) {
		_, err := members.Watch(ctx, be, "missing", nil, func([]*types.User) {})
		assert.ErrorIs(t, err, database.ErrWorkspaceNotFound)
	})
}
