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

package workspaces_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/workspaces"
	"github.com/tasklane/tasklane/test/helper"
)

// recorder keeps the last list delivered by a subscription.
type recorder struct {
	mu    sync.Mutex
	calls int
	last  []*types.Workspace
}

func (r *recorder) onChange(list []*types.Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = list
}

func (r *recorder) ids() []types.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []types.ID
	for _, workspace := range r.last {
		ids = append(ids, workspace.ID)
	}
	return ids
}

// brokenMemberships is a database whose membership query fails as soon as
// it starts.
type brokenMemberships struct {
	database.Database
}

func (d brokenMemberships) WatchMembershipsByUser(
	_ context.Context,
	_ types.ID,
	_ types.MemberStatus,
	_ func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	onError(errors.New("permission denied"))
	return func() {}, nil
}

func addMember(
	t *testing.T,
	be *backend.Backend,
	workspaceID types.ID,
	identity *types.Identity,
	role types.MemberRole,
) {
	info, err := database.NewMemberInfo(workspaceID, identity.ID, identity.Email, role, "")
	require.NoError(t, err)
	require.NoError(t, be.DB.RunTransaction(context.Background(), func(ctx context.Context, txn database.Txn) error {
		return txn.CreateMemberInfo(ctx, info)
	}))
}

func TestWorkspaces(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	t.Run("Create test", func(t *testing.T) {
		owner := helper.TestIdentity("owner")

		workspace, err := workspaces.Create(ctx, be, owner, &types.CreateWorkspaceFields{
			Name:        " Design Team ",
			Description: "weekly sprints",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Design Team", workspace.Name)
		assert.Equal(t, owner.ID, workspace.OwnerID)
		assert.Equal(t, types.PlanFree, workspace.Plan)

		member, err := be.DB.FindMemberInfo(ctx, workspace.ID, owner.ID)
		assert.NoError(t, err)
		assert.Equal(t, types.RoleOwner, member.Role)
		assert.Equal(t, types.MemberActive, member.Status)
		assert.Equal(t, owner.Email, member.Email)

		profile, err := be.DB.FindUserInfoByID(ctx, owner.ID)
		assert.NoError(t, err)
		assert.Equal(t, owner.Email, profile.Email)
	})

	t.Run("Create with invalid name test", func(t *testing.T) {
		owner := helper.TestIdentity("owner")

		_, err := workspaces.Create(ctx, be, owner, &types.CreateWorkspaceFields{Name: "a<b>"})
		assert.ErrorIs(t, err, types.ErrInvalidFields)

		list, err := workspaces.ListByUser(ctx, be, owner)
		assert.NoError(t, err)
		assert.Len(t, list, 0)
	})

	t.Run("Get test", func(t *testing.T) {
		owner := helper.TestIdentity("owner")
		created, err := workspaces.Create(ctx, be, owner, &types.CreateWorkspaceFields{Name: "Ops"})
		assert.NoError(t, err)

		found, err := workspaces.Get(ctx, be, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.Name, found.Name)

		_, err = workspaces.Get(ctx, be, "missing")
		assert.ErrorIs(t, err, database.ErrWorkspaceNotFound)
	})

	t.Run("ListByUser test", func(t *testing.T) {
		owner := helper.TestIdentity("owner")
		other := helper.TestIdentity("other")

		owned, err := workspaces.Create(ctx, be, owner, &types.CreateWorkspaceFields{Name: "Owned"})
		assert.NoError(t, err)
		joined, err := workspaces.Create(ctx, be, other, &types.CreateWorkspaceFields{Name: "Joined"})
		assert.NoError(t, err)
		addMember(t, be, joined.ID, owner, types.RoleMember)

		list, err := workspaces.ListByUser(ctx, be, owner)
		assert.NoError(t, err)
		assert.Len(t, list, 2)
		assert.ElementsMatch(t, []types.ID{owned.ID, joined.ID}, []types.ID{list[0].ID, list[1].ID})
		assert.False(t, list[1].CreatedAt.Before(list[0].CreatedAt))
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	t.Run("identity without email test", func(t *testing.T) {
		rec := &recorder{}
		unsubscribe, err := workspaces.Subscribe(ctx, be, &types.Identity{ID: "no-email"}, rec.onChange)
		assert.NoError(t, err)

		assert.Equal(t, 1, rec.calls)
		assert.NotNil(t, rec.last)
		assert.Len(t, rec.last, 0)

		unsubscribe()
		unsubscribe()
	})

	t.Run("owned and member-of workspaces test", func(t *testing.T) {
		user := helper.TestIdentity("user")
		other := helper.TestIdentity("other")

		owned, err := workspaces.Create(ctx, be, user, &types.CreateWorkspaceFields{Name: "Mine"})
		assert.NoError(t, err)
		joined, err := workspaces.Create(ctx, be, other, &types.CreateWorkspaceFields{Name: "Theirs"})
		assert.NoError(t, err)
		addMember(t, be, joined.ID, user, types.RoleAdmin)

		rec := &recorder{}
		unsubscribe, err := workspaces.Subscribe(ctx, be, user, rec.onChange)
		assert.NoError(t, err)
		defer unsubscribe()

		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]types.ID{owned.ID, joined.ID}, rec.ids())
		}, time.Second, 10*time.Millisecond)

		// A workspace joined later is delivered by the membership query.
		later, err := workspaces.Create(ctx, be, other, &types.CreateWorkspaceFields{Name: "Later"})
		assert.NoError(t, err)
		addMember(t, be, later.ID, user, types.RoleViewer)

		assert.Eventually(t, func() bool {
			return len(rec.ids()) == 3
		}, time.Second, 10*time.Millisecond)
		assert.Contains(t, rec.ids(), later.ID)
	})

	t.Run("failing subscription keeps the other test", func(t *testing.T) {
		user := helper.TestIdentity("user")
		owned, err := workspaces.Create(ctx, be, user, &types.CreateWorkspaceFields{Name: "Mine"})
		assert.NoError(t, err)

		broken := *be
		broken.DB = brokenMemberships{Database: be.DB}

		rec := &recorder{}
		unsubscribe, err := workspaces.Subscribe(ctx, &broken, user, rec.onChange)
		assert.NoError(t, err)
		defer unsubscribe()

		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]types.ID{owned.ID}, rec.ids())
		}, time.Second, 10*time.Millisecond)

		// The owned query still delivers after the membership query failed.
		later, err := workspaces.Create(ctx, be, user, &types.CreateWorkspaceFields{Name: "Later"})
		assert.NoError(t, err)
		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]types.ID{owned.ID, later.ID}, rec.ids())
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("membership snapshot keeps owned workspaces test", func(t *testing.T) {
		user := helper.TestIdentity("user")
		owned, err := workspaces.Create(ctx, be, user, &types.CreateWorkspaceFields{Name: "Mine"})
		assert.NoError(t, err)

		rec := &recorder{}
		unsubscribe, err := workspaces.Subscribe(ctx, be, user, rec.onChange)
		assert.NoError(t, err)
		defer unsubscribe()

		assert.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]types.ID{owned.ID}, rec.ids())
		}, time.Second, 10*time.Millisecond)

		rec.mu.Lock()
		calls := rec.calls
		rec.mu.Unlock()

		// The owner membership is suspended, so the membership query no
		// longer contains the workspace. The owned query still does.
		suspended := types.MemberSuspended
		require.NoError(t, be.DB.UpdateMemberInfo(ctx, owned.ID, user.ID, &database.MemberUpdate{
			Status: &suspended,
		}))

		assert.Eventually(t, func() bool {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			return rec.calls > calls
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, []types.ID{owned.ID}, rec.ids())
	})

	t.Run("unsubscribe stops deliveries test", func(t *testing.T) {
		user := helper.TestIdentity("user")

		rec := &recorder{}
		unsubscribe, err := workspaces.Subscribe(ctx, be, user, rec.onChange)
		assert.NoError(t, err)

		assert.Eventually(t, func() bool {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			return rec.calls > 0
		}, time.Second, 10*time.Millisecond)
		unsubscribe()

		_, err = workspaces.Create(ctx, be, user, &types.CreateWorkspaceFields{Name: "Quiet"})
		assert.NoError(t, err)
		time.Sleep(50 * time.Millisecond)
		assert.Len(t, rec.ids(), 0)
	})
}
