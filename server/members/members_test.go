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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/pkg/errors"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/members"
	"github.com/tasklane/tasklane/server/workspaces"
	"github.com/tasklane/tasklane/test/helper"
)

// fixture is a workspace with one member per role.
type fixture struct {
	workspace *types.Workspace
	byRole    map[types.MemberRole]*types.Member
	identity  map[types.MemberRole]*types.Identity
}

func newFixture(t *testing.T, be *backend.Backend) *fixture {
	ctx := context.Background()
	owner := helper.TestIdentity("owner")

	workspace, err := workspaces.Create(ctx, be, owner, &types.CreateWorkspaceFields{Name: "Directory"})
	require.NoError(t, err)

	f := &fixture{
		workspace: workspace,
		byRole:    make(map[types.MemberRole]*types.Member),
		identity:  map[types.MemberRole]*types.Identity{types.RoleOwner: owner},
	}
	for _, role := range []types.MemberRole{types.RoleAdmin, types.RoleMember, types.RoleViewer, types.RoleGuest} {
		identity := helper.TestIdentity(string(role))
		f.identity[role] = identity
		storeMember(t, be, workspace.ID, identity, role)
	}

	infos, err := be.DB.ListMemberInfos(ctx, workspace.ID)
	require.NoError(t, err)
	for _, info := range infos {
		f.byRole[info.Role] = info.ToMember()
	}
	return f
}

func storeMember(
	t *testing.T,
	be *backend.Backend,
	workspaceID types.ID,
	identity *types.Identity,
	role types.MemberRole,
) *database.MemberInfo {
	info, err := database.NewMemberInfo(workspaceID, identity.ID, identity.Email, role, "")
	require.NoError(t, err)
	require.NoError(t, be.DB.RunTransaction(context.Background(), func(ctx context.Context, txn database.Txn) error {
		return txn.CreateMemberInfo(ctx, info)
	}))
	return info
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	t.Run("List test", func(t *testing.T) {
		f := newFixture(t, be)

		list, err := members.List(ctx, be, f.workspace.ID)
		assert.NoError(t, err)
		assert.Len(t, list, 5)
	})

	t.Run("Remove owner test", func(t *testing.T) {
		f := newFixture(t, be)
		owner := f.byRole[types.RoleOwner]

		for _, acting := range f.byRole {
			err := members.Remove(ctx, be, f.workspace.ID, owner.UserID, acting)
			assert.ErrorIs(t, err, members.ErrCannotRemoveOwner)
		}
		assert.ErrorIs(t, members.Remove(ctx, be, f.workspace.ID, owner.UserID, nil), members.ErrCannotRemoveOwner)

		_, err := be.DB.FindMemberInfo(ctx, f.workspace.ID, owner.UserID)
		assert.NoError(t, err)
	})

	t.Run("Remove with insufficient privileges test", func(t *testing.T) {
		f := newFixture(t, be)
		target := f.byRole[types.RoleGuest]

		for _, role := range []types.MemberRole{types.RoleMember, types.RoleViewer, types.RoleGuest} {
			err := members.Remove(ctx, be, f.workspace.ID, target.UserID, f.byRole[role])
			assert.ErrorIs(t, err, members.ErrInsufficientPrivileges)
			assert.Equal(t, "insufficient privileges", errors.ErrorInfoOf(err).Message)
		}
	})

	t.Run("Remove by admin of another workspace test", func(t *testing.T) {
		f := newFixture(t, be)
		other := newFixture(t, be)
		target := f.byRole[types.RoleMember]

		err := members.Remove(ctx, be, f.workspace.ID, target.UserID, other.byRole[types.RoleOwner])
		assert.ErrorIs(t, err, members.ErrInsufficientPrivileges)

		suspended := *f.byRole[types.RoleAdmin]
		suspended.Status = types.MemberSuspended
		err = members.Remove(ctx, be, f.workspace.ID, target.UserID, &suspended)
		assert.ErrorIs(t, err, members.ErrInsufficientPrivileges)

		_, err = members.UpdateRole(ctx, be, f.workspace.ID, target.UserID, types.RoleViewer, other.byRole[types.RoleAdmin])
		assert.ErrorIs(t, err, members.ErrInsufficientPrivileges)

		_, err = be.DB.FindMemberInfo(ctx, f.workspace.ID, target.UserID)
		assert.NoError(t, err)
	})

	t.Run("Remove test", func(t *testing.T) {
		f := newFixture(t, be)

		assert.NoError(t, members.Remove(ctx, be, f.workspace.ID, f.byRole[types.RoleMember].UserID, f.byRole[types.RoleAdmin]))
		assert.NoError(t, members.Remove(ctx, be, f.workspace.ID, f.byRole[types.RoleAdmin].UserID, f.byRole[types.RoleOwner]))

		list, err := members.List(ctx, be, f.workspace.ID)
		assert.NoError(t, err)
		assert.Len(t, list, 3)

		err = members.Remove(ctx, be, f.workspace.ID, "missing", f.byRole[types.RoleOwner])
		assert.ErrorIs(t, err, database.ErrMemberNotFound)
	})

	t.Run("UpdateRole test", func(t *testing.T) {
		f := newFixture(t, be)
		target := f.byRole[types.RoleViewer]

		updated, err := members.UpdateRole(ctx, be, f.workspace.ID, target.UserID, types.RoleAdmin, f.byRole[types.RoleAdmin])
		assert.NoError(t, err)
		assert.Equal(t, types.RoleAdmin, updated.Role)

		_, err = members.UpdateRole(ctx, be, f.workspace.ID, target.UserID, types.RoleOwner, f.byRole[types.RoleOwner])
		assert.ErrorIs(t, err, members.ErrCannotGrantOwner)

		_, err = members.UpdateRole(ctx, be, f.workspace.ID, f.byRole[types.RoleOwner].UserID, types.RoleAdmin, f.byRole[types.RoleOwner])
		assert.ErrorIs(t, err, members.ErrCannotChangeOwnerRole)

		_, err = members.UpdateRole(ctx, be, f.workspace.ID, target.UserID, types.RoleGuest, f.byRole[types.RoleMember])
		assert.ErrorIs(t, err, members.ErrInsufficientPrivileges)

		_, err = members.UpdateRole(ctx, be, f.workspace.ID, target.UserID, "CAPTAIN", f.byRole[types.RoleOwner])
		assert.ErrorIs(t, err, types.ErrInvalidRole)
	})

	t.Run("LinkNotificationChannel test", func(t *testing.T) {
		f := newFixture(t, be)
		target := f.byRole[types.RoleMember]

		linked, err := members.LinkNotificationChannel(ctx, be, f.workspace.ID, target.UserID, "-1001234567")
		assert.NoError(t, err)
		assert.Equal(t, "-1001234567", linked.NotificationChannelID)
		assert.Equal(t, target.Role, linked.Role)
		assert.Equal(t, target.Email, linked.Email)
		assert.Equal(t, target.Status, linked.Status)

		_, err = members.LinkNotificationChannel(ctx, be, f.workspace.ID, target.UserID, "@someone")
		assert.ErrorIs(t, err, types.ErrInvalidFields)

		_, err = members.LinkNotificationChannel(ctx, be, f.workspace.ID, "missing", "42")
		assert.ErrorIs(t, err, database.ErrMemberNotFound)
	})

	t.Run("FindActing test", func(t *testing.T) {
		f := newFixture(t, be)

		acting, err := members.FindActing(ctx, be, f.workspace.ID, f.identity[types.RoleViewer])
		assert.NoError(t, err)
		assert.Equal(t, types.RoleViewer, acting.Role)

		_, err = members.FindActing(ctx, be, f.workspace.ID, helper.TestIdentity("stranger"))
		assert.ErrorIs(t, err, members.ErrNotMember)

		// A member record stored under a previous id is found by email.
		renamed := *f.identity[types.RoleAdmin]
		renamed.ID = "renamed-admin"
		acting, err = members.FindActing(ctx, be, f.workspace.ID, &renamed)
		assert.NoError(t, err)
		assert.Equal(t, f.identity[types.RoleAdmin].ID, acting.UserID)
		assert.Equal(t, types.RoleAdmin, acting.Role)
	})

	t.Run("FindActing legacy owner test", func(t *testing.T) {
		owner := helper.TestIdentity("legacy-owner")
		info := database.NewWorkspaceInfo("Legacy", "", owner.ID)
		require.NoError(t, be.DB.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			return txn.CreateWorkspaceInfo(ctx, info)
		}))

		acting, err := members.FindActing(ctx, be, info.ID, owner)
		assert.NoError(t, err)
		assert.Equal(t, types.RoleOwner, acting.Role)
		assert.True(t, acting.IsActive())
	})
}
