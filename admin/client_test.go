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

package admin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasklane/tasklane/admin"
	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/rpc"
	"github.com/tasklane/tasklane/server/rpc/auth"
	"github.com/tasklane/tasklane/test/helper"
)

func TestClient(t *testing.T) {
	be := helper.TestBackend(t)
	manager := auth.NewTokenManager(helper.SecretKey, time.Hour)
	srv := rpc.NewServer(&rpc.Config{MaxRequestBytes: 1 << 20, ShutdownTimeout: "1s"}, be, manager)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dial := func(identity *types.Identity) *admin.Client {
		token, err := manager.Generate(identity)
		require.NoError(t, err)
		cli, err := admin.New(ts.URL, admin.WithToken(token), admin.WithLogger(zap.NewNop()))
		require.NoError(t, err)
		return cli
	}

	ctx := context.Background()
	owner := helper.TestIdentity("owner")
	invitee := helper.TestIdentity("invitee")
	ownerCli := dial(owner)
	inviteeCli := dial(invitee)

	t.Run("health test", func(t *testing.T) {
		cli, err := admin.New(ts.URL, admin.WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.NoError(t, cli.Health(ctx))
	})

	t.Run("workspace lifecycle test", func(t *testing.T) {
		workspace, err := ownerCli.CreateWorkspace(ctx, "Roadmap")
		require.NoError(t, err)

		list, err := ownerCli.ListWorkspaces(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, workspace.ID, list[0].ID)

		invite, err := ownerCli.CreateInvite(ctx, workspace.ID, invitee.Email, types.RoleAdmin)
		require.NoError(t, err)

		invites, err := ownerCli.ListInvites(ctx, workspace.ID)
		require.NoError(t, err)
		assert.Len(t, invites, 1)

		member, err := inviteeCli.AcceptInvite(ctx, workspace.ID, invite.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RoleAdmin, member.Role)

		_, err = inviteeCli.AcceptInvite(ctx, workspace.ID, invite.ID)
		var apiErr *admin.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusPreconditionFailed, apiErr.StatusCode)
		assert.Equal(t, "ErrInviteNotPending", apiErr.Code)

		users, err := inviteeCli.ListMembers(ctx, workspace.ID)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		member, err = ownerCli.UpdateMemberRole(ctx, workspace.ID, invitee.ID, types.RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, types.RoleViewer, member.Role)

		member, err = inviteeCli.LinkNotificationChannel(ctx, workspace.ID, invitee.ID, "-100777")
		require.NoError(t, err)
		assert.Equal(t, "-100777", member.NotificationChannelID)

		_, err = inviteeCli.CreateTask(ctx, workspace.ID, types.KindTask, types.Fields{"title": "read only"})
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

		task, err := ownerCli.CreateTask(ctx, workspace.ID, types.KindProject, types.Fields{
			"title": "Q3",
			"tags":  []string{},
		})
		require.NoError(t, err)
		assert.Equal(t, types.KindProject, task.Kind)
		assert.Contains(t, task.Fields, "tags")

		task, err = ownerCli.UpdateTask(ctx, workspace.ID, types.KindProject, task.ID, nil, []string{"tags"})
		require.NoError(t, err)
		assert.NotContains(t, task.Fields, "tags")

		assert.NoError(t, ownerCli.RemoveMember(ctx, workspace.ID, invitee.ID))
		_, err = inviteeCli.ListMembers(ctx, workspace.ID)
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "ErrNotMember", apiErr.Code)
	})

	t.Run("revoke invite test", func(t *testing.T) {
		workspace, err := ownerCli.CreateWorkspace(ctx, "Ops")
		require.NoError(t, err)

		invite, err := ownerCli.CreateInvite(ctx, workspace.ID, "late@x.com", types.RoleGuest)
		require.NoError(t, err)
		require.NoError(t, ownerCli.RevokeInvite(ctx, workspace.ID, invite.ID))

		invites, err := ownerCli.ListInvites(ctx, workspace.ID)
		require.NoError(t, err)
		assert.Empty(t, invites)
	})
}
