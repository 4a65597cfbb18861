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

package rpc_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/rpc"
	"github.com/tasklane/tasklane/server/rpc/auth"
	"github.com/tasklane/tasklane/test/helper"
)

// client calls the API as one identity.
type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newClient(t *testing.T, handler http.Handler, manager *auth.TokenManager, identity *types.Identity) *client {
	token, err := manager.Generate(identity)
	require.NoError(t, err)
	return &client{t: t, handler: handler, token: token}
}

func (c *client) do(method, path string, body any, out any) int {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func newTestServer(t *testing.T) (*rpc.Server, *auth.TokenManager) {
	be := helper.TestBackend(t)
	manager := auth.NewTokenManager(helper.SecretKey, time.Hour)
	srv := rpc.NewServer(&rpc.Config{
		Port:            0,
		MaxRequestBytes: 1 << 20,
		ShutdownTimeout: "1s",
	}, be, manager)
	t.Cleanup(func() {
		srv.Shutdown(false)
	})
	return srv, manager
}

func TestRPCServer(t *testing.T) {
	srv, manager := newTestServer(t)

	owner := &types.Identity{ID: "owner-1", Email: "a@x.com", DisplayName: "Ann"}
	invitee := &types.Identity{ID: "u2", Email: "b@x.com"}
	stranger := &types.Identity{ID: "u3", Email: "c@x.com"}

	ownerCli := newClient(t, srv.Handler(), manager, owner)
	inviteeCli := newClient(t, srv.Handler(), manager, invitee)
	strangerCli := newClient(t, srv.Handler(), manager, stranger)

	t.Run("health test", func(t *testing.T) {
		anonymous := &client{t: t, handler: srv.Handler()}
		assert.Equal(t, http.StatusOK, anonymous.do(http.MethodGet, "/healthz", nil, nil))
	})

	t.Run("unauthenticated test", func(t *testing.T) {
		anonymous := &client{t: t, handler: srv.Handler()}
		var body rpc.ErrorResponse
		assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/v1/workspaces", nil, &body))
		assert.Equal(t, "ErrUnauthenticated", body.Code)

		forged := &client{t: t, handler: srv.Handler(), token: "not-a-token"}
		assert.Equal(t, http.StatusUnauthorized, forged.do(http.MethodGet, "/v1/workspaces", nil, nil))
	})

	t.Run("unknown route test", func(t *testing.T) {
		var body rpc.ErrorResponse
		assert.Equal(t, http.StatusNotFound, ownerCli.do(http.MethodGet, "/v2/nothing", nil, &body))
		assert.Equal(t, "ErrRouteNotFound", body.Code)
	})

	var workspace types.Workspace
	t.Run("create workspace test", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, ownerCli.do(http.MethodPost, "/v1/workspaces", map[string]string{
			"name": "Design Team",
		}, &workspace))
		assert.Equal(t, owner.ID, workspace.OwnerID)

		var body rpc.ErrorResponse
		assert.Equal(t, http.StatusBadRequest, ownerCli.do(http.MethodPost, "/v1/workspaces", map[string]string{
			"name": "<b>",
		}, &body))
		assert.Equal(t, "ErrInvalidFields", body.Code)

		var list []*types.Workspace
		assert.Equal(t, http.StatusOK, ownerCli.do(http.MethodGet, "/v1/workspaces", nil, &list))
		assert.Len(t, list, 1)
	})

	base := "/v1/workspaces/" + workspace.ID.String()

	t.Run("non member test", func(t *testing.T) {
		var body rpc.ErrorResponse
		assert.Equal(t, http.StatusForbidden, strangerCli.do(http.MethodGet, base+"/members", nil, &body))
		assert.Equal(t, "ErrNotMember", body.Code)
		assert.Equal(t, "not a member of this workspace", body.Message)
	})

	var invite types.Invite
	t.Run("invite and accept test", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, ownerCli.do(http.MethodPost, base+"/invites", map[string]string{
			"email": "B@x.com",
			"role":  "MEMBER",
		}, &invite))
		assert.Equal(t, "b@x.com", invite.Email)

		var pending []*types.Invite
		assert.Equal(t, http.StatusOK, ownerCli.do(http.MethodGet, base+"/invites", nil, &pending))
		assert.Len(t, pending, 1)

		var body rpc.ErrorResponse
		path := base + "/invites/" + invite.ID + "/accept"
		assert.Equal(t, http.StatusForbidden, strangerCli.do(http.MethodPost, path, nil, &body))
		assert.Equal(t, "ErrInviteRecipientMismatch", body.Code)

		var member types.Member
		assert.Equal(t, http.StatusOK, inviteeCli.do(http.MethodPost, path, nil, &member))
		assert.Equal(t, types.RoleMember, member.Role)
		assert.Equal(t, invitee.ID, member.UserID)

		assert.Equal(t, http.StatusPreconditionFailed, inviteeCli.do(http.MethodPost, path, nil, &body))
		assert.Equal(t, "ErrInviteNotPending", body.Code)
		assert.Equal(t, "invite has already been used or revoked", body.Message)

		var directory []*types.User
		assert.Equal(t, http.StatusOK, inviteeCli.do(http.MethodGet, base+"/members", nil, &directory))
		assert.Len(t, directory, 2)
	})

	t.Run("get and revoke invite test", func(t *testing.T) {
		var created types.Invite
		assert.Equal(t, http.StatusCreated, ownerCli.do(http.MethodPost, base+"/invites", map[string]string{
			"email": "d@x.com",
			"role":  "VIEWER",
		}, &created))

		var found types.Invite
		assert.Equal(t, http.StatusOK, strangerCli.do(http.MethodGet, base+"/invites/"+created.ID, nil, &found))
		assert.Equal(t, types.InvitePending, found.Status)

		assert.Equal(t, http.StatusForbidden, inviteeCli.do(http.MethodDelete, base+"/invites/"+created.ID, nil, nil))
		assert.Equal(t, http.StatusNoContent, ownerCli.do(http.MethodDelete, base+"/invites/"+created.ID, nil, nil))
		assert.Equal(t, http.StatusNoContent, ownerCli.do(http.MethodDelete, base+"/invites/"+created.ID, nil, nil))

		assert.Equal(t, http.StatusNotFound, ownerCli.do(http.MethodGet, base+"/invites/missing", nil, nil))
	})

	t.Run("tasks test", func(t *testing.T) {
		var task types.Task
		assert.Equal(t, http.StatusCreated, inviteeCli.do(http.MethodPost, base+"/tasks", map[string]any{
			"fields": map[string]any{
				"title":       "Ship it",
				"assigneeIds": []string{"u2"},
				"notes":       nil,
			},
		}, &task))
		assert.Equal(t, types.KindTask, task.Kind)
		assert.Equal(t, "u2", task.Fields["assigneeId"])
		assert.NotContains(t, task.Fields, "notes")

		var updated types.Task
		assert.Equal(t, http.StatusOK, inviteeCli.do(http.MethodPatch, base+"/tasks/"+task.ID.String(), map[string]any{
			"fields": map[string]any{"assigneeIds": []string{}},
			"delete": []string{"title"},
		}, &updated))
		assert.NotContains(t, updated.Fields, "title")
		assert.NotContains(t, updated.Fields, "assigneeId")
		assert.Equal(t, []any{}, updated.Fields["assigneeIds"])

		var found types.Task
		assert.Equal(t, http.StatusOK, ownerCli.do(http.MethodGet, base+"/tasks/"+task.ID.String(), nil, &found))
		assert.Equal(t, task.ID, found.ID)
	})

	t.Run("update and remove member test", func(t *testing.T) {
		path := base + "/members/" + invitee.ID.String()

		var body rpc.ErrorResponse
		assert.Equal(t, http.StatusForbidden, inviteeCli.do(http.MethodPatch, path, map[string]string{
			"role": "ADMIN",
		}, &body))
		assert.Equal(t, "ErrInsufficientPrivileges", body.Code)

		var member types.Member
		assert.Equal(t, http.StatusOK, inviteeCli.do(http.MethodPatch, path, map[string]string{
			"notificationChannelId": "-1001234567",
		}, &member))
		assert.Equal(t, "-1001234567", member.NotificationChannelID)

		assert.Equal(t, http.StatusOK, ownerCli.do(http.MethodPatch, path, map[string]string{
			"role": "VIEWER",
		}, &member))
		assert.Equal(t, types.RoleViewer, member.Role)
		assert.Equal(t, "-1001234567", member.NotificationChannelID)

		ownerPath := base + "/members/" + owner.ID.String()
		assert.Equal(t, http.StatusPreconditionFailed, ownerCli.do(http.MethodDelete, ownerPath, nil, &body))
		assert.Equal(t, "ErrCannotRemoveOwner", body.Code)

		assert.Equal(t, http.StatusNoContent, ownerCli.do(http.MethodDelete, path, nil, nil))
		assert.Equal(t, http.StatusForbidden, inviteeCli.do(http.MethodGet, base+"/members", nil, nil))
	})
}

func TestWatchStreams(t *testing.T) {
	srv, manager := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	owner := &types.Identity{ID: "watcher", Email: "w@x.com"}
	ownerCli := newClient(t, srv.Handler(), manager, owner)

	var workspace types.Workspace
	require.Equal(t, http.StatusCreated, ownerCli.do(http.MethodPost, "/v1/workspaces", map[string]string{
		"name": "Streams",
	}, &workspace))

	// firstEvent returns the data of the first event of the stream.
	firstEvent := func(t *testing.T, path string) string {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+path+"?access_token="+ownerCli.token, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if data, ok := strings.CutPrefix(scanner.Text(), "data:"); ok {
				return data
			}
		}
		return ""
	}

	t.Run("watch workspaces test", func(t *testing.T) {
		data := firstEvent(t, "/v1/workspaces/watch")
		assert.Contains(t, data, workspace.ID.String())
	})

	t.Run("watch members test", func(t *testing.T) {
		data := firstEvent(t, "/v1/workspaces/"+workspace.ID.String()+"/members/watch")
		assert.Contains(t, data, owner.ID.String())
	})
}
