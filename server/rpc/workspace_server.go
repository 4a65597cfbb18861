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

package rpc

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/members"
	"github.com/tasklane/tasklane/server/workspaces"
)

// workspaceServer serves the workspace and member directory routes.
type workspaceServer struct {
	be   *backend.Backend
	done <-chan struct{}
}

func (s *workspaceServer) createWorkspace(c *gin.Context) {
	var fields types.CreateWorkspaceFields
	if !bindJSON(c, &fields) {
		return
	}

	workspace, err := workspaces.Create(c.Request.Context(), s.be, identityOf(c), &fields)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workspace)
}

func (s *workspaceServer) listWorkspaces(c *gin.Context) {
	list, err := workspaces.ListByUser(c.Request.Context(), s.be, identityOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *workspaceServer) watchWorkspaces(c *gin.Context) {
	values := newLatest[[]*types.Workspace]()
	unsubscribe, err := workspaces.Subscribe(c.Request.Context(), s.be, identityOf(c), values.offer)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer unsubscribe()

	s.be.Metrics.AddWatchConnections("workspaces")
	defer s.be.Metrics.RemoveWatchConnections("workspaces")

	stream(c, s.done, "workspaces", values)
}

func (s *workspaceServer) getWorkspace(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	workspace, err := workspaces.Get(c.Request.Context(), s.be, acting.WorkspaceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, workspace)
}

func (s *workspaceServer) listMembers(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	workspace, err := workspaces.Get(ctx, s.be, acting.WorkspaceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	infos, err := s.be.DB.ListMemberInfos(ctx, workspace.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, members.Project(ctx, s.be, workspace, infos, identityOf(c)))
}

func (s *workspaceServer) watchMembers(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	values := newLatest[[]*types.User]()
	unsubscribe, err := members.Watch(c.Request.Context(), s.be, acting.WorkspaceID, identityOf(c), values.offer)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer unsubscribe()

	s.be.Metrics.AddWatchConnections("members")
	defer s.be.Metrics.RemoveWatchConnections("members")

	stream(c, s.done, "members", values)
}

func (s *workspaceServer) removeMember(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	if err := members.Remove(
		c.Request.Context(),
		s.be,
		acting.WorkspaceID,
		types.ID(c.Param("userID")),
		acting,
	); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// updateMemberRequest changes the role or the notification channel of a
// member. Absent fields are left untouched.
type updateMemberRequest struct {
	Role                  *types.MemberRole `json:"role"`
	NotificationChannelID *string           `json:"notificationChannelId"`
}

func (s *workspaceServer) updateMember(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	var req updateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	userID := types.ID(c.Param("userID"))

	var member *types.Member
	var err error
	if req.Role != nil {
		if member, err = members.UpdateRole(ctx, s.be, acting.WorkspaceID, userID, *req.Role, acting); err != nil {
			abortWithError(c, err)
			return
		}
	}

	if req.NotificationChannelID != nil {
		if acting.UserID != userID && !acting.Role.CanManageMembers() {
			abortWithError(c, members.ErrInsufficientPrivileges)
			return
		}
		if member, err = members.LinkNotificationChannel(
			ctx,
			s.be,
			acting.WorkspaceID,
			userID,
			*req.NotificationChannelID,
		); err != nil {
			abortWithError(c, err)
			return
		}
	}

	if member == nil {
		abortWithError(c, types.ErrInvalidFields)
		return
	}
	c.JSON(http.StatusOK, member)
}

// actingMember resolves the membership the caller acts with in the
// workspace of the route.
func actingMember(c *gin.Context, be *backend.Backend) (*types.Member, bool) {
	member, err := members.FindActing(c.Request.Context(), be, types.ID(c.Param("id")), identityOf(c))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}

	return member, true
}
