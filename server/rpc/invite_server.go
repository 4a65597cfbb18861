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
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/invites"
	"github.com/tasklane/tasklane/server/members"
)

// inviteServer serves the invite routes.
type inviteServer struct {
	be *backend.Backend
}

func (s *inviteServer) createInvite(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	var fields types.CreateInviteFields
	if !bindJSON(c, &fields) {
		return
	}

	invite, err := invites.Create(c.Request.Context(), s.be, acting.WorkspaceID, fields.Email, fields.Role, acting)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

func (s *inviteServer) listInvites(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}
	if !acting.Role.CanManageMembers() {
		abortWithError(c, members.ErrInsufficientPrivileges)
		return
	}

	list, err := invites.List(c.Request.Context(), s.be, acting.WorkspaceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// getInvite returns an invite to whoever holds its token.
func (s *inviteServer) getInvite(c *gin.Context) {
	invite, err := invites.Get(c.Request.Context(), s.be, types.ID(c.Param("id")), c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if invite == nil {
		abortWithError(c, database.ErrInviteNotFound)
		return
	}

	c.JSON(http.StatusOK, invite)
}

func (s *inviteServer) revokeInvite(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}
	if !acting.Role.CanManageMembers() {
		abortWithError(c, members.ErrInsufficientPrivileges)
		return
	}

	if err := invites.Revoke(c.Request.Context(), s.be, acting.WorkspaceID, c.Param("token")); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *inviteServer) acceptInvite(c *gin.Context) {
	member, err := invites.Accept(
		c.Request.Context(),
		s.be,
		types.ID(c.Param("id")),
		c.Param("token"),
		identityOf(c),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}
