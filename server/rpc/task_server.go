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
	"github.com/tasklane/tasklane/server/tasks"
)

// taskServer serves the task and project routes.
type taskServer struct {
	be *backend.Backend
}

// createTaskRequest creates a task or a project. Kind defaults to task.
type createTaskRequest struct {
	Kind   types.TaskKind `json:"kind"`
	Fields types.Fields   `json:"fields"`
}

// updateTaskRequest merges fields into a task. Null values are ignored and
// the keys listed in Delete are removed.
type updateTaskRequest struct {
	Kind   types.TaskKind `json:"kind"`
	Fields types.Fields   `json:"fields"`
	Delete []string       `json:"delete"`
}

func (s *taskServer) createTask(c *gin.Context) {
	acting, ok := editingMember(c, s.be)
	if !ok {
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := tasks.Create(c.Request.Context(), s.be, acting.WorkspaceID, kindOrDefault(req.Kind), req.Fields)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (s *taskServer) getTask(c *gin.Context) {
	acting, ok := actingMember(c, s.be)
	if !ok {
		return
	}

	task, err := tasks.Get(
		c.Request.Context(),
		s.be,
		acting.WorkspaceID,
		kindOrDefault(types.TaskKind(c.Query("kind"))),
		types.ID(c.Param("taskID")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *taskServer) updateTask(c *gin.Context) {
	acting, ok := editingMember(c, s.be)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	fields := req.Fields
	if fields == nil {
		fields = types.Fields{}
	}
	for _, key := range req.Delete {
		fields[key] = types.DeleteField
	}

	task, err := tasks.Update(
		c.Request.Context(),
		s.be,
		acting.WorkspaceID,
		kindOrDefault(req.Kind),
		types.ID(c.Param("taskID")),
		fields,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// editingMember resolves the acting membership and requires a role that may
// edit tasks.
func editingMember(c *gin.Context, be *backend.Backend) (*types.Member, bool) {
	acting, ok := actingMember(c, be)
	if !ok {
		return nil, false
	}
	if !acting.Role.CanEditTasks() {
		abortWithError(c, members.ErrInsufficientPrivileges)
		return nil, false
	}

	return acting, true
}

func kindOrDefault(kind types.TaskKind) types.TaskKind {
	if kind == "" {
		return types.KindTask
	}
	return kind
}
