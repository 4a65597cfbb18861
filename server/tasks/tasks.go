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

// Package tasks provides the task and project related business logic.
package tasks

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
)

// Create stores a new task or project with the sanitized fields.
func Create(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	kind types.TaskKind,
	fields types.Fields,
) (*types.Task, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if _, err := be.DB.FindWorkspaceInfoByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	now := types.Now()
	info := &database.TaskInfo{
		WorkspaceID: workspaceID,
		Kind:        kind,
		Fields:      withoutDeleteFields(Sanitize(fields, now)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := be.DB.CreateTaskInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("create %s in %s: %w", kind, workspaceID, err)
	}

	return info.ToTask(), nil
}

// Get returns a task or project.
func Get(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
) (*types.Task, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	info, err := be.DB.FindTaskInfo(ctx, workspaceID, kind, id)
	if err != nil {
		return nil, err
	}
	return info.ToTask(), nil
}

// Update merges the sanitized fields into a task or project. Fields set to
// types.DeleteField are removed.
func Update(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
	fields types.Fields,
) (*types.Task, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	info, err := be.DB.UpdateTaskFields(ctx, workspaceID, kind, id, Sanitize(fields, types.Now()))
	if err != nil {
		return nil, fmt.Errorf("update %s %s in %s: %w", kind, id, workspaceID, err)
	}
	return info.ToTask(), nil
}

// withoutDeleteFields drops types.DeleteField values at any depth. A new
// document has nothing to delete.
func withoutDeleteFields(fields types.Fields) types.Fields {
	kept := lo.OmitBy(fields, func(_ string, value any) bool {
		return types.IsDeleteField(value)
	})
	for key, value := range kept {
		nested, ok := toMap(value)
		if !ok {
			continue
		}
		if nested = withoutDeleteFields(nested); len(nested) == 0 {
			delete(kept, key)
			continue
		}
		kept[key] = map[string]any(nested)
	}
	return kept
}
