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

// Package workspaces provides the workspace related business logic.
package workspaces

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/api/types/events"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/users"
)

// Create creates a workspace and its OWNER member in one transaction.
func Create(
	ctx context.Context,
	be *backend.Backend,
	owner *types.Identity,
	fields *types.CreateWorkspaceFields,
) (*types.Workspace, error) {
	if err := owner.ID.Validate(); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	info := database.NewWorkspaceInfo(fields.Name, fields.Description, owner.ID)
	if err := be.DB.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
		if err := txn.CreateWorkspaceInfo(ctx, info); err != nil {
			return err
		}

		member, err := database.NewMemberInfo(info.ID, owner.ID, owner.Email, types.RoleOwner, "")
		if err != nil {
			return err
		}
		return txn.CreateMemberInfo(ctx, member)
	}); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	if _, err := users.EnsureProfile(ctx, be, owner); err != nil {
		logging.From(ctx).Warnf("ensure profile of owner of %s: %v", info.ID, err)
	}

	be.PublishWorkspaceEvent(messagebroker.WorkspaceEventMessage{
		WorkspaceID: info.ID.String(),
		EventType:   events.WorkspaceCreatedEvent,
		ActorID:     owner.ID.String(),
		UserID:      owner.ID.String(),
		Role:        string(types.RoleOwner),
	}, nil, "")

	return info.ToWorkspace(), nil
}

// Get returns a workspace by the given id.
func Get(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
) (*types.Workspace, error) {
	info, err := be.DB.FindWorkspaceInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return info.ToWorkspace(), nil
}

// ListByUser returns the workspaces the user owns or is an active member of,
// oldest first.
func ListByUser(
	ctx context.Context,
	be *backend.Backend,
	identity *types.Identity,
) ([]*types.Workspace, error) {
	owned, err := be.DB.FindWorkspaceInfosByOwner(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	memberships, err := be.DB.FindMemberInfosByUser(ctx, identity.ID, types.MemberActive)
	if err != nil {
		return nil, err
	}

	found := make(map[types.ID]*types.Workspace)
	for _, info := range owned {
		found[info.ID] = info.ToWorkspace()
	}

	for _, member := range memberships {
		id, err := database.WorkspaceIDFromPath(member.Path)
		if err != nil {
			logging.From(ctx).Warnf("membership of %s: %v", identity.ID, err)
			continue
		}
		if _, ok := found[id]; ok {
			continue
		}

		info, err := be.DB.FindWorkspaceInfoByID(ctx, id)
		if errors.Is(err, database.ErrWorkspaceNotFound) {
			logging.From(ctx).Warnf("membership of %s refers to missing workspace %s", identity.ID, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		found[id] = info.ToWorkspace()
	}

	return sortedValues(found), nil
}

// sortedValues returns the workspaces of the map ordered by creation time.
func sortedValues(workspaces map[types.ID]*types.Workspace) []*types.Workspace {
	list := make([]*types.Workspace, 0, len(workspaces))
	for _, workspace := range workspaces {
		if workspace != nil {
			list = append(list, workspace)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}
